// Package gateway is the HTTP face of the clinic: read-only JSON views,
// the printable schedule and the grpc-web bridge for browser clients.
package gateway

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clinic-scheduler/internal/clinic"
	"clinic-scheduler/internal/export"
	"clinic-scheduler/internal/model"
)

type Handler struct {
	svc        *clinic.Service
	clinicName string
}

func NewHandler(svc *clinic.Service, clinicName string) *Handler {
	return &Handler{svc: svc, clinicName: clinicName}
}

// RegisterRoutes mounts the JSON API on api. Expensive reads are wrapped
// in limit.
func (h *Handler) RegisterRoutes(api *echo.Group, limit echo.MiddlewareFunc) {
	api.GET("/doctors/:index/slots", h.AvailableSlots)
	api.GET("/schedule", h.Schedule)
	api.GET("/schedule/export", h.Export, limit)
	api.GET("/summary", h.Summary)
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor index")
	}
	slots, err := h.svc.AvailableSlots(i)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"doctor_index": i, "slots": slots})
}

func (h *Handler) Schedule(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"lines": h.svc.Schedule()})
}

// Export renders the appointment letters as plain text.
func (h *Handler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := export.Render(&buf, h.clinicName, h.svc.Appointments()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "render schedule")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="appointments_schedule.txt"`)
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}

func (h *Handler) Summary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Summary())
}

func httpError(err error) error {
	var (
		invalid  *model.ValidationError
		notFound *model.NotFoundError
		conflict *model.SlotConflictError
		noop     *model.NoOpWarning
		persist  *model.PersistenceError
	)
	switch {
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Error())
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	case errors.As(err, &noop):
		return echo.NewHTTPError(http.StatusOK, noop.Error())
	case errors.As(err, &persist):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "could not save clinic data")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
