package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"clinic-scheduler/internal/clinic"
	"clinic-scheduler/internal/middleware"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/snapshot"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	ctx := context.Background()
	repo := snapshot.NewFileRepo(filepath.Join(t.TempDir(), "hospital_data.json"))
	svc, err := clinic.Open(ctx, repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.AddPatient(ctx, "A", 30); err != nil {
		t.Fatalf("add patient: %v", err)
	}
	if _, err := svc.AddDoctor(ctx, "B", "Cardio", []string{"9am", "10am"}); err != nil {
		t.Fatalf("add doctor: %v", err)
	}
	if _, err := svc.Book(ctx, 0, 0, "9am"); err != nil {
		t.Fatalf("book: %v", err)
	}
	return NewHandler(svc, "Test Clinic")
}

func TestAvailableSlots(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors/0/slots", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("index")
	c.SetParamValues("0")

	if err := h.AvailableSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Slots []string `json:"slots"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Slots) != 1 || body.Slots[0] != "10am" {
		t.Errorf("got %q", body.Slots)
	}
}

func TestAvailableSlotsErrors(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	tests := []struct {
		index string
		want  int
	}{
		{"abc", http.StatusBadRequest},
		{"7", http.StatusNotFound},
		{"-1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.index, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			c := e.NewContext(req, httptest.NewRecorder())
			c.SetParamNames("index")
			c.SetParamValues(tt.index)

			err := h.AvailableSlots(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if he.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, he.Code)
			}
		})
	}
}

func TestScheduleAndSummary(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := h.Schedule(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "A with Dr. B (Cardio) at 9am") {
		t.Errorf("unexpected schedule %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if err := h.Summary(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("summary: %v", err)
	}
	var sum clinic.Summary
	json.Unmarshal(rec.Body.Bytes(), &sum)
	if sum != (clinic.Summary{Patients: 1, Doctors: 1, Appointments: 1}) {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestExport(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := h.Export(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("export: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Dear A,\n") || !strings.Contains(body, "Thank you for choosing Test Clinic.") {
		t.Errorf("unexpected letter:\n%s", body)
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.Invalid("slot", "required"), http.StatusBadRequest},
		{&model.NotFoundError{Kind: model.KindDoctor, Index: 3}, http.StatusNotFound},
		{&model.SlotConflictError{Doctor: "B", Slot: "9am"}, http.StatusConflict},
		{&model.NoOpWarning{Kind: model.KindPatient, Op: "restore"}, http.StatusOK},
		{&model.PersistenceError{Op: "save", Err: errors.New("disk")}, http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		var he *echo.HTTPError
		if !errors.As(httpError(tt.err), &he) || he.Code != tt.want {
			t.Errorf("%v: expected %d, got %v", tt.err, tt.want, he)
		}
	}
}

func TestServerRoutes(t *testing.T) {
	h := newTestHandler(t)
	bridged := false
	bridge := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bridged = r.URL.Path == "/clinic.v1.ClinicService/ListPatients"
		w.WriteHeader(http.StatusOK)
	})
	e := NewServer(h, bridge, middleware.NewRateLimiter(testContext(t), 10, 10), zerolog.Nop())

	for _, path := range []string{"/healthz", "/api/v1/doctors/0/slots", "/api/v1/schedule", "/api/v1/schedule/export", "/api/v1/summary"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clinic.v1.ClinicService/ListPatients", nil))
	if !bridged {
		t.Error("grpc-web path not routed to the bridge")
	}
}

// testContext returns a context canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
