package handler

import "clinic-scheduler/internal/clinic"

// Handler serves clinic.v1.ClinicService. Records are addressed by their
// position in the listing the caller last fetched.
type Handler struct {
	svc *clinic.Service
}

func New(svc *clinic.Service) *Handler {
	return &Handler{svc: svc}
}
