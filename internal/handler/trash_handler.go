package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

func (h *Handler) ListTrash(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	tr := h.svc.Trashed()
	return reply(map[string]any{
		"patients":     list(tr.Patients, patientValue),
		"doctors":      list(tr.Doctors, doctorValue),
		"appointments": list(tr.Appointments, appointmentValue),
	})
}

// RestoreFromTrash takes {kind, index} and returns the record's new
// position among the active ones.
func (h *Handler) RestoreFromTrash(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	kind, err := kindField(req)
	if err != nil {
		return nil, err
	}
	i, err := index(req, "index")
	if err != nil {
		return nil, err
	}
	pos, err := h.svc.Restore(ctx, kind, i)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"index": pos})
}

// EmptyTrash takes {kind}. Emptying an already empty trash is not an error;
// purged reports whether anything was removed.
func (h *Handler) EmptyTrash(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	kind, err := kindField(req)
	if err != nil {
		return nil, err
	}
	purged, err := h.svc.EmptyTrash(ctx, kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"purged": purged})
}

func (h *Handler) Summary(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sum := h.svc.Summary()
	return reply(map[string]any{
		"patients":             sum.Patients,
		"doctors":              sum.Doctors,
		"appointments":         sum.Appointments,
		"trashed_patients":     sum.TrashedPatients,
		"trashed_doctors":      sum.TrashedDoctors,
		"trashed_appointments": sum.TrashedAppointments,
	})
}
