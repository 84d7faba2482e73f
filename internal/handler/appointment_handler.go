package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

// AvailableSlots takes {doctor_index} and returns {slots} in the doctor's
// declared order.
func (h *Handler) AvailableSlots(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	i, err := index(req, "doctor_index")
	if err != nil {
		return nil, err
	}
	slots, err := h.svc.AvailableSlots(i)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"slots": stringsValue(slots)})
}

// BookAppointment takes {patient_index, doctor_index, slot}. A missing
// index means nothing was selected.
func (h *Handler) BookAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, d, err := selection(req)
	if err != nil {
		return nil, err
	}
	i, err := h.svc.Book(ctx, p, d, str(req, "slot"))
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"index": i})
}

// RebookAppointment takes {index, patient_index, doctor_index, slot}.
func (h *Handler) RebookAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	i, err := index(req, "index")
	if err != nil {
		return nil, err
	}
	p, d, err := selection(req)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Rebook(ctx, i, p, d, str(req, "slot")); err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"index": i})
}

// RemoveAppointment takes {index, move_to_trash}. Without move_to_trash the
// appointment is cancelled and gone for good.
func (h *Handler) RemoveAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	i, err := index(req, "index")
	if err != nil {
		return nil, err
	}
	trash := req.GetFields()["move_to_trash"].GetBoolValue()
	a, err := h.svc.RemoveAppointment(ctx, i, trash)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"appointment": appointmentValue(a), "trashed": trash})
}

func (h *Handler) ListAppointments(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return reply(map[string]any{"appointments": list(h.svc.Appointments(), appointmentValue)})
}

func (h *Handler) Schedule(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return reply(map[string]any{"lines": stringsValue(h.svc.Schedule())})
}

func selection(req *structpb.Struct) (patient, doctor int, err error) {
	if patient, err = intField(req, "patient_index", -1); err != nil {
		return 0, 0, err
	}
	if doctor, err = intField(req, "doctor_index", -1); err != nil {
		return 0, 0, err
	}
	return patient, doctor, nil
}
