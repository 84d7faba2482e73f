package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

// AddPatient takes {name, age} and returns {index}.
func (h *Handler) AddPatient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	age, err := intField(req, "age", -1)
	if err != nil {
		return nil, err
	}
	i, err := h.svc.AddPatient(ctx, str(req, "name"), age)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"index": i})
}

// UpdatePatient takes {index, name, age}.
func (h *Handler) UpdatePatient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	i, err := index(req, "index")
	if err != nil {
		return nil, err
	}
	age, err := intField(req, "age", -1)
	if err != nil {
		return nil, err
	}
	if err := h.svc.UpdatePatient(ctx, i, str(req, "name"), age); err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"index": i})
}

// TrashPatient takes {index} and returns the trashed patient.
func (h *Handler) TrashPatient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	i, err := index(req, "index")
	if err != nil {
		return nil, err
	}
	p, err := h.svc.TrashPatient(ctx, i)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"patient": patientValue(p)})
}

func (h *Handler) ListPatients(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return reply(map[string]any{"patients": list(h.svc.Patients(), patientValue)})
}
