package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

// AddDoctor takes {name, specialty, slots} where slots is a list or a
// comma-separated string, and returns {index}.
func (h *Handler) AddDoctor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	slots, err := slotsField(req, "slots")
	if err != nil {
		return nil, err
	}
	i, err := h.svc.AddDoctor(ctx, str(req, "name"), str(req, "specialty"), slots)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"index": i})
}

func (h *Handler) UpdateDoctor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	i, err := index(req, "index")
	if err != nil {
		return nil, err
	}
	slots, err := slotsField(req, "slots")
	if err != nil {
		return nil, err
	}
	if err := h.svc.UpdateDoctor(ctx, i, str(req, "name"), str(req, "specialty"), slots); err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"index": i})
}

func (h *Handler) TrashDoctor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	i, err := index(req, "index")
	if err != nil {
		return nil, err
	}
	d, err := h.svc.TrashDoctor(ctx, i)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"doctor": doctorValue(d)})
}

func (h *Handler) ListDoctors(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return reply(map[string]any{"doctors": list(h.svc.Doctors(), doctorValue)})
}
