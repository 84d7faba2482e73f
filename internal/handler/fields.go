package handler

import (
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

func str(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

// intField reads a whole number. A missing field yields def so that
// selection fields fall through to the service's own "no selection" check.
func intField(in *structpb.Struct, key string, def int) (int, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return def, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", key)
	}
	return int(f), nil
}

// index reads a required position.
func index(in *structpb.Struct, key string) (int, error) {
	if _, ok := in.GetFields()[key]; !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s required", key)
	}
	return intField(in, key, 0)
}

// slotsField accepts either a list of strings or a single comma-separated
// string.
func slotsField(in *structpb.Struct, key string) ([]string, error) {
	v := in.GetFields()[key]
	switch k := v.GetKind().(type) {
	case nil:
		return nil, nil
	case *structpb.Value_StringValue:
		return store.SplitSlots(k.StringValue), nil
	case *structpb.Value_ListValue:
		out := make([]string, 0, len(k.ListValue.GetValues()))
		for _, s := range k.ListValue.GetValues() {
			sv, ok := s.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return nil, status.Errorf(codes.InvalidArgument, "%s must hold strings", key)
			}
			out = append(out, sv.StringValue)
		}
		return out, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list or a comma-separated string", key)
	}
}

func kindField(in *structpb.Struct) (model.Kind, error) {
	k, err := model.ParseKind(str(in, "kind"))
	if err != nil {
		return "", toStatus(err)
	}
	return k, nil
}

func reply(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode reply: %v", err))
	}
	return out, nil
}

func stringsValue(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func patientValue(p model.Patient) map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "age": p.Age}
}

func doctorValue(d model.Doctor) map[string]any {
	return map[string]any{
		"id":        d.ID,
		"name":      d.Name,
		"specialty": d.Specialty,
		"slots":     stringsValue(d.Slots),
	}
}

func appointmentValue(a model.Appointment) map[string]any {
	return map[string]any{
		"patient": patientValue(a.Patient),
		"doctor":  doctorValue(a.Doctor),
		"slot":    a.Slot,
	}
}

func list[T any](in []T, conv func(T) map[string]any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		m := conv(v)
		m["index"] = i
		out[i] = m
	}
	return out
}
