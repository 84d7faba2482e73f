package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-scheduler/internal/model"
)

// toStatus maps service errors onto gRPC codes. Storage failures are
// reported as Unavailable and never as bad input.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		invalid  *model.ValidationError
		notFound *model.NotFoundError
		conflict *model.SlotConflictError
		noop     *model.NoOpWarning
		persist  *model.PersistenceError
	)
	switch {
	case errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, invalid.Error())
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, notFound.Error())
	case errors.As(err, &conflict):
		return status.Error(codes.AlreadyExists, conflict.Error())
	case errors.As(err, &noop):
		return status.Error(codes.FailedPrecondition, noop.Error())
	case errors.As(err, &persist):
		return status.Error(codes.Unavailable, "could not save clinic data")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
