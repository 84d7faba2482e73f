package model

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError reports a position outside its collection. Trash is set when
// the lookup was against the trash of Kind rather than the active records.
type NotFoundError struct {
	Kind  Kind
	Index int
	Trash bool
}

func (e *NotFoundError) Error() string {
	where := string(e.Kind)
	if e.Trash {
		where = "trashed " + where
	}
	return fmt.Sprintf("no %s at position %d", where, e.Index)
}

// SlotConflictError reports an attempt to book a (doctor, slot) pair that an
// active appointment already holds.
type SlotConflictError struct {
	Doctor string
	Slot   string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %q of Dr. %s is already booked", e.Slot, e.Doctor)
}

// NoOpWarning is informational: the operation had nothing to act on.
type NoOpWarning struct {
	Kind Kind
	Op   string
}

func (e *NoOpWarning) Error() string {
	return fmt.Sprintf("%s: trash of %s is empty", e.Op, e.Kind)
}

// PersistenceError wraps a failure to load or save the snapshot.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

func IsSlotConflict(err error) bool {
	var v *SlotConflictError
	return errors.As(err, &v)
}

func IsNoOp(err error) bool {
	var v *NoOpWarning
	return errors.As(err, &v)
}

func IsPersistence(err error) bool {
	var v *PersistenceError
	return errors.As(err, &v)
}
