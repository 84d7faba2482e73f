// Package snapshot reads and writes the whole clinic state as one JSON
// document and keeps it in a file or in Postgres.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"clinic-scheduler/internal/model"
)

// Repository loads and saves the full state. Load on a store that has never
// been written returns an empty state, not an error.
type Repository interface {
	Load(ctx context.Context) (*model.State, error)
	Save(ctx context.Context, st *model.State) error
}

func Encode(w io.Writer, st *model.State) error {
	c := st.Clone()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Decode parses a snapshot. Missing top-level fields come back as empty
// collections and records written before ids existed get one.
func Decode(r io.Reader) (*model.State, error) {
	st := &model.State{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(st); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Empty(), nil
		}
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode snapshot: trailing data after document")
	}
	st.Normalize()
	backfillIDs(st, uuid.NewString)
	return st, nil
}

func backfillIDs(st *model.State, newID func() string) {
	for _, ps := range [][]model.Patient{st.Patients, st.Trash.Patients} {
		for i := range ps {
			if ps[i].ID == "" {
				ps[i].ID = newID()
			}
		}
	}
	for _, ds := range [][]model.Doctor{st.Doctors, st.Trash.Doctors} {
		for i := range ds {
			if ds[i].ID == "" {
				ds[i].ID = newID()
			}
		}
	}

	// An embedded copy takes an id only when exactly one record matches it.
	// Copies matching several identical records keep no id and go on
	// blocking the slot for all of them through field comparison.
	patients := append(append([]model.Patient(nil), st.Patients...), st.Trash.Patients...)
	doctors := append(append([]model.Doctor(nil), st.Doctors...), st.Trash.Doctors...)
	for _, as := range [][]model.Appointment{st.Appointments, st.Trash.Appointments} {
		for i := range as {
			a := &as[i]
			if a.Doctor.ID == "" {
				a.Doctor.ID = soleMatch(doctors, func(d model.Doctor) bool {
					return model.SameDoctor(a.Doctor, d)
				}, func(d model.Doctor) string { return d.ID })
			}
			if a.Patient.ID == "" {
				a.Patient.ID = soleMatch(patients, func(p model.Patient) bool {
					return p.Name == a.Patient.Name && p.Age == a.Patient.Age
				}, func(p model.Patient) string { return p.ID })
			}
		}
	}
}

// soleMatch returns the id of the only element of recs that match accepts,
// or "" when none or several do.
func soleMatch[T any](recs []T, match func(T) bool, id func(T) string) string {
	found := ""
	n := 0
	for _, r := range recs {
		if match(r) {
			found = id(r)
			n++
		}
	}
	if n != 1 {
		return ""
	}
	return found
}
