package store

import (
	"slices"

	"clinic-scheduler/internal/model"
)

// Appointment primitives carry no booking rules; the booking service checks
// conflicts before calling them.

func (s *Store) AppendAppointment(a model.Appointment) int {
	s.appointments = append(s.appointments, a.Clone())
	return len(s.appointments) - 1
}

func (s *Store) ReplaceAppointmentAt(i int, a model.Appointment) error {
	if i < 0 || i >= len(s.appointments) {
		return &model.NotFoundError{Kind: model.KindAppointment, Index: i}
	}
	s.appointments[i] = a.Clone()
	return nil
}

func (s *Store) RemoveAppointmentAt(i int) (model.Appointment, error) {
	if i < 0 || i >= len(s.appointments) {
		return model.Appointment{}, &model.NotFoundError{Kind: model.KindAppointment, Index: i}
	}
	a := s.appointments[i]
	s.appointments = slices.Delete(s.appointments, i, i+1)
	return a, nil
}

func (s *Store) AppointmentAt(i int) (model.Appointment, error) {
	if i < 0 || i >= len(s.appointments) {
		return model.Appointment{}, &model.NotFoundError{Kind: model.KindAppointment, Index: i}
	}
	return s.appointments[i].Clone(), nil
}

func (s *Store) Appointments() []model.Appointment {
	out := make([]model.Appointment, len(s.appointments))
	for i, a := range s.appointments {
		out[i] = a.Clone()
	}
	return out
}

// HasBooking reports whether an active appointment other than the one at
// position exclude holds slot for doctor d. Pass -1 to check all of them.
func (s *Store) HasBooking(d model.Doctor, slot string, exclude int) bool {
	for i, a := range s.appointments {
		if i == exclude {
			continue
		}
		if a.Slot == slot && model.SameDoctor(a.Doctor, d) {
			return true
		}
	}
	return false
}
