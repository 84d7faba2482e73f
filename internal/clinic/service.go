// Package clinic is the entry point transports call. Every mutation runs one
// core operation and then persists the whole state; if the save fails the
// in-memory state is rolled back so it never runs ahead of the snapshot.
package clinic

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"clinic-scheduler/internal/booking"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/snapshot"
	"clinic-scheduler/internal/store"
)

type Service struct {
	mu      sync.Mutex
	store   *store.Store
	booking *booking.Service
	repo    snapshot.Repository
	log     zerolog.Logger
}

// Open hydrates a service from repo.
func Open(ctx context.Context, repo snapshot.Repository, log zerolog.Logger) (*Service, error) {
	st, err := repo.Load(ctx)
	if err != nil {
		return nil, &model.PersistenceError{Op: "load", Err: err}
	}
	log.Info().
		Int("patients", len(st.Patients)).
		Int("doctors", len(st.Doctors)).
		Int("appointments", len(st.Appointments)).
		Msg("snapshot loaded")
	return New(store.New(st), repo, log), nil
}

func New(st *store.Store, repo snapshot.Repository, log zerolog.Logger) *Service {
	return &Service{
		store:   st,
		booking: booking.New(st),
		repo:    repo,
		log:     log.With().Str("component", "clinic").Logger(),
	}
}

// mutate runs fn under the lock and saves when fn reports a change.
func (s *Service) mutate(ctx context.Context, op string, fn func() (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.store.Export()
	changed, err := fn()
	if err != nil {
		s.log.Debug().Err(err).Str("op", op).Msg("rejected")
		return err
	}
	if !changed {
		return nil
	}
	if err := s.repo.Save(ctx, s.store.Export()); err != nil {
		s.store.Import(prev)
		s.log.Error().Err(err).Str("op", op).Msg("snapshot save failed, state rolled back")
		return &model.PersistenceError{Op: "save", Err: err}
	}
	s.log.Info().Str("op", op).Msg("saved")
	return nil
}

func (s *Service) read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// -- Patients --

func (s *Service) AddPatient(ctx context.Context, name string, age int) (int, error) {
	pos := -1
	err := s.mutate(ctx, "add_patient", func() (bool, error) {
		var err error
		pos, err = s.store.AddPatient(name, age)
		return true, err
	})
	if err != nil {
		return -1, err
	}
	return pos, nil
}

func (s *Service) UpdatePatient(ctx context.Context, i int, name string, age int) error {
	return s.mutate(ctx, "update_patient", func() (bool, error) {
		return true, s.store.UpdatePatientAt(i, name, age)
	})
}

func (s *Service) TrashPatient(ctx context.Context, i int) (model.Patient, error) {
	var p model.Patient
	err := s.mutate(ctx, "trash_patient", func() (bool, error) {
		var err error
		p, err = s.store.TrashPatientAt(i)
		return true, err
	})
	return p, err
}

func (s *Service) Patients() []model.Patient {
	var out []model.Patient
	s.read(func() { out = s.store.Patients() })
	return out
}

// -- Doctors --

func (s *Service) AddDoctor(ctx context.Context, name, specialty string, slots []string) (int, error) {
	pos := -1
	err := s.mutate(ctx, "add_doctor", func() (bool, error) {
		var err error
		pos, err = s.store.AddDoctor(name, specialty, slots)
		return true, err
	})
	if err != nil {
		return -1, err
	}
	return pos, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, i int, name, specialty string, slots []string) error {
	return s.mutate(ctx, "update_doctor", func() (bool, error) {
		return true, s.store.UpdateDoctorAt(i, name, specialty, slots)
	})
}

func (s *Service) TrashDoctor(ctx context.Context, i int) (model.Doctor, error) {
	var d model.Doctor
	err := s.mutate(ctx, "trash_doctor", func() (bool, error) {
		var err error
		d, err = s.store.TrashDoctorAt(i)
		return true, err
	})
	return d, err
}

func (s *Service) Doctors() []model.Doctor {
	var out []model.Doctor
	s.read(func() { out = s.store.Doctors() })
	return out
}

// -- Appointments --

func (s *Service) AvailableSlots(doctorIdx int) ([]string, error) {
	var (
		out []string
		err error
	)
	s.read(func() { out, err = s.booking.AvailableSlots(doctorIdx) })
	return out, err
}

func (s *Service) Book(ctx context.Context, patientIdx, doctorIdx int, slot string) (int, error) {
	pos := -1
	err := s.mutate(ctx, "book", func() (bool, error) {
		var err error
		pos, err = s.booking.Book(patientIdx, doctorIdx, slot)
		return true, err
	})
	if err != nil {
		return -1, err
	}
	return pos, nil
}

func (s *Service) Rebook(ctx context.Context, i, patientIdx, doctorIdx int, slot string) error {
	return s.mutate(ctx, "rebook", func() (bool, error) {
		return true, s.booking.Rebook(i, patientIdx, doctorIdx, slot)
	})
}

// RemoveAppointment cancels the appointment at i. moveToTrash selects a
// recoverable soft delete over a permanent cancellation.
func (s *Service) RemoveAppointment(ctx context.Context, i int, moveToTrash bool) (model.Appointment, error) {
	op := "cancel"
	if moveToTrash {
		op = "trash_appointment"
	}
	var a model.Appointment
	err := s.mutate(ctx, op, func() (bool, error) {
		var err error
		a, err = s.booking.Remove(i, moveToTrash)
		return true, err
	})
	return a, err
}

func (s *Service) Appointments() []model.Appointment {
	var out []model.Appointment
	s.read(func() { out = s.store.Appointments() })
	return out
}

// -- Trash --

func (s *Service) Trashed() model.Trash {
	var out model.Trash
	s.read(func() {
		tr := s.store.Trash()
		out = model.Trash{
			Patients:     tr.Patients(),
			Doctors:      tr.Doctors(),
			Appointments: tr.Appointments(),
		}
	})
	return out
}

// Restore moves the trashed record at i of kind back to the active list and
// returns its new position.
func (s *Service) Restore(ctx context.Context, kind model.Kind, i int) (int, error) {
	k, err := model.ParseKind(string(kind))
	if err != nil {
		return -1, err
	}
	pos := -1
	err = s.mutate(ctx, "restore_"+string(k), func() (bool, error) {
		var err error
		switch k {
		case model.KindPatient:
			pos, err = s.store.RestorePatient(i)
		case model.KindDoctor:
			pos, err = s.store.RestoreDoctor(i)
		case model.KindAppointment:
			pos, err = s.booking.RestoreAppointment(i)
		default:
			err = model.Invalid("kind", "unknown record kind "+string(kind))
		}
		return true, err
	})
	if err != nil {
		return -1, err
	}
	return pos, nil
}

// EmptyTrash purges the trash of kind. It reports false, without saving, if
// that trash was already empty.
func (s *Service) EmptyTrash(ctx context.Context, kind model.Kind) (bool, error) {
	k, err := model.ParseKind(string(kind))
	if err != nil {
		return false, err
	}
	var purged bool
	err = s.mutate(ctx, "empty_trash_"+string(k), func() (bool, error) {
		purged = s.store.Trash().PurgeAll(k)
		return purged, nil
	})
	return purged, err
}
