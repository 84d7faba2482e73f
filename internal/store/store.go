package store

import (
	"github.com/google/uuid"

	"clinic-scheduler/internal/model"
)

// Store owns the active collections and the trash. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	patients     []model.Patient
	doctors      []model.Doctor
	appointments []model.Appointment
	trash        *Trash
	newID        func() string
}

// New hydrates a store from st. A nil st yields an empty store.
func New(st *model.State) *Store {
	s := &Store{newID: uuid.NewString}
	s.Import(st)
	return s
}

func (s *Store) Trash() *Trash { return s.trash }

// Export returns a deep copy of everything the store holds.
func (s *Store) Export() *model.State {
	st := &model.State{
		Patients:     s.patients,
		Doctors:      s.doctors,
		Appointments: s.appointments,
		Trash: model.Trash{
			Patients:     s.trash.patients,
			Doctors:      s.trash.doctors,
			Appointments: s.trash.appointments,
		},
	}
	return st.Clone()
}

// Import replaces the store contents with a copy of st.
func (s *Store) Import(st *model.State) {
	if st == nil {
		st = model.Empty()
	}
	c := st.Clone()
	s.patients = c.Patients
	s.doctors = c.Doctors
	s.appointments = c.Appointments
	s.trash = &Trash{
		patients:     c.Trash.Patients,
		doctors:      c.Trash.Doctors,
		appointments: c.Trash.Appointments,
	}
}
