package store

import (
	"slices"
	"strings"

	"clinic-scheduler/internal/model"
)

func validatePatient(name string, age int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.Invalid("name", "name is required")
	}
	if age < 0 {
		return "", model.Invalid("age", "age must be a non-negative integer")
	}
	return name, nil
}

// AddPatient appends a patient and returns its position.
func (s *Store) AddPatient(name string, age int) (int, error) {
	name, err := validatePatient(name, age)
	if err != nil {
		return -1, err
	}
	s.patients = append(s.patients, model.Patient{ID: s.newID(), Name: name, Age: age})
	return len(s.patients) - 1, nil
}

// UpdatePatientAt rewrites the patient at i in place. The id is kept.
func (s *Store) UpdatePatientAt(i int, name string, age int) error {
	if i < 0 || i >= len(s.patients) {
		return &model.NotFoundError{Kind: model.KindPatient, Index: i}
	}
	name, err := validatePatient(name, age)
	if err != nil {
		return err
	}
	s.patients[i].Name = name
	s.patients[i].Age = age
	return nil
}

func (s *Store) RemovePatientAt(i int) (model.Patient, error) {
	if i < 0 || i >= len(s.patients) {
		return model.Patient{}, &model.NotFoundError{Kind: model.KindPatient, Index: i}
	}
	p := s.patients[i]
	s.patients = slices.Delete(s.patients, i, i+1)
	return p, nil
}

func (s *Store) PatientAt(i int) (model.Patient, error) {
	if i < 0 || i >= len(s.patients) {
		return model.Patient{}, &model.NotFoundError{Kind: model.KindPatient, Index: i}
	}
	return s.patients[i], nil
}

func (s *Store) Patients() []model.Patient {
	return slices.Clone(s.patients)
}

// TrashPatientAt moves the patient at i into the trash. Appointments that
// embed the patient are left alone.
func (s *Store) TrashPatientAt(i int) (model.Patient, error) {
	p, err := s.RemovePatientAt(i)
	if err != nil {
		return model.Patient{}, err
	}
	s.trash.AddPatient(p)
	return p, nil
}

// RestorePatient takes the trashed patient at i back into the active list,
// appending it at the end. It returns the new position.
func (s *Store) RestorePatient(i int) (int, error) {
	p, err := s.trash.TakePatient(i)
	if err != nil {
		return -1, err
	}
	s.patients = append(s.patients, p)
	return len(s.patients) - 1, nil
}
