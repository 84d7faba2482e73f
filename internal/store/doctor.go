package store

import (
	"slices"
	"strings"

	"clinic-scheduler/internal/model"
)

// SplitSlots parses a comma separated slot list as typed into a form.
func SplitSlots(raw string) []string {
	return cleanSlots(strings.Split(raw, ","))
}

func cleanSlots(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validateDoctor(name, specialty string, slots []string) (model.Doctor, error) {
	d := model.Doctor{
		Name:      strings.TrimSpace(name),
		Specialty: strings.TrimSpace(specialty),
		Slots:     cleanSlots(slots),
	}
	if d.Name == "" {
		return d, model.Invalid("name", "name is required")
	}
	if d.Specialty == "" {
		return d, model.Invalid("specialty", "specialty is required")
	}
	if len(d.Slots) == 0 {
		return d, model.Invalid("slots", "at least one slot is required")
	}
	return d, nil
}

func (s *Store) AddDoctor(name, specialty string, slots []string) (int, error) {
	d, err := validateDoctor(name, specialty, slots)
	if err != nil {
		return -1, err
	}
	d.ID = s.newID()
	s.doctors = append(s.doctors, d)
	return len(s.doctors) - 1, nil
}

// UpdateDoctorAt replaces the doctor at i, keeping its id so existing
// bookings still count against it.
func (s *Store) UpdateDoctorAt(i int, name, specialty string, slots []string) error {
	if i < 0 || i >= len(s.doctors) {
		return &model.NotFoundError{Kind: model.KindDoctor, Index: i}
	}
	d, err := validateDoctor(name, specialty, slots)
	if err != nil {
		return err
	}
	d.ID = s.doctors[i].ID
	s.doctors[i] = d
	return nil
}

func (s *Store) RemoveDoctorAt(i int) (model.Doctor, error) {
	if i < 0 || i >= len(s.doctors) {
		return model.Doctor{}, &model.NotFoundError{Kind: model.KindDoctor, Index: i}
	}
	d := s.doctors[i]
	s.doctors = slices.Delete(s.doctors, i, i+1)
	return d, nil
}

func (s *Store) DoctorAt(i int) (model.Doctor, error) {
	if i < 0 || i >= len(s.doctors) {
		return model.Doctor{}, &model.NotFoundError{Kind: model.KindDoctor, Index: i}
	}
	return s.doctors[i].Clone(), nil
}

func (s *Store) Doctors() []model.Doctor {
	out := make([]model.Doctor, len(s.doctors))
	for i, d := range s.doctors {
		out[i] = d.Clone()
	}
	return out
}

func (s *Store) TrashDoctorAt(i int) (model.Doctor, error) {
	d, err := s.RemoveDoctorAt(i)
	if err != nil {
		return model.Doctor{}, err
	}
	s.trash.AddDoctor(d)
	return d, nil
}

func (s *Store) RestoreDoctor(i int) (int, error) {
	d, err := s.trash.TakeDoctor(i)
	if err != nil {
		return -1, err
	}
	s.doctors = append(s.doctors, d)
	return len(s.doctors) - 1, nil
}
