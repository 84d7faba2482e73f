package store

import (
	"slices"

	"clinic-scheduler/internal/model"
)

// Trash holds soft-deleted records per kind. It knows nothing about the
// active collections: taking a record out hands it back to the caller, who
// decides where it goes.
type Trash struct {
	patients     []model.Patient
	doctors      []model.Doctor
	appointments []model.Appointment
}

func (t *Trash) AddPatient(p model.Patient) { t.patients = append(t.patients, p) }

func (t *Trash) AddDoctor(d model.Doctor) { t.doctors = append(t.doctors, d.Clone()) }

func (t *Trash) AddAppointment(a model.Appointment) {
	t.appointments = append(t.appointments, a.Clone())
}

func (t *Trash) TakePatient(i int) (model.Patient, error) {
	return take(&t.patients, model.KindPatient, i)
}

func (t *Trash) TakeDoctor(i int) (model.Doctor, error) {
	return take(&t.doctors, model.KindDoctor, i)
}

func (t *Trash) TakeAppointment(i int) (model.Appointment, error) {
	return take(&t.appointments, model.KindAppointment, i)
}

// AppointmentAt peeks at a trashed appointment without removing it.
func (t *Trash) AppointmentAt(i int) (model.Appointment, error) {
	if len(t.appointments) == 0 {
		return model.Appointment{}, &model.NoOpWarning{Kind: model.KindAppointment, Op: "restore"}
	}
	if i < 0 || i >= len(t.appointments) {
		return model.Appointment{}, &model.NotFoundError{Kind: model.KindAppointment, Index: i, Trash: true}
	}
	return t.appointments[i].Clone(), nil
}

func take[T any](items *[]T, kind model.Kind, i int) (T, error) {
	var zero T
	if len(*items) == 0 {
		return zero, &model.NoOpWarning{Kind: kind, Op: "restore"}
	}
	if i < 0 || i >= len(*items) {
		return zero, &model.NotFoundError{Kind: kind, Index: i, Trash: true}
	}
	v := (*items)[i]
	*items = slices.Delete(*items, i, i+1)
	return v, nil
}

// PurgeAll irreversibly empties the trash of kind. It returns false when
// there was nothing to remove.
func (t *Trash) PurgeAll(kind model.Kind) bool {
	switch kind {
	case model.KindPatient:
		return purge(&t.patients)
	case model.KindDoctor:
		return purge(&t.doctors)
	case model.KindAppointment:
		return purge(&t.appointments)
	}
	return false
}

func purge[T any](items *[]T) bool {
	if len(*items) == 0 {
		return false
	}
	*items = []T{}
	return true
}

func (t *Trash) Len(kind model.Kind) int {
	switch kind {
	case model.KindPatient:
		return len(t.patients)
	case model.KindDoctor:
		return len(t.doctors)
	case model.KindAppointment:
		return len(t.appointments)
	}
	return 0
}

func (t *Trash) Patients() []model.Patient { return slices.Clone(t.patients) }

func (t *Trash) Doctors() []model.Doctor {
	out := make([]model.Doctor, len(t.doctors))
	for i, d := range t.doctors {
		out[i] = d.Clone()
	}
	return out
}

func (t *Trash) Appointments() []model.Appointment {
	out := make([]model.Appointment, len(t.appointments))
	for i, a := range t.appointments {
		out[i] = a.Clone()
	}
	return out
}
