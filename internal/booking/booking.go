package booking

import (
	"strings"

	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

// Service is the only writer of appointments.
type Service struct {
	store *store.Store
}

func New(st *store.Store) *Service {
	return &Service{store: st}
}

// AvailableSlots resolves the doctor at doctorIdx and lists its free slots.
func (s *Service) AvailableSlots(doctorIdx int) ([]string, error) {
	d, err := s.store.DoctorAt(doctorIdx)
	if err != nil {
		return nil, err
	}
	return AvailableSlots(d, s.store.Appointments()), nil
}

// Book creates an appointment for the selected patient, doctor and slot and
// returns its position. A negative index means nothing was selected.
func (s *Service) Book(patientIdx, doctorIdx int, slot string) (int, error) {
	a, err := s.resolve(patientIdx, doctorIdx, slot, -1)
	if err != nil {
		return -1, err
	}
	return s.store.AppendAppointment(a), nil
}

// Rebook replaces the appointment at i. The appointment being edited never
// conflicts with itself; identical appointments at other positions do.
func (s *Service) Rebook(i, patientIdx, doctorIdx int, slot string) error {
	if _, err := s.store.AppointmentAt(i); err != nil {
		return err
	}
	a, err := s.resolve(patientIdx, doctorIdx, slot, i)
	if err != nil {
		return err
	}
	return s.store.ReplaceAppointmentAt(i, a)
}

// Remove takes the appointment at i out of the active list. With moveToTrash
// it lands in the trash and can be restored; otherwise it is gone for good.
func (s *Service) Remove(i int, moveToTrash bool) (model.Appointment, error) {
	a, err := s.store.RemoveAppointmentAt(i)
	if err != nil {
		return model.Appointment{}, err
	}
	if moveToTrash {
		s.store.Trash().AddAppointment(a)
	}
	return a, nil
}

// Cancel permanently removes the appointment at i.
func (s *Service) Cancel(i int) (model.Appointment, error) { return s.Remove(i, false) }

// SoftDelete moves the appointment at i into the trash.
func (s *Service) SoftDelete(i int) (model.Appointment, error) { return s.Remove(i, true) }

// RestoreAppointment reactivates the trashed appointment at trashIdx. If its
// slot was booked again in the meantime the entry stays in the trash.
func (s *Service) RestoreAppointment(trashIdx int) (int, error) {
	tr := s.store.Trash()
	a, err := tr.AppointmentAt(trashIdx)
	if err != nil {
		return -1, err
	}
	if s.store.HasBooking(a.Doctor, a.Slot, -1) {
		return -1, &model.SlotConflictError{Doctor: a.Doctor.Name, Slot: a.Slot}
	}
	if a, err = tr.TakeAppointment(trashIdx); err != nil {
		return -1, err
	}
	return s.store.AppendAppointment(a), nil
}

func (s *Service) resolve(patientIdx, doctorIdx int, slot string, exclude int) (model.Appointment, error) {
	if patientIdx < 0 {
		return model.Appointment{}, model.Invalid("patient", "select a patient")
	}
	if doctorIdx < 0 {
		return model.Appointment{}, model.Invalid("doctor", "select a doctor")
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return model.Appointment{}, model.Invalid("slot", "select a slot")
	}

	p, err := s.store.PatientAt(patientIdx)
	if err != nil {
		return model.Appointment{}, err
	}
	d, err := s.store.DoctorAt(doctorIdx)
	if err != nil {
		return model.Appointment{}, err
	}
	if !d.Offers(slot) {
		return model.Appointment{}, model.Invalid("slot", "Dr. "+d.Name+" has no slot "+slot)
	}
	if s.store.HasBooking(d, slot, exclude) {
		return model.Appointment{}, &model.SlotConflictError{Doctor: d.Name, Slot: slot}
	}
	return model.Appointment{Patient: p, Doctor: d, Slot: slot}, nil
}
