package clinic

import "clinic-scheduler/internal/model"

type Summary struct {
	Patients            int `json:"patients"`
	Doctors             int `json:"doctors"`
	Appointments        int `json:"appointments"`
	TrashedPatients     int `json:"trashed_patients"`
	TrashedDoctors      int `json:"trashed_doctors"`
	TrashedAppointments int `json:"trashed_appointments"`
}

func (s *Service) Summary() Summary {
	var sum Summary
	s.read(func() {
		tr := s.store.Trash()
		sum = Summary{
			Patients:            len(s.store.Patients()),
			Doctors:             len(s.store.Doctors()),
			Appointments:        len(s.store.Appointments()),
			TrashedPatients:     tr.Len(model.KindPatient),
			TrashedDoctors:      tr.Len(model.KindDoctor),
			TrashedAppointments: tr.Len(model.KindAppointment),
		}
	})
	return sum
}

// Schedule lists the active appointments one line each, in booking order.
func (s *Service) Schedule() []string {
	appts := s.Appointments()
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = a.String()
	}
	return out
}
