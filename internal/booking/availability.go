package booking

import "clinic-scheduler/internal/model"

// AvailableSlots returns the slots of d, in declared order, that no active
// appointment holds. The result is computed from appts on every call.
func AvailableSlots(d model.Doctor, appts []model.Appointment) []string {
	out := []string{}
	for _, slot := range d.Slots {
		if !booked(d, slot, appts) {
			out = append(out, slot)
		}
	}
	return out
}

func booked(d model.Doctor, slot string, appts []model.Appointment) bool {
	for _, a := range appts {
		if a.Slot == slot && model.SameDoctor(a.Doctor, d) {
			return true
		}
	}
	return false
}
