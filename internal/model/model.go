package model

import (
	"fmt"
	"slices"
)

type Patient struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type Doctor struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Specialty string   `json:"spec"`
	Slots     []string `json:"slots"`
}

// Appointment embeds copies of the patient and doctor as they were at booking
// time. Later edits to either record do not reach existing appointments.
type Appointment struct {
	Patient Patient `json:"patient"`
	Doctor  Doctor  `json:"doctor"`
	Slot    string  `json:"slot"`
}

type Trash struct {
	Patients     []Patient     `json:"patients"`
	Doctors      []Doctor      `json:"doctors"`
	Appointments []Appointment `json:"appointments"`
}

// State is the whole persisted clinic: active collections plus trash.
type State struct {
	Patients     []Patient     `json:"patients"`
	Doctors      []Doctor      `json:"doctors"`
	Appointments []Appointment `json:"appointments"`
	Trash        Trash         `json:"trash"`
}

// Kind names one of the three record collections. The values double as the
// snapshot keys.
type Kind string

const (
	KindPatient     Kind = "patients"
	KindDoctor      Kind = "doctors"
	KindAppointment Kind = "appointments"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPatient, KindDoctor, KindAppointment:
		return Kind(s), nil
	case "patient":
		return KindPatient, nil
	case "doctor":
		return KindDoctor, nil
	case "appointment":
		return KindAppointment, nil
	}
	return "", &ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown record kind %q", s)}
}

// SameDoctor reports whether a and b denote the same doctor. Stable ids win
// when both sides have one; otherwise every field must match.
func SameDoctor(a, b Doctor) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a.Name == b.Name && a.Specialty == b.Specialty && slices.Equal(a.Slots, b.Slots)
}

func (d Doctor) Offers(slot string) bool {
	return slices.Contains(d.Slots, slot)
}

// Clone returns a doctor whose slot list does not alias d's.
func (d Doctor) Clone() Doctor {
	d.Slots = slices.Clone(d.Slots)
	return d
}

func (a Appointment) Clone() Appointment {
	a.Doctor = a.Doctor.Clone()
	return a
}

func (p Patient) String() string {
	return fmt.Sprintf("%s (Age: %d)", p.Name, p.Age)
}

func (d Doctor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Specialty)
}

func (a Appointment) String() string {
	return fmt.Sprintf("%s with Dr. %s (%s) at %s", a.Patient.Name, a.Doctor.Name, a.Doctor.Specialty, a.Slot)
}

// Empty returns a state whose collections are non-nil, so it encodes as
// empty arrays rather than null.
func Empty() *State {
	return &State{
		Patients:     []Patient{},
		Doctors:      []Doctor{},
		Appointments: []Appointment{},
		Trash: Trash{
			Patients:     []Patient{},
			Doctors:      []Doctor{},
			Appointments: []Appointment{},
		},
	}
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	out := &State{
		Patients:     slices.Clone(s.Patients),
		Doctors:      cloneDoctors(s.Doctors),
		Appointments: cloneAppointments(s.Appointments),
		Trash: Trash{
			Patients:     slices.Clone(s.Trash.Patients),
			Doctors:      cloneDoctors(s.Trash.Doctors),
			Appointments: cloneAppointments(s.Trash.Appointments),
		},
	}
	out.Normalize()
	return out
}

// Normalize replaces nil collections with empty ones.
func (s *State) Normalize() {
	if s.Patients == nil {
		s.Patients = []Patient{}
	}
	if s.Doctors == nil {
		s.Doctors = []Doctor{}
	}
	if s.Appointments == nil {
		s.Appointments = []Appointment{}
	}
	if s.Trash.Patients == nil {
		s.Trash.Patients = []Patient{}
	}
	if s.Trash.Doctors == nil {
		s.Trash.Doctors = []Doctor{}
	}
	if s.Trash.Appointments == nil {
		s.Trash.Appointments = []Appointment{}
	}
}

func cloneDoctors(in []Doctor) []Doctor {
	if in == nil {
		return nil
	}
	out := make([]Doctor, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}
	return out
}

func cloneAppointments(in []Appointment) []Appointment {
	if in == nil {
		return nil
	}
	out := make([]Appointment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
