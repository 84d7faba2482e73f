// Package export renders the active appointments as patient letters.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"clinic-scheduler/internal/model"
)

const separator = "---------------------------------------------"

func Render(w io.Writer, clinicName string, appts []model.Appointment) error {
	bw := bufio.NewWriter(w)
	for _, a := range appts {
		fmt.Fprintf(bw, "Dear %s,\n", a.Patient.Name)
		fmt.Fprintf(bw, "You have an appointment with Dr. %s (%s) at %s.\n", a.Doctor.Name, a.Doctor.Specialty, a.Slot)
		fmt.Fprintln(bw, "Please arrive 10 minutes early and bring any necessary documents.")
		fmt.Fprintf(bw, "Thank you for choosing %s.\n", clinicName)
		fmt.Fprintf(bw, "%s\n\n", separator)
	}
	return bw.Flush()
}

func WriteFile(path, clinicName string, appts []model.Appointment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Render(f, clinicName, appts); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
