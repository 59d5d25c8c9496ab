package booking

import (
	"time"

	"github.com/google/uuid"
)

// Slot statuses. Available slots can be booked; booked slots only appear
// when the caller asks for the full day grid.
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

// Slot is one bookable window on a doctor's calendar. Two slots are the same
// slot when doctor, start and duration all match.
type Slot struct {
	DoctorID        uuid.UUID  `json:"doctor_id"`
	Start           time.Time  `json:"start"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	EncounterID     *uuid.UUID `json:"encounter_id,omitempty"`
	PatientName     *string    `json:"patient_name,omitempty"`
}

// Request asks to book a concrete slot for a patient.
type Request struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          *string   `json:"reason,omitempty"`
}
