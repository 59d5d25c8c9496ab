package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Encounter statuses. Cancelled encounters release their time window.
const (
	StatusScheduled  = "scheduled"
	StatusArrived    = "arrived"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// allowedTransitions describes the encounter lifecycle. Completed and
// cancelled are terminal.
var allowedTransitions = map[string][]string{
	StatusScheduled:  {StatusArrived, StatusCancelled},
	StatusArrived:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s is a known encounter status.
func ValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether an encounter may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Encounter is a booked appointment occupying a doctor's time.
type Encounter struct {
	ID              uuid.UUID `db:"id" json:"id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	Status          string    `db:"status" json:"status"`
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// EndsAt returns the exclusive end of the encounter's time window.
func (e *Encounter) EndsAt() time.Time {
	return e.ScheduledAt.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// Active reports whether the encounter still occupies its window.
func (e *Encounter) Active() bool {
	return e.Status != StatusCancelled
}

// StatusChange records one transition in an encounter's lifecycle.
type StatusChange struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	EncounterID uuid.UUID  `db:"encounter_id" json:"encounter_id"`
	FromStatus  string     `db:"from_status" json:"from_status"`
	ToStatus    string     `db:"to_status" json:"to_status"`
	ChangedBy   *uuid.UUID `db:"changed_by" json:"changed_by,omitempty"`
	ChangedAt   time.Time  `db:"changed_at" json:"changed_at"`
}
