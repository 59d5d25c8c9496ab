package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/domain/encounter"
	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrPastSlot        = errors.New("slot is in the past")
	ErrInvalidSlot     = errors.New("invalid slot request")
)

// Visit pairs an active encounter with the patient it belongs to, for
// annotating the day grid.
type Visit struct {
	Encounter   *encounter.Encounter
	PatientName string
}

// Store loads the per-day facts the engine needs and persists bookings. All
// methods participate in an ambient transaction when one is bound to ctx.
type Store interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	RecurringForWeekday(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]interval.Range, error)
	OccasionalForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]interval.Range, error)
	// ClosuresForDate returns the blocked windows applying to the doctor on
	// the date, including clinic-wide ones, and whether any closes the full
	// day.
	ClosuresForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]interval.Range, bool, error)
	// ActiveVisits returns non-cancelled encounters starting in [from, to).
	ActiveVisits(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Visit, error)
	CreateEncounter(ctx context.Context, e *encounter.Encounter) error
	// LockDoctor serializes bookings per doctor for the rest of the current
	// transaction.
	LockDoctor(ctx context.Context, doctorID uuid.UUID) error
}

// Tx runs fn transactionally.
type Tx interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Canceller releases a booked slot by cancelling its encounter.
type Canceller interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, to string, changedBy *uuid.UUID) (*encounter.Encounter, error)
}
