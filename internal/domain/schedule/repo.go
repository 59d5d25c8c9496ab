package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("schedule entry not found")

type RecurringRepository interface {
	Create(ctx context.Context, s *RecurringSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*RecurringSchedule, error)
	Update(ctx context.Context, s *RecurringSchedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RecurringSchedule, error)
	ListByDoctorWeekday(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*RecurringSchedule, error)
}

type OccasionalRepository interface {
	Create(ctx context.Context, s *OccasionalSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*OccasionalSchedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*OccasionalSchedule, int, error)
	ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*OccasionalSchedule, error)
}

type ClosedRepository interface {
	Create(ctx context.Context, w *ClosedWindow) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClosedWindow, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*ClosedWindow, int, error)
	// ListForDoctorDate returns closures that apply to the doctor on the
	// date: doctor-specific rows plus clinic-wide rows (nil doctor_id).
	ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*ClosedWindow, error)
}
