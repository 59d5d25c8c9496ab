package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

type Service struct {
	recurring  RecurringRepository
	occasional OccasionalRepository
	closed     ClosedRepository
}

func NewService(recurring RecurringRepository, occasional OccasionalRepository, closed ClosedRepository) *Service {
	return &Service{recurring: recurring, occasional: occasional, closed: closed}
}

func validateWindow(start, end int) error {
	if _, err := interval.New(start, end); err != nil {
		return err
	}
	if start < 0 || end > interval.MinutesPerDay {
		return fmt.Errorf("window must fall within a single day (0..%d minutes)", interval.MinutesPerDay)
	}
	return nil
}

// truncateDate drops the time-of-day part so DATE columns compare cleanly.
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// -- Recurring --

func (s *Service) CreateRecurring(ctx context.Context, r *RecurringSchedule) error {
	if r.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("weekday must be 0 (Sunday) through 6 (Saturday), got %d", r.Weekday)
	}
	if err := validateWindow(r.StartMinute, r.EndMinute); err != nil {
		return err
	}
	return s.recurring.Create(ctx, r)
}

func (s *Service) GetRecurring(ctx context.Context, id uuid.UUID) (*RecurringSchedule, error) {
	return s.recurring.GetByID(ctx, id)
}

func (s *Service) UpdateRecurring(ctx context.Context, r *RecurringSchedule) error {
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("weekday must be 0 (Sunday) through 6 (Saturday), got %d", r.Weekday)
	}
	if err := validateWindow(r.StartMinute, r.EndMinute); err != nil {
		return err
	}
	return s.recurring.Update(ctx, r)
}

func (s *Service) DeleteRecurring(ctx context.Context, id uuid.UUID) error {
	return s.recurring.Delete(ctx, id)
}

func (s *Service) ListRecurringByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RecurringSchedule, error) {
	return s.recurring.ListByDoctor(ctx, doctorID)
}

// -- Occasional --

func (s *Service) CreateOccasional(ctx context.Context, o *OccasionalSchedule) error {
	if o.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if o.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if err := validateWindow(o.StartMinute, o.EndMinute); err != nil {
		return err
	}
	o.Date = truncateDate(o.Date)
	return s.occasional.Create(ctx, o)
}

func (s *Service) GetOccasional(ctx context.Context, id uuid.UUID) (*OccasionalSchedule, error) {
	return s.occasional.GetByID(ctx, id)
}

func (s *Service) DeleteOccasional(ctx context.Context, id uuid.UUID) error {
	return s.occasional.Delete(ctx, id)
}

func (s *Service) ListOccasionalByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*OccasionalSchedule, int, error) {
	return s.occasional.ListByDoctor(ctx, doctorID, limit, offset)
}

// -- Closed windows --

func (s *Service) CreateClosed(ctx context.Context, w *ClosedWindow) error {
	if w.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if w.FullDay {
		w.StartMinute, w.EndMinute = 0, interval.MinutesPerDay
	} else if err := validateWindow(w.StartMinute, w.EndMinute); err != nil {
		return err
	}
	w.Date = truncateDate(w.Date)
	return s.closed.Create(ctx, w)
}

func (s *Service) GetClosed(ctx context.Context, id uuid.UUID) (*ClosedWindow, error) {
	return s.closed.GetByID(ctx, id)
}

func (s *Service) DeleteClosed(ctx context.Context, id uuid.UUID) error {
	return s.closed.Delete(ctx, id)
}

func (s *Service) ListClosedByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*ClosedWindow, int, error) {
	return s.closed.ListByDoctor(ctx, doctorID, limit, offset)
}
