package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

// RecurringSchedule is a weekly working window for a doctor: every week on
// Weekday the doctor attends from StartMinute to EndMinute (minutes since
// midnight, half-open). Weekday follows time.Weekday, Sunday = 0.
type RecurringSchedule struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	DoctorID    uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	Weekday     time.Weekday `db:"weekday" json:"weekday"`
	StartMinute int          `db:"start_minute" json:"start_minute"`
	EndMinute   int          `db:"end_minute" json:"end_minute"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Range returns the working window as a half-open minute range.
func (r *RecurringSchedule) Range() (interval.Range, error) {
	return interval.New(r.StartMinute, r.EndMinute)
}

// OccasionalSchedule is an extra working window on one specific date, added
// on top of whatever the weekly pattern provides for that day.
type OccasionalSchedule struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date        time.Time `db:"date" json:"date"`
	StartMinute int       `db:"start_minute" json:"start_minute"`
	EndMinute   int       `db:"end_minute" json:"end_minute"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (o *OccasionalSchedule) Range() (interval.Range, error) {
	return interval.New(o.StartMinute, o.EndMinute)
}

// ClosedWindow blocks time on a specific date. A nil DoctorID closes the
// whole clinic; FullDay closes the entire date regardless of the minutes.
type ClosedWindow struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	DoctorID    *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Date        time.Time  `db:"date" json:"date"`
	FullDay     bool       `db:"full_day" json:"full_day"`
	StartMinute int        `db:"start_minute" json:"start_minute"`
	EndMinute   int        `db:"end_minute" json:"end_minute"`
	Reason      *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Range returns the blocked window. Full-day closures cover the whole day.
func (w *ClosedWindow) Range() (interval.Range, error) {
	if w.FullDay {
		return interval.Range{Start: 0, End: interval.MinutesPerDay}, nil
	}
	return interval.New(w.StartMinute, w.EndMinute)
}
