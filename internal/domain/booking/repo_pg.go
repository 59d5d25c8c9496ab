package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-api/internal/domain/encounter"
	"github.com/clinicdesk/clinic-api/internal/domain/schedule"
	"github.com/clinicdesk/clinic-api/internal/platform/db"
	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

type storePG struct {
	pool       *pgxpool.Pool
	recurring  schedule.RecurringRepository
	occasional schedule.OccasionalRepository
	closed     schedule.ClosedRepository
	encounters encounter.Repository
}

// NewStorePG builds the postgres-backed Store. Schedule and encounter reads
// and writes go through the owning repositories so each table keeps a single
// query path; the repositories resolve their connection from the context, so
// inside the booking transaction they run on the transaction's connection.
func NewStorePG(pool *pgxpool.Pool, recurring schedule.RecurringRepository,
	occasional schedule.OccasionalRepository, closed schedule.ClosedRepository,
	encounters encounter.Repository) Store {
	return &storePG{
		pool:       pool,
		recurring:  recurring,
		occasional: occasional,
		closed:     closed,
		encounters: encounters,
	}
}

func (s *storePG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, s.pool)
}

func (s *storePG) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM doctor WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (s *storePG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (s *storePG) RecurringForWeekday(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]interval.Range, error) {
	entries, err := s.recurring.ListByDoctorWeekday(ctx, doctorID, weekday)
	if err != nil {
		return nil, err
	}
	return recurringRanges(entries)
}

func (s *storePG) OccasionalForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]interval.Range, error) {
	entries, err := s.occasional.ListByDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	return occasionalRanges(entries)
}

func (s *storePG) ClosuresForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]interval.Range, bool, error) {
	windows, err := s.closed.ListForDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, false, err
	}
	return closureRanges(windows)
}

func recurringRanges(entries []*schedule.RecurringSchedule) ([]interval.Range, error) {
	ranges := make([]interval.Range, 0, len(entries))
	for _, e := range entries {
		r, err := e.Range()
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func occasionalRanges(entries []*schedule.OccasionalSchedule) ([]interval.Range, error) {
	ranges := make([]interval.Range, 0, len(entries))
	for _, e := range entries {
		r, err := e.Range()
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// closureRanges splits closures into partial-day ranges and a full-day flag.
// One full-day row closes the date no matter what else is present.
func closureRanges(windows []*schedule.ClosedWindow) ([]interval.Range, bool, error) {
	var ranges []interval.Range
	fullDay := false
	for _, w := range windows {
		if w.FullDay {
			fullDay = true
			continue
		}
		r, err := w.Range()
		if err != nil {
			return nil, false, err
		}
		ranges = append(ranges, r)
	}
	return ranges, fullDay, nil
}

func (s *storePG) ActiveVisits(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Visit, error) {
	rows, err := s.conn(ctx).Query(ctx, `
		SELECT e.id, e.doctor_id, e.patient_id, e.status, e.scheduled_at, e.duration_minutes,
			e.reason, e.notes, e.created_at, e.updated_at,
			p.first_name, p.last_name
		FROM encounter e
		JOIN patient p ON p.id = e.patient_id
		WHERE e.doctor_id = $1 AND e.scheduled_at >= $2 AND e.scheduled_at < $3
			AND e.status <> 'cancelled'
		ORDER BY e.scheduled_at`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var e encounter.Encounter
		var firstName, lastName string
		if err := rows.Scan(&e.ID, &e.DoctorID, &e.PatientID, &e.Status, &e.ScheduledAt,
			&e.DurationMinutes, &e.Reason, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
			&firstName, &lastName); err != nil {
			return nil, err
		}
		name := firstName
		if lastName != "" {
			name += " " + lastName
		}
		visits = append(visits, Visit{Encounter: &e, PatientName: name})
	}
	return visits, rows.Err()
}

func (s *storePG) CreateEncounter(ctx context.Context, e *encounter.Encounter) error {
	return s.encounters.Create(ctx, e)
}

func (s *storePG) LockDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := s.conn(ctx).Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, doctorID)
	return err
}
