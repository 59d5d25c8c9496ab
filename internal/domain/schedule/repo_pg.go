package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-api/internal/platform/db"
)

// =========== Recurring Repository ===========

type recurringRepoPG struct{ pool *pgxpool.Pool }

func NewRecurringRepoPG(pool *pgxpool.Pool) RecurringRepository { return &recurringRepoPG{pool: pool} }

func (r *recurringRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const recurringCols = `id, doctor_id, weekday, start_minute, end_minute, created_at, updated_at`

func scanRecurring(row pgx.Row) (*RecurringSchedule, error) {
	var s RecurringSchedule
	err := row.Scan(&s.ID, &s.DoctorID, &s.Weekday, &s.StartMinute, &s.EndMinute,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *recurringRepoPG) Create(ctx context.Context, s *RecurringSchedule) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO recurring_schedule (id, doctor_id, weekday, start_minute, end_minute)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		s.ID, s.DoctorID, s.Weekday, s.StartMinute, s.EndMinute).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *recurringRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RecurringSchedule, error) {
	return scanRecurring(r.conn(ctx).QueryRow(ctx, `SELECT `+recurringCols+` FROM recurring_schedule WHERE id = $1`, id))
}

func (r *recurringRepoPG) Update(ctx context.Context, s *RecurringSchedule) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE recurring_schedule SET weekday=$2, start_minute=$3, end_minute=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Weekday, s.StartMinute, s.EndMinute)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recurringRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM recurring_schedule WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recurringRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*RecurringSchedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recurringCols+` FROM recurring_schedule
		WHERE doctor_id = $1 ORDER BY weekday, start_minute`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecurring(rows)
}

func (r *recurringRepoPG) ListByDoctorWeekday(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*RecurringSchedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recurringCols+` FROM recurring_schedule
		WHERE doctor_id = $1 AND weekday = $2 ORDER BY start_minute`, doctorID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecurring(rows)
}

func collectRecurring(rows pgx.Rows) ([]*RecurringSchedule, error) {
	var items []*RecurringSchedule
	for rows.Next() {
		s, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Occasional Repository ===========

type occasionalRepoPG struct{ pool *pgxpool.Pool }

func NewOccasionalRepoPG(pool *pgxpool.Pool) OccasionalRepository { return &occasionalRepoPG{pool: pool} }

func (r *occasionalRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const occasionalCols = `id, doctor_id, date, start_minute, end_minute, created_at, updated_at`

func scanOccasional(row pgx.Row) (*OccasionalSchedule, error) {
	var s OccasionalSchedule
	err := row.Scan(&s.ID, &s.DoctorID, &s.Date, &s.StartMinute, &s.EndMinute,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *occasionalRepoPG) Create(ctx context.Context, s *OccasionalSchedule) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO occasional_schedule (id, doctor_id, date, start_minute, end_minute)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		s.ID, s.DoctorID, s.Date, s.StartMinute, s.EndMinute).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *occasionalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OccasionalSchedule, error) {
	return scanOccasional(r.conn(ctx).QueryRow(ctx, `SELECT `+occasionalCols+` FROM occasional_schedule WHERE id = $1`, id))
}

func (r *occasionalRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM occasional_schedule WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *occasionalRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*OccasionalSchedule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM occasional_schedule WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+occasionalCols+` FROM occasional_schedule
		WHERE doctor_id = $1 ORDER BY date, start_minute LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectOccasional(rows)
	return items, total, err
}

func (r *occasionalRepoPG) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*OccasionalSchedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+occasionalCols+` FROM occasional_schedule
		WHERE doctor_id = $1 AND date = $2 ORDER BY start_minute`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOccasional(rows)
}

func collectOccasional(rows pgx.Rows) ([]*OccasionalSchedule, error) {
	var items []*OccasionalSchedule
	for rows.Next() {
		s, err := scanOccasional(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Closed Repository ===========

type closedRepoPG struct{ pool *pgxpool.Pool }

func NewClosedRepoPG(pool *pgxpool.Pool) ClosedRepository { return &closedRepoPG{pool: pool} }

func (r *closedRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const closedCols = `id, doctor_id, date, full_day, start_minute, end_minute, reason, created_at, updated_at`

func scanClosed(row pgx.Row) (*ClosedWindow, error) {
	var w ClosedWindow
	err := row.Scan(&w.ID, &w.DoctorID, &w.Date, &w.FullDay, &w.StartMinute, &w.EndMinute,
		&w.Reason, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &w, err
}

func (r *closedRepoPG) Create(ctx context.Context, w *ClosedWindow) error {
	w.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO closed_window (id, doctor_id, date, full_day, start_minute, end_minute, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		w.ID, w.DoctorID, w.Date, w.FullDay, w.StartMinute, w.EndMinute, w.Reason).
		Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (r *closedRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClosedWindow, error) {
	return scanClosed(r.conn(ctx).QueryRow(ctx, `SELECT `+closedCols+` FROM closed_window WHERE id = $1`, id))
}

func (r *closedRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM closed_window WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *closedRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*ClosedWindow, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM closed_window WHERE doctor_id = $1 OR doctor_id IS NULL`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+closedCols+` FROM closed_window
		WHERE doctor_id = $1 OR doctor_id IS NULL
		ORDER BY date, start_minute LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectClosed(rows)
	return items, total, err
}

func (r *closedRepoPG) ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*ClosedWindow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+closedCols+` FROM closed_window
		WHERE date = $2 AND (doctor_id = $1 OR doctor_id IS NULL)
		ORDER BY start_minute`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClosed(rows)
}

func collectClosed(rows pgx.Rows) ([]*ClosedWindow, error) {
	var items []*ClosedWindow
	for rows.Next() {
		w, err := scanClosed(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}
