package encounter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-api/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const encounterCols = `id, doctor_id, patient_id, status, scheduled_at, duration_minutes, reason, notes, created_at, updated_at`

func scanEncounter(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.DoctorID, &e.PatientID, &e.Status, &e.ScheduledAt,
		&e.DurationMinutes, &e.Reason, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Encounter) error {
	e.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO encounter (id, doctor_id, patient_id, status, scheduled_at, duration_minutes, reason, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		e.ID, e.DoctorID, e.PatientID, e.Status, e.ScheduledAt, e.DurationMinutes, e.Reason, e.Notes).
		Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return scanEncounter(r.conn(ctx).QueryRow(ctx, `SELECT `+encounterCols+` FROM encounter WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE encounter SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE encounter SET notes=$2, updated_at=NOW() WHERE id = $1`, id, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM encounter WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+encounterCols+` FROM encounter
		WHERE doctor_id = $1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectEncounters(rows)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM encounter WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+encounterCols+` FROM encounter
		WHERE patient_id = $1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectEncounters(rows)
	return items, total, err
}

func (r *repoPG) ListActiveInWindow(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Encounter, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+encounterCols+` FROM encounter
		WHERE doctor_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3 AND status <> 'cancelled'
		ORDER BY scheduled_at`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEncounters(rows)
}

func collectEncounters(rows pgx.Rows) ([]*Encounter, error) {
	var items []*Encounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *repoPG) AddStatusChange(ctx context.Context, ch *StatusChange) error {
	ch.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO encounter_status_change (id, encounter_id, from_status, to_status, changed_by)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING changed_at`,
		ch.ID, ch.EncounterID, ch.FromStatus, ch.ToStatus, ch.ChangedBy).
		Scan(&ch.ChangedAt)
}

func (r *repoPG) StatusHistory(ctx context.Context, encounterID uuid.UUID) ([]*StatusChange, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, encounter_id, from_status, to_status, changed_by, changed_at
		FROM encounter_status_change
		WHERE encounter_id = $1 ORDER BY changed_at`, encounterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StatusChange
	for rows.Next() {
		var ch StatusChange
		if err := rows.Scan(&ch.ID, &ch.EncounterID, &ch.FromStatus, &ch.ToStatus, &ch.ChangedBy, &ch.ChangedAt); err != nil {
			return nil, err
		}
		items = append(items, &ch)
	}
	return items, rows.Err()
}
