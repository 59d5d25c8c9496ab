package clinic

import (
	"context"
	"errors"

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

const clinicCols = `id, name, cnpj, phone, email, street, city, state, zip_code, created_at, updated_at`

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.CNPJ, &c.Phone, &c.Email,
		&c.Street, &c.City, &c.State, &c.ZipCode, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Clinic) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinic (id, name, cnpj, phone, email, street, city, state, zip_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.CNPJ, c.Phone, c.Email, c.Street, c.City, c.State, c.ZipCode).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return scanClinic(r.conn(ctx).QueryRow(ctx, `SELECT `+clinicCols+` FROM clinic WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Clinic) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinic SET name=$2, cnpj=$3, phone=$4, email=$5, street=$6, city=$7,
			state=$8, zip_code=$9, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.CNPJ, c.Phone, c.Email, c.Street, c.City, c.State, c.ZipCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinic WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clinic`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+clinicCols+` FROM clinic ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
