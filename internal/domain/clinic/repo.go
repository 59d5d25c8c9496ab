package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no clinic matches the given id.
var ErrNotFound = errors.New("clinic not found")

type Repository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Clinic, int, error)
}
