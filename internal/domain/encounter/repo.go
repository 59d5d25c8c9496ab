package encounter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("encounter not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository interface {
	Create(ctx context.Context, e *Encounter) error
	GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Encounter, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Encounter, int, error)
	// ListActiveInWindow returns non-cancelled encounters whose scheduled_at
	// falls in [from, to).
	ListActiveInWindow(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Encounter, error)
	AddStatusChange(ctx context.Context, ch *StatusChange) error
	StatusHistory(ctx context.Context, encounterID uuid.UUID) ([]*StatusChange, error)
}
