package encounter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Tx runs fn transactionally; repositories called inside fn share one
// transaction.
type Tx interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo Repository
	tx   Tx
	log  zerolog.Logger
}

func NewService(repo Repository, tx Tx, log zerolog.Logger) *Service {
	return &Service{repo: repo, tx: tx, log: log}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListActiveInWindow(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Encounter, error) {
	return s.repo.ListActiveInWindow(ctx, doctorID, from, to)
}

// UpdateStatus moves an encounter through its lifecycle, recording the
// transition. The read, update and history insert share one transaction so a
// concurrent change cannot interleave.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to string, changedBy *uuid.UUID) (*Encounter, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	var out *Encounter
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(e.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, to)
		}
		if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		ch := &StatusChange{EncounterID: id, FromStatus: e.Status, ToStatus: to, ChangedBy: changedBy}
		if err := s.repo.AddStatusChange(ctx, ch); err != nil {
			return err
		}
		e.Status = to
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("encounter_id", id.String()).
		Str("status", to).
		Msg("encounter status updated")
	return out, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	return s.repo.UpdateNotes(ctx, id, notes)
}

func (s *Service) StatusHistory(ctx context.Context, id uuid.UUID) ([]*StatusChange, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.StatusHistory(ctx, id)
}
