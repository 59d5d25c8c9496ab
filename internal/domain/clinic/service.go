package clinic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, c *Clinic) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Clinic) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	return s.repo.List(ctx, limit, offset)
}
