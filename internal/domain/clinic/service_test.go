package clinic

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	clinics map[uuid.UUID]*Clinic
}

func newMockRepo() *mockRepo {
	return &mockRepo{clinics: make(map[uuid.UUID]*Clinic)}
}

func (m *mockRepo) Create(_ context.Context, c *Clinic) error {
	c.ID = uuid.New()
	m.clinics[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Clinic, error) {
	c, ok := m.clinics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) Update(_ context.Context, c *Clinic) error {
	if _, ok := m.clinics[c.ID]; !ok {
		return ErrNotFound
	}
	m.clinics[c.ID] = c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.clinics[id]; !ok {
		return ErrNotFound
	}
	delete(m.clinics, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Clinic, int, error) {
	var items []*Clinic
	for _, c := range m.clinics {
		items = append(items, c)
	}
	return items, len(items), nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), &Clinic{}); err == nil {
		t.Error("expected error for clinic without name")
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(newMockRepo())
	cl := &Clinic{Name: "Downtown Clinic"}
	if err := svc.Create(context.Background(), cl); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(context.Background(), cl.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Downtown Clinic" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestDeleteMissing(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Delete(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
