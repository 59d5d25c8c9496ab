package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var validSexes = map[string]bool{"M": true, "F": true, "O": true}

type Service struct {
	doctors  DoctorRepository
	patients PatientRepository
}

func NewService(doctors DoctorRepository, patients PatientRepository) *Service {
	return &Service{doctors: doctors, patients: patients}
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if d.LicenseNumber == "" {
		return fmt.Errorf("license_number is required")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if d.LicenseNumber == "" {
		return fmt.Errorf("license_number is required")
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) ListDoctorsByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.ListByClinic(ctx, clinicID, limit, offset)
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.Sex != nil && !validSexes[*p.Sex] {
		return fmt.Errorf("invalid sex: %s", *p.Sex)
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.Sex != nil && !validSexes[*p.Sex] {
		return fmt.Errorf("invalid sex: %s", *p.Sex)
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	if name != "" {
		return s.patients.SearchByName(ctx, name, limit, offset)
	}
	return s.patients.List(ctx, limit, offset)
}
