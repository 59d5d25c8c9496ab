package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-api/internal/domain/clinic"
	"github.com/clinicdesk/clinic-api/internal/domain/identity"
	"github.com/clinicdesk/clinic-api/internal/domain/schedule"
)

// seed inserts a demo clinic with one doctor, one patient and a Monday to
// Friday schedule, so a fresh database has something to book against.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	clinicRepo := clinic.NewRepoPG(pool)
	doctorRepo := identity.NewDoctorRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	recurringRepo := schedule.NewRecurringRepoPG(pool)

	phone := "+55 11 5555-0100"
	c := &clinic.Clinic{Name: "Clinica Boa Vista", Phone: &phone}
	if err := clinicRepo.Create(ctx, c); err != nil {
		return fmt.Errorf("seed clinic: %w", err)
	}

	specialty := "General Practice"
	d := &identity.Doctor{
		ClinicID:      &c.ID,
		FullName:      "Dr. Helena Souza",
		Specialty:     &specialty,
		LicenseNumber: "CRM-SP 123456",
	}
	if err := doctorRepo.Create(ctx, d); err != nil {
		return fmt.Errorf("seed doctor: %w", err)
	}

	sex := "F"
	p := &identity.Patient{FirstName: "Ana", LastName: "Lima", Sex: &sex}
	if err := patientRepo.Create(ctx, p); err != nil {
		return fmt.Errorf("seed patient: %w", err)
	}

	// Weekdays 08:00-12:00 and 13:00-17:00.
	for wd := time.Monday; wd <= time.Friday; wd++ {
		for _, window := range [][2]int{{8 * 60, 12 * 60}, {13 * 60, 17 * 60}} {
			s := &schedule.RecurringSchedule{
				DoctorID:    d.ID,
				Weekday:     wd,
				StartMinute: window[0],
				EndMinute:   window[1],
			}
			if err := recurringRepo.Create(ctx, s); err != nil {
				return fmt.Errorf("seed schedule: %w", err)
			}
		}
	}

	fmt.Printf("Seeded clinic %s\n  doctor  %s\n  patient %s\n", c.ID, d.ID, p.ID)
	return nil
}
