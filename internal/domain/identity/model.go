package identity

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ClinicID      *uuid.UUID `db:"clinic_id" json:"clinic_id,omitempty"`
	FullName      string     `db:"full_name" json:"full_name"`
	Specialty     *string    `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber string     `db:"license_number" json:"license_number"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patient table.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Sex         *string    `db:"sex" json:"sex,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the patient's name parts for display.
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
