package clinic

import (
	"time"

	"github.com/google/uuid"
)

// Clinic maps to the clinic table.
type Clinic struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CNPJ      *string   `db:"cnpj" json:"cnpj,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Street    *string   `db:"street" json:"street,omitempty"`
	City      *string   `db:"city" json:"city,omitempty"`
	State     *string   `db:"state" json:"state,omitempty"`
	ZipCode   *string   `db:"zip_code" json:"zip_code,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
