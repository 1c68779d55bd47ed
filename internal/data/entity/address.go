package entity

import (
	"github.com/google/uuid"
)

// Address is a persisted, reusable address owned by a registered user.
// An address with active bookings referencing it cannot be deleted.
type Address struct {
	Base
	UserID             uuid.UUID `db:"user_id"`
	Street             string    `db:"street"`
	City               string    `db:"city"`
	PostalCode         string    `db:"postal_code"`
	Building           *string   `db:"building"`
	AccessInstructions *string   `db:"access_instructions"`
	IsDefault          bool      `db:"is_default"`
}

// AddressSnapshot is the booking-scoped form used for guests. It is embedded
// on the booking and never persisted standalone.
type AddressSnapshot struct {
	Street             string  `db:"street"`
	City               string  `db:"city"`
	PostalCode         string  `db:"postal_code"`
	Building           *string `db:"building"`
	AccessInstructions *string `db:"access_instructions"`
}

// Snapshot converts a persisted address into the booking-scoped form.
func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Street:             a.Street,
		City:               a.City,
		PostalCode:         a.PostalCode,
		Building:           a.Building,
		AccessInstructions: a.AccessInstructions,
	}
}
