package entity

import (
	"github.com/google/uuid"
)

// BookingItem is a service line attached to a booking. Items are created
// atomically with the booking and are immutable once the booking leaves
// pending/pending_payment.
type BookingItem struct {
	BaseSimple
	BookingID           uuid.UUID `db:"booking_id"`
	ServiceID           uuid.UUID `db:"service_id"`
	Quantity            int       `db:"quantity"`
	UnitPriceCents      int64     `db:"unit_price_cents"`
	SpecialInstructions *string   `db:"special_instructions"`
}
