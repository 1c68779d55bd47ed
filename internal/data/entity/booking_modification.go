package entity

import (
	"github.com/google/uuid"
)

// BookingModification is an append-only audit row. One row per changed field,
// written in the order the fields changed; compliance review depends on that
// causal ordering.
type BookingModification struct {
	BaseSimple
	BookingID uuid.UUID `db:"booking_id"`
	Field     string    `db:"field"`
	OldValue  string    `db:"old_value"`
	NewValue  string    `db:"new_value"`
	Actor     string    `db:"actor"`
	Reason    *string   `db:"reason"`
}
