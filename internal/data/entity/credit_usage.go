package entity

import (
	"github.com/google/uuid"
)

// CreditUsage is an append-only record of a credit consumed by a booking, kept
// for reporting and "amount saved" aggregation.
type CreditUsage struct {
	BaseSimple
	SubscriptionCreditID uuid.UUID `db:"subscription_credit_id"`
	SubscriptionID       uuid.UUID `db:"subscription_id"`
	BookingID            uuid.UUID `db:"booking_id"`
	DiscountCents        int64     `db:"discount_cents"`
	SurplusCents         int64     `db:"surplus_cents"`
}
