package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusPickedUp       BookingStatus = "picked_up"
	BookingStatusInProgress     BookingStatus = "in_progress"
	BookingStatusReady          BookingStatus = "ready"
	BookingStatusDelivered      BookingStatus = "delivered"
	BookingStatusCompleted      BookingStatus = "completed"
	BookingStatusCancelled      BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// bookingTransitions maps every status to the statuses reachable from it.
// Delivered only moves forward to completed; cancellation is not legal from there.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPendingPayment: {BookingStatusPending, BookingStatusCancelled},
	BookingStatusPending:        {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:      {BookingStatusPickedUp, BookingStatusCancelled},
	BookingStatusPickedUp:       {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress:     {BookingStatusReady, BookingStatusCancelled},
	BookingStatusReady:          {BookingStatusDelivered, BookingStatusCancelled},
	BookingStatusDelivered:      {BookingStatusCompleted},
	BookingStatusCompleted:      {},
	BookingStatusCancelled:      {},
}

// CanTransition reports whether to is reachable from the current status in one step.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is legal.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// GuestContact is the contact snapshot captured for bookings made without an
// account. It is kept for audit even after the booking is claimed by an
// auto-created user.
type GuestContact struct {
	FirstName string `db:"guest_first_name"`
	LastName  string `db:"guest_last_name"`
	Email     string `db:"guest_email"`
	Phone     string `db:"guest_phone"`
}

type Booking struct {
	Base
	BookingNumber string        `db:"booking_number"`
	UserID        *uuid.UUID    `db:"user_id"`
	Guest         *GuestContact `db:"-"`
	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`

	// Money in integer cents, never floats.
	TotalAmountCents    int64  `db:"total_amount_cents"`
	UsedCredit          bool   `db:"used_credit"`
	CreditDiscountCents *int64 `db:"credit_discount_cents"`
	CreditSurplusCents  *int64 `db:"credit_surplus_cents"`

	Schedule Schedule `db:"-"`

	PickupAddressID   *uuid.UUID       `db:"pickup_address_id"`
	DeliveryAddressID *uuid.UUID       `db:"delivery_address_id"`
	PickupAddress     *AddressSnapshot `db:"-"`
	DeliveryAddress   *AddressSnapshot `db:"-"`

	// External payment correlation, used as the idempotency key.
	PaymentSessionID *string    `db:"payment_session_id"`
	PaymentIntentID  *string    `db:"payment_intent_id"`
	PaidAt           *time.Time `db:"paid_at"`

	CancelledAt        *time.Time `db:"cancelled_at"`
	CancelledBy        *string    `db:"cancelled_by"`
	CancellationReason *string    `db:"cancellation_reason"`
}

// IsGuest reports whether the booking has not been attached to a user yet.
func (b *Booking) IsGuest() bool {
	return b.UserID == nil
}
