package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan string

const (
	PlanMonthly   SubscriptionPlan = "monthly"
	PlanQuarterly SubscriptionPlan = "quarterly"
)

// CreditsPerWeek returns the number of free-booking credits the plan grants
// each week.
func (p SubscriptionPlan) CreditsPerWeek() int {
	switch p {
	case PlanMonthly:
		return 2
	case PlanQuarterly:
		return 3
	default:
		return 0
	}
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	Base
	UserID             uuid.UUID          `db:"user_id"`
	Plan               SubscriptionPlan   `db:"plan"`
	Status             SubscriptionStatus `db:"status"`
	CurrentPeriodStart *time.Time         `db:"current_period_start"`
	CurrentPeriodEnd   *time.Time         `db:"current_period_end"`
}

// IsEntitled reports whether the subscription currently earns weekly credits.
func (s *Subscription) IsEntitled() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
