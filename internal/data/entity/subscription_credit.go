package entity

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionCredit is the per-subscription weekly credit counter. One active
// row per subscription per week; the weekly reset writes a new row and never
// mutates the superseded one, so usage history stays queryable.
type SubscriptionCredit struct {
	BaseSimple
	SubscriptionID   uuid.UUID `db:"subscription_id"`
	CreditsTotal     int       `db:"credits_total"`
	CreditsRemaining int       `db:"credits_remaining"`
	WeekStartDate    time.Time `db:"week_start_date"`
	ResetAt          time.Time `db:"reset_at"`
}

// WeekStart truncates t to the Monday 00:00 of its week.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}
