package entity

import (
	"fmt"
	"time"
)

type SlotRole string

const (
	SlotRolePickup   SlotRole = "pickup"
	SlotRoleDelivery SlotRole = "delivery"
)

func (r SlotRole) IsValid() bool {
	return r == SlotRolePickup || r == SlotRoleDelivery
}

// LogisticSlot is an operationally published pickup or delivery window.
// The core only reads and validates these; staff tooling writes them.
type LogisticSlot struct {
	BaseSimple
	Role      SlotRole  `db:"role"`
	Date      time.Time `db:"slot_date"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
	IsOpen    bool      `db:"is_open"`
}

// StartInstant merges the slot date with its start time of day.
func (s *LogisticSlot) StartInstant() time.Time {
	return combineDateTime(s.Date, s.StartTime)
}

// EndInstant merges the slot date with its end time of day.
func (s *LogisticSlot) EndInstant() time.Time {
	return combineDateTime(s.Date, s.EndTime)
}

// TimeSlotLabel renders the window as "HH:MM-HH:MM" for the legacy schedule form.
func (s *LogisticSlot) TimeSlotLabel() string {
	return fmt.Sprintf("%s-%s", s.StartTime.Format("15:04"), s.EndTime.Format("15:04"))
}

func combineDateTime(date, tod time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), 0, 0, date.Location())
}
