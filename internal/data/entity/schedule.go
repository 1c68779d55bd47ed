package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ScheduleKind string

const (
	ScheduleKindLegacy ScheduleKind = "legacy"
	ScheduleKindSlots  ScheduleKind = "slots"
)

// LegacySchedule is the free-text date + time-slot pair used before logistic
// slots existed.
type LegacySchedule struct {
	PickupDate       time.Time
	PickupTimeSlot   string
	DeliveryDate     time.Time
	DeliveryTimeSlot string
}

// SlotSchedule references two published logistic slots.
type SlotSchedule struct {
	PickupSlotID   uuid.UUID
	DeliverySlotID uuid.UUID
	PickupSlot     *LogisticSlot
	DeliverySlot   *LogisticSlot
}

// Schedule is a tagged union over the two schedule representations. The legacy
// form of a slot-based schedule is always derived through Legacy, never stored
// independently mutable.
type Schedule struct {
	Kind   ScheduleKind
	Legacy *LegacySchedule
	Slots  *SlotSchedule
}

func NewLegacySchedule(pickupDate time.Time, pickupSlot string, deliveryDate time.Time, deliverySlot string) Schedule {
	return Schedule{
		Kind: ScheduleKindLegacy,
		Legacy: &LegacySchedule{
			PickupDate:       pickupDate,
			PickupTimeSlot:   pickupSlot,
			DeliveryDate:     deliveryDate,
			DeliveryTimeSlot: deliverySlot,
		},
	}
}

func NewSlotSchedule(pickup, delivery *LogisticSlot) Schedule {
	return Schedule{
		Kind: ScheduleKindSlots,
		Slots: &SlotSchedule{
			PickupSlotID:   pickup.ID,
			DeliverySlotID: delivery.ID,
			PickupSlot:     pickup,
			DeliverySlot:   delivery,
		},
	}
}

// Derive returns the legacy representation, deriving it from the slots when the
// schedule is slot-based. This is the single derivation point for the dual
// persisted form.
func (s Schedule) Derive() (LegacySchedule, error) {
	switch s.Kind {
	case ScheduleKindLegacy:
		if s.Legacy == nil {
			return LegacySchedule{}, fmt.Errorf("legacy schedule missing payload")
		}
		return *s.Legacy, nil
	case ScheduleKindSlots:
		if s.Slots != nil && s.Slots.PickupSlot != nil && s.Slots.DeliverySlot != nil {
			p, d := s.Slots.PickupSlot, s.Slots.DeliverySlot
			return LegacySchedule{
				PickupDate:       p.Date,
				PickupTimeSlot:   p.TimeSlotLabel(),
				DeliveryDate:     d.Date,
				DeliveryTimeSlot: d.TimeSlotLabel(),
			}, nil
		}
		// A schedule scanned from storage carries slot ids plus the persisted
		// legacy form; use that when the slot rows are not loaded.
		if s.Legacy != nil {
			return *s.Legacy, nil
		}
		return LegacySchedule{}, fmt.Errorf("slot schedule missing loaded slots")
	default:
		return LegacySchedule{}, fmt.Errorf("unknown schedule kind %q", s.Kind)
	}
}

// PickupStart returns the instant the pickup window opens.
func (s Schedule) PickupStart() (time.Time, error) {
	if s.Kind == ScheduleKindSlots && s.Slots != nil && s.Slots.PickupSlot != nil {
		return s.Slots.PickupSlot.StartInstant(), nil
	}
	legacy, err := s.Derive()
	if err != nil {
		return time.Time{}, err
	}
	return combineDateSlotStart(legacy.PickupDate, legacy.PickupTimeSlot), nil
}

// PickupEnd returns the instant the pickup window closes.
func (s Schedule) PickupEnd() (time.Time, error) {
	if s.Kind == ScheduleKindSlots && s.Slots != nil && s.Slots.PickupSlot != nil {
		return s.Slots.PickupSlot.EndInstant(), nil
	}
	legacy, err := s.Derive()
	if err != nil {
		return time.Time{}, err
	}
	return combineDateSlotEnd(legacy.PickupDate, legacy.PickupTimeSlot), nil
}

// DeliveryStart returns the instant the delivery window opens.
func (s Schedule) DeliveryStart() (time.Time, error) {
	if s.Kind == ScheduleKindSlots && s.Slots != nil && s.Slots.DeliverySlot != nil {
		return s.Slots.DeliverySlot.StartInstant(), nil
	}
	legacy, err := s.Derive()
	if err != nil {
		return time.Time{}, err
	}
	return combineDateSlotStart(legacy.DeliveryDate, legacy.DeliveryTimeSlot), nil
}

// combineDateSlotStart merges a date with the "HH:MM-HH:MM" slot label start.
// A malformed label falls back to midnight of the date.
func combineDateSlotStart(date time.Time, slot string) time.Time {
	var h, m int
	if _, err := fmt.Sscanf(slot, "%d:%d", &h, &m); err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
}

// combineDateSlotEnd merges a date with the "HH:MM-HH:MM" slot label end.
// A label without an end part falls back to the start.
func combineDateSlotEnd(date time.Time, slot string) time.Time {
	var sh, sm, eh, em int
	if _, err := fmt.Sscanf(slot, "%d:%d-%d:%d", &sh, &sm, &eh, &em); err != nil {
		return combineDateSlotStart(date, slot)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), eh, em, 0, 0, date.Location())
}
