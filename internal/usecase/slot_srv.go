package usecase

import (
	"context"
	"fmt"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DelayValidation is the scheduler's structured verdict on a pickup/delivery
// pair. A rule miss is a value, not an error, so callers can surface the exact
// shortfall to the user.
type DelayValidation struct {
	Valid         bool
	RequiredHours float64
	ActualHours   float64
	Reason        string
}

type SlotService interface {
	GetAvailable(ctx context.Context, role entity.SlotRole, from, to time.Time) ([]response.SlotResponse, error)
	ResolveSlot(ctx context.Context, id uuid.UUID, role entity.SlotRole) (*entity.LogisticSlot, error)
	ValidateDelay(pickup, delivery *entity.LogisticSlot, serviceType entity.ServiceType) DelayValidation
	ValidateDelayBetween(pickupEnd, deliveryStart time.Time, serviceType entity.ServiceType) DelayValidation
}

type slotService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewSlotService(repo *repository.Repository, log *zap.Logger) SlotService {
	return &slotService{
		repo: repo,
		log:  log.With(zap.String("service", "slot")),
	}
}

func (s *slotService) GetAvailable(ctx context.Context, role entity.SlotRole, from, to time.Time) ([]response.SlotResponse, error) {
	if !role.IsValid() {
		return nil, newValidationError("invalid slot role", map[string]string{
			"role": fmt.Sprintf("must be %s or %s", entity.SlotRolePickup, entity.SlotRoleDelivery),
		})
	}
	if to.Before(from) {
		return nil, newValidationError("invalid date range", map[string]string{
			"end_date": "must not be before start_date",
		})
	}

	slots, err := s.repo.Slot.FindAvailable(ctx, role, from, to)
	if err != nil {
		return nil, transient(err)
	}

	// Only future-dated windows are bookable.
	now := time.Now()
	resp := make([]response.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		if slot.StartInstant().Before(now) {
			continue
		}
		resp = append(resp, response.SlotToResponse(slot))
	}

	s.log.Debug("Available slots retrieved",
		zap.String("role", string(role)),
		zap.Int("count", len(resp)),
	)

	return resp, nil
}

func (s *slotService) ResolveSlot(ctx context.Context, id uuid.UUID, role entity.SlotRole) (*entity.LogisticSlot, error) {
	slot, err := s.repo.Slot.FindByID(ctx, id)
	if err != nil {
		return nil, transient(err)
	}
	if slot == nil {
		return nil, &NotFoundError{Resource: "logistic slot", ID: id.String()}
	}
	if slot.Role != role {
		return nil, newValidationError("slot role mismatch", map[string]string{
			string(role) + "_slot_id": fmt.Sprintf("slot %s is a %s slot", id.String(), slot.Role),
		})
	}
	if !slot.IsOpen {
		return nil, newValidationError("slot is closed", map[string]string{
			string(role) + "_slot_id": "slot is no longer open for booking",
		})
	}
	return slot, nil
}

func (s *slotService) ValidateDelay(pickup, delivery *entity.LogisticSlot, serviceType entity.ServiceType) DelayValidation {
	return s.ValidateDelayBetween(pickup.EndInstant(), delivery.StartInstant(), serviceType)
}

func (s *slotService) ValidateDelayBetween(pickupEnd, deliveryStart time.Time, serviceType entity.ServiceType) DelayValidation {
	required := serviceType.MinDelayHours()

	// Millisecond instant difference, never calendar-day subtraction; calendar
	// math truncates across DST changes.
	actual := float64(deliveryStart.Sub(pickupEnd).Milliseconds()) / 3_600_000

	verdict := DelayValidation{
		RequiredHours: required,
		ActualHours:   actual,
	}

	if actual <= 0 {
		verdict.Reason = "delivery must start after pickup ends"
		return verdict
	}
	if actual < required {
		verdict.Reason = fmt.Sprintf("%s service needs at least %.0fh between pickup and delivery, got %.1fh",
			string(serviceType), required, actual)
		return verdict
	}

	verdict.Valid = true
	return verdict
}
