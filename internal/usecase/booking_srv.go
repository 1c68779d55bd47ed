package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/dto/request"
	"pressing-booking/internal/dto/response"
	"pressing-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cancellationWindowHours is how long before the pickup window opens a
// customer may still cancel.
const cancellationWindowHours = 24.0

type BookingService interface {
	Create(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetByID(ctx context.Context, userID, bookingID uuid.UUID, isAdmin bool) (*response.BookingResponse, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]response.BookingResponse, int64, error)
	// Transition moves the booking one legal step through its lifecycle.
	// Staff-only; the write is conditional on the expected current status.
	Transition(ctx context.Context, bookingID uuid.UUID, to entity.BookingStatus, actor string) (*response.BookingResponse, error)
	Cancel(ctx context.Context, userID, bookingID uuid.UUID, req *request.CancelBookingRequest) (*response.BookingResponse, error)
	Modify(ctx context.Context, userID, bookingID uuid.UUID, req *request.ModifyBookingRequest) (*response.BookingResponse, error)
	ReportProblem(ctx context.Context, userID, bookingID uuid.UUID, req *request.ReportProblemRequest) (*response.ReportResponse, error)
	GetModifications(ctx context.Context, userID, bookingID uuid.UUID) ([]response.ModificationResponse, error)
}

type bookingService struct {
	repo *repository.Repository
	slot SlotService
	log  *zap.Logger
}

func NewBookingService(repo *repository.Repository, slot SlotService, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		slot: slot,
		log:  log.With(zap.String("service", "booking")),
	}
}

// resolveItems loads the catalog rows for the requested items and returns the
// priced booking items, the total in cents, and the strictest service class
// across the order. Classic processing dominates express for delay purposes.
func (s *bookingService) resolveItems(ctx context.Context, inputs []request.BookingItemInput) ([]*entity.BookingItem, int64, entity.ServiceType, error) {
	items := make([]*entity.BookingItem, 0, len(inputs))
	var total int64
	serviceType := entity.ServiceTypeExpress
	now := time.Now()

	for _, in := range inputs {
		serviceID, err := uuid.Parse(in.ServiceID)
		if err != nil {
			return nil, 0, "", newValidationError("invalid service reference", map[string]string{
				"service_id": "must be a valid UUID",
			})
		}

		svc, err := s.repo.Service.FindByID(ctx, serviceID)
		if err != nil {
			return nil, 0, "", transient(err)
		}
		if svc == nil || !svc.IsActive {
			return nil, 0, "", newValidationError("unknown service", map[string]string{
				"service_id": fmt.Sprintf("service %s is not available", in.ServiceID),
			})
		}
		if svc.Type == entity.ServiceTypeClassic {
			serviceType = entity.ServiceTypeClassic
		}

		items = append(items, &entity.BookingItem{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			ServiceID:           svc.ID,
			Quantity:            in.Quantity,
			UnitPriceCents:      svc.UnitPriceCents,
			SpecialInstructions: in.SpecialInstructions,
		})
		total += svc.UnitPriceCents * int64(in.Quantity)
	}

	return items, total, serviceType, nil
}

// resolveSchedule turns the request form into the domain schedule and
// enforces the service-class processing delay. Called before anything is
// persisted so a rejected schedule leaves no partial rows. Shared with the
// checkout orchestrator.
func resolveSchedule(ctx context.Context, slots SlotService, in *request.ScheduleInput, serviceType entity.ServiceType) (entity.Schedule, error) {
	var schedule entity.Schedule

	if in.IsSlotBased() {
		pickupID, err := uuid.Parse(*in.PickupSlotID)
		if err != nil {
			return schedule, newValidationError("invalid pickup slot", map[string]string{
				"pickup_slot_id": "must be a valid UUID",
			})
		}
		deliveryID, err := uuid.Parse(*in.DeliverySlotID)
		if err != nil {
			return schedule, newValidationError("invalid delivery slot", map[string]string{
				"delivery_slot_id": "must be a valid UUID",
			})
		}

		pickup, err := slots.ResolveSlot(ctx, pickupID, entity.SlotRolePickup)
		if err != nil {
			return schedule, err
		}
		delivery, err := slots.ResolveSlot(ctx, deliveryID, entity.SlotRoleDelivery)
		if err != nil {
			return schedule, err
		}

		schedule = entity.NewSlotSchedule(pickup, delivery)
	} else {
		if in.PickupDate == nil || in.PickupTimeSlot == nil || in.DeliveryDate == nil || in.DeliveryTimeSlot == nil {
			return schedule, newValidationError("incomplete schedule", map[string]string{
				"schedule": "provide either both slot ids or all four date/time fields",
			})
		}

		pickupDate, err := time.ParseInLocation("2006-01-02", *in.PickupDate, time.Local)
		if err != nil {
			return schedule, newValidationError("invalid pickup date", map[string]string{
				"pickup_date": "must be YYYY-MM-DD",
			})
		}
		deliveryDate, err := time.ParseInLocation("2006-01-02", *in.DeliveryDate, time.Local)
		if err != nil {
			return schedule, newValidationError("invalid delivery date", map[string]string{
				"delivery_date": "must be YYYY-MM-DD",
			})
		}

		schedule = entity.NewLegacySchedule(pickupDate, *in.PickupTimeSlot, deliveryDate, *in.DeliveryTimeSlot)
	}

	pickupStart, err := schedule.PickupStart()
	if err != nil {
		return schedule, newValidationError("invalid schedule", map[string]string{"schedule": err.Error()})
	}
	if !pickupStart.After(time.Now()) {
		return schedule, newValidationError("pickup is in the past", map[string]string{
			"schedule": "pickup window must start in the future",
		})
	}

	pickupEnd, err := schedule.PickupEnd()
	if err != nil {
		return schedule, newValidationError("invalid schedule", map[string]string{"schedule": err.Error()})
	}
	deliveryStart, err := schedule.DeliveryStart()
	if err != nil {
		return schedule, newValidationError("invalid schedule", map[string]string{"schedule": err.Error()})
	}

	if verdict := slots.ValidateDelayBetween(pickupEnd, deliveryStart, serviceType); !verdict.Valid {
		return schedule, newValidationError("processing delay too short", map[string]string{
			"schedule": verdict.Reason,
		})
	}

	return schedule, nil
}

// resolveOwnedAddress loads an address and checks it belongs to the caller.
func (s *bookingService) resolveOwnedAddress(ctx context.Context, userID uuid.UUID, idStr, field string) (*entity.Address, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, newValidationError("invalid address reference", map[string]string{
			field: "must be a valid UUID",
		})
	}

	addr, err := s.repo.Address.FindByID(ctx, id)
	if err != nil {
		return nil, transient(err)
	}
	if addr == nil {
		return nil, &NotFoundError{Resource: "address", ID: idStr}
	}
	if addr.UserID != userID {
		return nil, &AuthorizationError{Message: "address does not belong to the authenticated user"}
	}
	return addr, nil
}

func (s *bookingService) Create(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	items, total, serviceType, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	schedule, err := resolveSchedule(ctx, s.slot, &req.Schedule, serviceType)
	if err != nil {
		return nil, err
	}

	pickupAddr, err := s.resolveOwnedAddress(ctx, userID, req.PickupAddressID, "pickup_address_id")
	if err != nil {
		return nil, err
	}
	deliveryAddr, err := s.resolveOwnedAddress(ctx, userID, req.DeliveryAddressID, "delivery_address_id")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pickupSnap := pickupAddr.Snapshot()
	deliverySnap := deliveryAddr.Snapshot()

	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingNumber:     utils.GenerateBookingNumber(),
		UserID:            &userID,
		Status:            entity.BookingStatusPending,
		PaymentStatus:     entity.PaymentStatusPending,
		TotalAmountCents:  total,
		Schedule:          schedule,
		PickupAddressID:   &pickupAddr.ID,
		DeliveryAddressID: &deliveryAddr.ID,
		PickupAddress:     &pickupSnap,
		DeliveryAddress:   &deliverySnap,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, transient(err)
	}

	for _, item := range items {
		item.BookingID = booking.ID
	}
	if err := s.repo.BookingItem.CreateBatch(ctx, items); err != nil {
		// Items and booking are written atomically from the caller's point of
		// view; a half-written booking would be unservable, so undo it.
		s.compensateBooking(ctx, booking.ID)
		return nil, transient(err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("user_id", userID.String()),
		zap.Int64("total_cents", total),
	)

	resp := response.BookingToResponse(booking, items)
	return &resp, nil
}

// compensateBooking removes the booking and any items written before a
// mid-creation failure. Compensation failures are logged and abandoned;
// cleanup of stragglers belongs to ops tooling.
func (s *bookingService) compensateBooking(ctx context.Context, bookingID uuid.UUID) {
	if err := s.repo.BookingItem.DeleteByBookingID(ctx, bookingID); err != nil {
		s.log.Error("Compensation failed to delete booking items",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
	}
	if err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		s.log.Error("Compensation failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
	}
}

// loadOwned fetches a booking and verifies the caller may act on it.
func (s *bookingService) loadOwned(ctx context.Context, userID, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, transient(err)
	}
	if booking == nil {
		return nil, &NotFoundError{Resource: "booking", ID: bookingID.String()}
	}
	if booking.UserID == nil || *booking.UserID != userID {
		return nil, &AuthorizationError{Message: "booking does not belong to the authenticated user"}
	}
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, userID, bookingID uuid.UUID, isAdmin bool) (*response.BookingResponse, error) {
	var booking *entity.Booking
	var err error

	if isAdmin {
		booking, err = s.repo.Booking.FindByID(ctx, bookingID)
		if err != nil {
			return nil, transient(err)
		}
		if booking == nil {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID.String()}
		}
	} else {
		booking, err = s.loadOwned(ctx, userID, bookingID)
		if err != nil {
			return nil, err
		}
	}

	items, err := s.repo.BookingItem.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, transient(err)
	}

	resp := response.BookingToResponse(booking, items)
	return &resp, nil
}

func (s *bookingService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]response.BookingResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, transient(err)
	}
	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, transient(err)
	}

	resp := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, response.BookingToResponse(b, nil))
	}
	return resp, total, nil
}

func (s *bookingService) Transition(ctx context.Context, bookingID uuid.UUID, to entity.BookingStatus, actor string) (*response.BookingResponse, error) {
	if !to.IsValid() {
		return nil, newValidationError("unknown booking status", map[string]string{
			"status": fmt.Sprintf("%q is not a booking status", to),
		})
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, transient(err)
	}
	if booking == nil {
		return nil, &NotFoundError{Resource: "booking", ID: bookingID.String()}
	}

	from := booking.Status
	if !from.CanTransition(to) {
		return nil, &StateConflictError{
			Code:    ConflictInvalidTransition,
			Message: fmt.Sprintf("cannot move booking from %s to %s", from, to),
		}
	}

	mod := &entity.BookingModification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID: bookingID,
		Field:     "status",
		OldValue:  string(from),
		NewValue:  string(to),
		Actor:     actor,
	}

	// The status predicate travels with the update, and the audit row commits
	// in the same transaction; a concurrent transition loses cleanly and a
	// failed audit write rolls the status back.
	updated, err := s.repo.Booking.UpdateStatus(ctx, bookingID, from, to, mod)
	if err != nil {
		return nil, transient(err)
	}
	if !updated {
		return nil, &StateConflictError{
			Code:    ConflictInvalidTransition,
			Message: fmt.Sprintf("booking is no longer in %s", from),
		}
	}

	s.log.Info("Booking transitioned",
		zap.String("booking_id", bookingID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor", actor),
	)

	booking.Status = to
	resp := response.BookingToResponse(booking, nil)
	return &resp, nil
}

func (s *bookingService) Cancel(ctx context.Context, userID, bookingID uuid.UUID, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	booking, err := s.loadOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.BookingStatusCancelled {
		return nil, &StateConflictError{
			Code:    ConflictAlreadyCancelled,
			Message: "booking is already cancelled",
		}
	}
	if booking.Status != entity.BookingStatusPending && booking.Status != entity.BookingStatusConfirmed {
		return nil, &StateConflictError{
			Code:    ConflictInvalidTransition,
			Message: fmt.Sprintf("a %s booking cannot be cancelled by the customer", booking.Status),
		}
	}

	pickupStart, err := booking.Schedule.PickupStart()
	if err != nil {
		return nil, transient(err)
	}

	now := time.Now()
	hoursUntilPickup := float64(pickupStart.Sub(now).Milliseconds()) / 3_600_000
	if hoursUntilPickup < cancellationWindowHours {
		return nil, &StateConflictError{
			Code:    ConflictCancellationWindowClosed,
			Message: fmt.Sprintf("cancellation closes %.0fh before pickup; pickup is in %.1fh", cancellationWindowHours, hoursUntilPickup),
		}
	}

	mod := &entity.BookingModification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		BookingID: bookingID,
		Field:     "status",
		OldValue:  string(booking.Status),
		NewValue:  string(entity.BookingStatusCancelled),
		Actor:     userID.String(),
		Reason:    &req.Reason,
	}

	cancelled, err := s.repo.Booking.MarkCancelled(ctx, bookingID, now, userID.String(), req.Reason, mod)
	if err != nil {
		return nil, transient(err)
	}
	if !cancelled {
		// Raced with a transition or another cancel.
		return nil, &StateConflictError{
			Code:    ConflictAlreadyCancelled,
			Message: "booking was cancelled or moved on concurrently",
		}
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("hours_until_pickup", hoursUntilPickup),
	)

	booking.Status = entity.BookingStatusCancelled
	booking.CancelledAt = &now
	reason := req.Reason
	booking.CancellationReason = &reason
	resp := response.BookingToResponse(booking, nil)
	return &resp, nil
}

func (s *bookingService) Modify(ctx context.Context, userID, bookingID uuid.UUID, req *request.ModifyBookingRequest) (*response.BookingResponse, error) {
	booking, err := s.loadOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != entity.BookingStatusPending && booking.Status != entity.BookingStatusConfirmed {
		return nil, &StateConflictError{
			Code:    ConflictImmutableBooking,
			Message: fmt.Sprintf("a %s booking can no longer be modified", booking.Status),
		}
	}

	now := time.Now()
	var mods []*entity.BookingModification
	record := func(field, oldVal, newVal string) {
		mods = append(mods, &entity.BookingModification{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			BookingID: bookingID,
			Field:     field,
			OldValue:  oldVal,
			NewValue:  newVal,
			Actor:     userID.String(),
		})
	}

	if req.Schedule != nil {
		oldLegacy, derr := booking.Schedule.Derive()

		// The new schedule is re-validated against the strictest service class
		// present on the order, same as at creation.
		serviceType, terr := s.orderServiceType(ctx, bookingID)
		if terr != nil {
			return nil, terr
		}
		schedule, serr := resolveSchedule(ctx, s.slot, req.Schedule, serviceType)
		if serr != nil {
			return nil, serr
		}

		newLegacy, nerr := schedule.Derive()
		if nerr != nil {
			return nil, transient(nerr)
		}
		if derr == nil {
			if !oldLegacy.PickupDate.Equal(newLegacy.PickupDate) || oldLegacy.PickupTimeSlot != newLegacy.PickupTimeSlot {
				record("pickup_schedule",
					scheduleLabel(oldLegacy.PickupDate, oldLegacy.PickupTimeSlot),
					scheduleLabel(newLegacy.PickupDate, newLegacy.PickupTimeSlot))
			}
			if !oldLegacy.DeliveryDate.Equal(newLegacy.DeliveryDate) || oldLegacy.DeliveryTimeSlot != newLegacy.DeliveryTimeSlot {
				record("delivery_schedule",
					scheduleLabel(oldLegacy.DeliveryDate, oldLegacy.DeliveryTimeSlot),
					scheduleLabel(newLegacy.DeliveryDate, newLegacy.DeliveryTimeSlot))
			}
		}

		booking.Schedule = schedule
	}

	if req.PickupAddressID != nil {
		addr, aerr := s.resolveOwnedAddress(ctx, userID, *req.PickupAddressID, "pickup_address_id")
		if aerr != nil {
			return nil, aerr
		}
		oldID := ""
		if booking.PickupAddressID != nil {
			oldID = booking.PickupAddressID.String()
		}
		if oldID != addr.ID.String() {
			record("pickup_address_id", oldID, addr.ID.String())
		}
		snap := addr.Snapshot()
		booking.PickupAddressID = &addr.ID
		booking.PickupAddress = &snap
	}

	if req.DeliveryAddressID != nil {
		addr, aerr := s.resolveOwnedAddress(ctx, userID, *req.DeliveryAddressID, "delivery_address_id")
		if aerr != nil {
			return nil, aerr
		}
		oldID := ""
		if booking.DeliveryAddressID != nil {
			oldID = booking.DeliveryAddressID.String()
		}
		if oldID != addr.ID.String() {
			record("delivery_address_id", oldID, addr.ID.String())
		}
		snap := addr.Snapshot()
		booking.DeliveryAddressID = &addr.ID
		booking.DeliveryAddress = &snap
	}

	if len(mods) == 0 {
		resp := response.BookingToResponse(booking, nil)
		return &resp, nil
	}

	// One audit row per changed field, in the order the changes were applied,
	// committed with the field updates or not at all.
	booking.UpdatedAt = now
	updated, err := s.repo.Booking.UpdateModifiable(ctx, booking, mods)
	if err != nil {
		return nil, transient(err)
	}
	if !updated {
		return nil, &StateConflictError{
			Code:    ConflictImmutableBooking,
			Message: "booking moved out of a modifiable status concurrently",
		}
	}

	s.log.Info("Booking modified",
		zap.String("booking_id", bookingID.String()),
		zap.Int("changes", len(mods)),
	)

	resp := response.BookingToResponse(booking, nil)
	return &resp, nil
}

// orderServiceType recomputes the strictest service class across the order's items.
func (s *bookingService) orderServiceType(ctx context.Context, bookingID uuid.UUID) (entity.ServiceType, error) {
	items, err := s.repo.BookingItem.FindByBookingID(ctx, bookingID)
	if err != nil {
		return "", transient(err)
	}
	serviceType := entity.ServiceTypeExpress
	for _, item := range items {
		svc, err := s.repo.Service.FindByID(ctx, item.ServiceID)
		if err != nil {
			return "", transient(err)
		}
		if svc != nil && svc.Type == entity.ServiceTypeClassic {
			serviceType = entity.ServiceTypeClassic
		}
	}
	return serviceType, nil
}

func scheduleLabel(date time.Time, slot string) string {
	return strings.TrimSpace(date.Format("2006-01-02") + " " + slot)
}

func (s *bookingService) ReportProblem(ctx context.Context, userID, bookingID uuid.UUID, req *request.ReportProblemRequest) (*response.ReportResponse, error) {
	booking, err := s.loadOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	report := &entity.BookingReport{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID:   booking.ID,
		ReportedBy:  userID.String(),
		Type:        entity.ReportType(req.Type),
		Description: req.Description,
		PhotoURLs:   req.PhotoURLs,
	}

	if err := s.repo.Report.Create(ctx, report); err != nil {
		return nil, transient(err)
	}

	s.log.Info("Problem reported",
		zap.String("booking_id", bookingID.String()),
		zap.String("type", req.Type),
	)

	resp := response.ReportToResponse(report)
	return &resp, nil
}

func (s *bookingService) GetModifications(ctx context.Context, userID, bookingID uuid.UUID) ([]response.ModificationResponse, error) {
	if _, err := s.loadOwned(ctx, userID, bookingID); err != nil {
		return nil, err
	}

	mods, err := s.repo.Modification.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, transient(err)
	}

	resp := make([]response.ModificationResponse, 0, len(mods))
	for _, m := range mods {
		resp = append(resp, response.ModificationToResponse(m))
	}
	return resp, nil
}
