package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/dto/request"
	"pressing-booking/internal/dto/response"
	"pressing-booking/pkg/mailer"
	"pressing-booking/pkg/payment"
	"pressing-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CheckoutService finalizes guest bookings after the payment provider confirms
// the session. The whole flow is idempotent on the payment intent: replays and
// concurrent invocations converge on the single booking the first writer made.
type CheckoutService interface {
	FinalizeGuestBooking(ctx context.Context, req *request.GuestCheckoutRequest) (*response.CheckoutResponse, error)
}

type checkoutService struct {
	repo    *repository.Repository
	slot    SlotService
	credit  CreditService
	payment payment.Client
	mailer  mailer.Client
	config  *utils.Config
	log     *zap.Logger
}

func NewCheckoutService(
	repo *repository.Repository,
	slot SlotService,
	credit CreditService,
	pay payment.Client,
	mail mailer.Client,
	config *utils.Config,
	log *zap.Logger,
) CheckoutService {
	return &checkoutService{
		repo:    repo,
		slot:    slot,
		credit:  credit,
		payment: pay,
		mailer:  mail,
		config:  config,
		log:     log.With(zap.String("service", "checkout")),
	}
}

func (s *checkoutService) FinalizeGuestBooking(ctx context.Context, req *request.GuestCheckoutRequest) (*response.CheckoutResponse, error) {
	session, err := s.payment.RetrieveSession(ctx, req.PaymentReference)
	if err != nil {
		return nil, &ExternalServiceError{Service: "payment", Err: err}
	}
	if session == nil {
		return nil, &NotFoundError{Resource: "payment session", ID: req.PaymentReference}
	}
	if !session.Paid() {
		return nil, &StateConflictError{
			Code:    ConflictPaymentNotConfirmed,
			Message: fmt.Sprintf("payment session %s is %s, not settled", session.ID, session.Status),
		}
	}
	if session.AmountCents <= 0 {
		// A settled session with no amount is provider data corruption, not a
		// transient fault. Never retried.
		return nil, newValidationError("invalid payment amount", map[string]string{
			"payment_reference": "settled amount must be positive",
		})
	}
	if err := validateCheckoutMetadata(&session.Metadata); err != nil {
		return nil, err
	}

	// Fast path: a previous invocation already finished.
	existing, err := s.repo.Booking.FindByPaymentRef(ctx, session.PaymentIntentID)
	if err != nil {
		return nil, transient(err)
	}
	if existing != nil {
		return s.alreadyProcessed(ctx, existing)
	}

	var result *response.CheckoutResponse
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, attemptErr := s.finalizeOnce(ctx, session, req.UseAccountAddresses)
		if attemptErr != nil {
			// Only infrastructure hiccups are worth another attempt; business
			// rejections are stable across retries.
			var te *TransientError
			if errors.As(attemptErr, &te) {
				s.log.Warn("Checkout attempt failed, retrying",
					zap.Error(attemptErr),
					zap.String("payment_intent_id", session.PaymentIntentID),
				)
				return retry.RetryableError(attemptErr)
			}
			return attemptErr
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateCheckoutMetadata checks the structured payload the payment session
// carries. Metadata is written by our own payment-creation flow, but the
// provider round-trip makes it untrusted input again.
func validateCheckoutMetadata(meta *payment.Metadata) error {
	fields := map[string]string{}
	if meta.Guest.Email == "" {
		fields["guest.email"] = "required"
	}
	if meta.Guest.FirstName == "" {
		fields["guest.first_name"] = "required"
	}
	if len(meta.Items) == 0 {
		fields["items"] = "at least one item required"
	}
	for i, item := range meta.Items {
		if item.Quantity < 1 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		}
		if _, err := uuid.Parse(item.ServiceID); err != nil {
			fields[fmt.Sprintf("items[%d].service_id", i)] = "must be a valid UUID"
		}
	}
	if meta.Pickup.Street == "" || meta.Pickup.City == "" || meta.Pickup.PostalCode == "" {
		fields["pickup_address"] = "street, city and postal_code required"
	}
	if meta.Delivery.Street == "" || meta.Delivery.City == "" || meta.Delivery.PostalCode == "" {
		fields["delivery_address"] = "street, city and postal_code required"
	}
	if len(fields) > 0 {
		return newValidationError("incomplete checkout metadata", fields)
	}
	return nil
}

// finalizeOnce runs one full checkout attempt. Everything that can reject the
// order happens before the booking insert; the insert itself is the
// idempotency point.
func (s *checkoutService) finalizeOnce(ctx context.Context, session *payment.Session, useAccountAddresses bool) (*response.CheckoutResponse, error) {
	meta := &session.Metadata

	user, accountCreated, resetToken, err := s.resolveIdentity(ctx, meta)
	if err != nil {
		return nil, err
	}

	pickupSnap, deliverySnap, err := s.resolveAddresses(ctx, user, meta, accountCreated, useAccountAddresses)
	if err != nil {
		return nil, err
	}

	items, serviceType, err := s.resolveMetaItems(ctx, meta.Items)
	if err != nil {
		return nil, err
	}

	schedule, err := s.resolveMetaSchedule(ctx, &meta.Schedule, serviceType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sessionID := session.ID
	intentID := session.PaymentIntentID
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingNumber: utils.GenerateBookingNumber(),
		UserID:        &user.ID,
		Guest: &entity.GuestContact{
			FirstName: meta.Guest.FirstName,
			LastName:  meta.Guest.LastName,
			Email:     meta.Guest.Email,
			Phone:     meta.Guest.Phone,
		},
		Status:           entity.BookingStatusPending,
		PaymentStatus:    entity.PaymentStatusSucceeded,
		TotalAmountCents: session.AmountCents,
		Schedule:         schedule,
		PickupAddress:    pickupSnap,
		DeliveryAddress:  deliverySnap,
		PaymentSessionID: &sessionID,
		PaymentIntentID:  &intentID,
		PaidAt:           &now,
	}

	inserted, err := s.repo.Booking.CreateIdempotent(ctx, booking)
	if err != nil {
		return nil, transient(err)
	}
	if !inserted {
		// A concurrent invocation won the insert; converge on its booking.
		winner, ferr := s.repo.Booking.FindByPaymentRef(ctx, intentID)
		if ferr != nil {
			return nil, transient(ferr)
		}
		if winner == nil {
			return nil, transient(fmt.Errorf("booking for intent %s vanished after conflict", intentID))
		}
		resp, aerr := s.alreadyProcessed(ctx, winner)
		if aerr != nil {
			return nil, aerr
		}
		resp.AccountCreated = accountCreated
		return resp, nil
	}

	for _, item := range items {
		item.BookingID = booking.ID
	}
	if err := s.repo.BookingItem.CreateBatch(ctx, items); err != nil {
		s.compensate(ctx, booking.ID)
		return nil, transient(err)
	}

	s.consumeCreditBestEffort(ctx, user, booking, meta.WeightKg)

	s.log.Info("Guest checkout finalized",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("payment_intent_id", intentID),
		zap.Bool("account_created", accountCreated),
	)

	// Confirmation email never blocks or fails the checkout.
	go s.sendConfirmation(meta, booking, accountCreated, resetToken)

	bookingResp := response.BookingToResponse(booking, items)
	return &response.CheckoutResponse{
		Booking:        bookingResp,
		AccountCreated: accountCreated,
	}, nil
}

// resolveIdentity finds or creates the account behind the guest email. Two
// concurrent checkouts for a brand-new email race on the unique constraint;
// the loser re-reads the winner's row. For a fresh account the plaintext
// reset token is returned so the welcome email can carry it; only its hash
// is persisted.
func (s *checkoutService) resolveIdentity(ctx context.Context, meta *payment.Metadata) (*entity.User, bool, string, error) {
	user, err := s.repo.User.FindByEmail(ctx, meta.Guest.Email)
	if err != nil {
		return nil, false, "", transient(err)
	}
	if user != nil {
		return user, false, "", nil
	}

	// Auto-created accounts get an unguessable placeholder password and a
	// reset token so the guest can claim the account from the email link.
	placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, "", transient(err)
	}
	resetToken := uuid.NewString()
	resetTokenHash := hashResetToken(resetToken)
	resetExpires := time.Now().Add(72 * time.Hour)

	now := time.Now()
	var phone *string
	if meta.Guest.Phone != "" {
		p := meta.Guest.Phone
		phone = &p
	}
	candidate := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName:            meta.Guest.FirstName,
		LastName:             meta.Guest.LastName,
		Email:                meta.Guest.Email,
		PasswordHash:         string(placeholder),
		Phone:                phone,
		Role:                 entity.RoleCustomer,
		IsActive:             true,
		PasswordResetToken:   &resetTokenHash,
		PasswordResetExpires: &resetExpires,
	}

	created, err := s.repo.User.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, false, "", transient(err)
	}
	if created {
		return candidate, true, resetToken, nil
	}

	// Lost the insert race; the email now exists.
	user, err = s.repo.User.FindByEmail(ctx, meta.Guest.Email)
	if err != nil {
		return nil, false, "", transient(err)
	}
	if user == nil {
		return nil, false, "", transient(fmt.Errorf("user %s vanished after insert conflict", meta.Guest.Email))
	}
	return user, false, "", nil
}

// hashResetToken derives the stored form of a password-reset token. The
// plaintext only ever travels in the email; a leaked users table cannot be
// replayed against the reset endpoint.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// resolveAddresses picks the snapshots the booking will carry. Fresh accounts
// also get the guest-entered addresses persisted as their reusable defaults.
func (s *checkoutService) resolveAddresses(
	ctx context.Context,
	user *entity.User,
	meta *payment.Metadata,
	accountCreated, useAccountAddresses bool,
) (*entity.AddressSnapshot, *entity.AddressSnapshot, error) {
	if !accountCreated && useAccountAddresses {
		def, err := s.repo.Address.FindDefaultByUserID(ctx, user.ID)
		if err != nil {
			return nil, nil, transient(err)
		}
		if def == nil {
			return nil, nil, newValidationError("no stored address", map[string]string{
				"use_account_addresses": "account has no default address",
			})
		}
		snap := def.Snapshot()
		pickup, delivery := snap, snap
		return &pickup, &delivery, nil
	}

	pickup := metaToSnapshot(&meta.Pickup)
	delivery := metaToSnapshot(&meta.Delivery)

	if accountCreated {
		now := time.Now()
		addr := &entity.Address{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:             user.ID,
			Street:             meta.Pickup.Street,
			City:               meta.Pickup.City,
			PostalCode:         meta.Pickup.PostalCode,
			Building:           meta.Pickup.Building,
			AccessInstructions: meta.Pickup.AccessInstructions,
			IsDefault:          true,
		}
		if err := s.repo.Address.Create(ctx, addr); err != nil {
			// The snapshot on the booking is authoritative; a failed reusable
			// copy costs the user a re-type, nothing more.
			s.log.Warn("Failed to persist guest address for new account",
				zap.Error(err),
				zap.String("user_id", user.ID.String()),
			)
		}
	}

	return &pickup, &delivery, nil
}

func metaToSnapshot(m *payment.AddressMeta) entity.AddressSnapshot {
	return entity.AddressSnapshot{
		Street:             m.Street,
		City:               m.City,
		PostalCode:         m.PostalCode,
		Building:           m.Building,
		AccessInstructions: m.AccessInstructions,
	}
}

// resolveMetaItems builds booking items from the session metadata, repricing
// from the catalog. The settled total came from the provider; line prices are
// informational and always come from our own catalog rows.
func (s *checkoutService) resolveMetaItems(ctx context.Context, metaItems []payment.ItemMeta) ([]*entity.BookingItem, entity.ServiceType, error) {
	items := make([]*entity.BookingItem, 0, len(metaItems))
	serviceType := entity.ServiceTypeExpress
	now := time.Now()

	for _, in := range metaItems {
		serviceID, err := uuid.Parse(in.ServiceID)
		if err != nil {
			return nil, "", newValidationError("invalid service reference in metadata", map[string]string{
				"service_id": in.ServiceID,
			})
		}
		svc, err := s.repo.Service.FindByID(ctx, serviceID)
		if err != nil {
			return nil, "", transient(err)
		}
		if svc == nil {
			return nil, "", newValidationError("unknown service in metadata", map[string]string{
				"service_id": in.ServiceID,
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
	}

	return items, serviceType, nil
}

// resolveMetaSchedule validates and builds the schedule before the booking
// insert, so a stale or closed slot rejects the checkout without leaving rows.
func (s *checkoutService) resolveMetaSchedule(ctx context.Context, meta *payment.ScheduleMeta, serviceType entity.ServiceType) (entity.Schedule, error) {
	in := request.ScheduleInput{}
	if meta.PickupSlotID != "" && meta.DeliverySlotID != "" {
		p, d := meta.PickupSlotID, meta.DeliverySlotID
		in.PickupSlotID = &p
		in.DeliverySlotID = &d
	} else {
		if meta.PickupDate == "" || meta.DeliveryDate == "" {
			return entity.Schedule{}, newValidationError("incomplete schedule metadata", map[string]string{
				"schedule": "provide slot ids or legacy date fields",
			})
		}
		pd, pt := meta.PickupDate, meta.PickupTimeSlot
		dd, dt := meta.DeliveryDate, meta.DeliveryTimeSlot
		in.PickupDate = &pd
		in.PickupTimeSlot = &pt
		in.DeliveryDate = &dd
		in.DeliveryTimeSlot = &dt
	}

	return resolveSchedule(ctx, s.slot, &in, serviceType)
}

// consumeCreditBestEffort burns a weekly credit when the payer has an entitled
// subscription and declared a weight. Failure here never unwinds a paid
// booking; the customer keeps the credit and support reconciles.
func (s *checkoutService) consumeCreditBestEffort(ctx context.Context, user *entity.User, booking *entity.Booking, weightKg float64) {
	if weightKg <= 0 {
		return
	}
	sub, err := s.repo.Subscription.FindEntitledByUserID(ctx, user.ID)
	if err != nil || sub == nil {
		if err != nil {
			s.log.Warn("Subscription lookup failed during checkout",
				zap.Error(err),
				zap.String("user_id", user.ID.String()),
			)
		}
		return
	}

	quote, err := s.credit.CheckEligibility(ctx, user.ID, weightKg)
	if err != nil || !quote.CanUse {
		return
	}

	if err := s.credit.Consume(ctx, sub.ID, booking.ID, quote.DiscountCents, quote.SurplusCents); err != nil {
		s.log.Warn("Credit consumption failed, booking kept without discount",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("subscription_id", sub.ID.String()),
		)
		return
	}

	booking.UsedCredit = true
	booking.CreditDiscountCents = &quote.DiscountCents
	booking.CreditSurplusCents = &quote.SurplusCents
}

func (s *checkoutService) compensate(ctx context.Context, bookingID uuid.UUID) {
	if err := s.repo.BookingItem.DeleteByBookingID(ctx, bookingID); err != nil {
		s.log.Error("Checkout compensation failed to delete items",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
	}
	if err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		s.log.Error("Checkout compensation failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
	}
}

// alreadyProcessed loads the winner booking's items and reports the idempotent
// outcome. Same payload as a fresh finalize, flagged so the client can tell.
func (s *checkoutService) alreadyProcessed(ctx context.Context, booking *entity.Booking) (*response.CheckoutResponse, error) {
	items, err := s.repo.BookingItem.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, transient(err)
	}
	bookingResp := response.BookingToResponse(booking, items)
	return &response.CheckoutResponse{
		Booking:          bookingResp,
		AlreadyProcessed: true,
	}, nil
}

func (s *checkoutService) sendConfirmation(meta *payment.Metadata, booking *entity.Booking, accountCreated bool, resetToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	body := fmt.Sprintf(
		"<p>Bonjour %s,</p><p>Your booking <strong>%s</strong> is confirmed.</p>",
		meta.Guest.FirstName, booking.BookingNumber,
	)
	if accountCreated && resetToken != "" {
		body += fmt.Sprintf(
			"<p>We created an account for you. <a href=\"%s/reset-password?token=%s\">Set your password</a> within 72 hours to claim it.</p>",
			s.config.App.BaseURL, resetToken,
		)
	}

	msg := mailer.Message{
		ToEmail:  meta.Guest.Email,
		ToName:   meta.Guest.FirstName + " " + meta.Guest.LastName,
		Subject:  fmt.Sprintf("Booking %s confirmed", booking.BookingNumber),
		HTMLBody: body,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Warn("Confirmation email failed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}
