package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	// CreateIdempotent inserts the booking unless one already exists for the
	// same payment reference. Returns false when the insert was a no-op.
	CreateIdempotent(ctx context.Context, booking *entity.Booking) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByPaymentRef(ctx context.Context, ref string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	CountActiveByAddressID(ctx context.Context, addressID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatus moves the booking from one status to another and appends
	// the audit row in the same transaction, so a committed status change can
	// never exist without its trail. Returns false when the booking was not
	// in the expected status.
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus, mod *entity.BookingModification) (bool, error)
	// MarkCancelled sets cancelled status, the cancellation fields and the
	// audit row in one transaction, guarded on the current status still being
	// cancellable.
	MarkCancelled(ctx context.Context, bookingID uuid.UUID, at time.Time, by, reason string, mod *entity.BookingModification) (bool, error)
	// UpdateModifiable rewrites schedule and address fields while the booking
	// is still pending or confirmed, together with one audit row per changed
	// field, all in one transaction.
	UpdateModifiable(ctx context.Context, booking *entity.Booking, mods []*entity.BookingModification) (bool, error)
	SetCreditUsage(ctx context.Context, bookingID uuid.UUID, discountCents, surplusCents int64) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	id, booking_number, user_id,
	guest_first_name, guest_last_name, guest_email, guest_phone,
	status, payment_status, total_amount_cents,
	used_credit, credit_discount_cents, credit_surplus_cents,
	schedule_kind, pickup_date, pickup_time_slot, delivery_date, delivery_time_slot,
	pickup_slot_id, delivery_slot_id,
	pickup_address_id, delivery_address_id,
	pickup_address_snapshot, delivery_address_snapshot,
	payment_session_id, payment_intent_id, paid_at,
	cancelled_at, cancelled_by, cancellation_reason,
	created_at, updated_at`

func bookingArgs(b *entity.Booking) ([]any, error) {
	legacy, err := b.Schedule.Derive()
	if err != nil {
		return nil, fmt.Errorf("derive schedule: %w", err)
	}

	var guestFirst, guestLast, guestEmail, guestPhone *string
	if b.Guest != nil {
		guestFirst, guestLast = &b.Guest.FirstName, &b.Guest.LastName
		guestEmail, guestPhone = &b.Guest.Email, &b.Guest.Phone
	}

	var pickupSlotID, deliverySlotID *uuid.UUID
	if b.Schedule.Kind == entity.ScheduleKindSlots && b.Schedule.Slots != nil {
		pickupSlotID = &b.Schedule.Slots.PickupSlotID
		deliverySlotID = &b.Schedule.Slots.DeliverySlotID
	}

	pickupSnap, err := marshalSnapshot(b.PickupAddress)
	if err != nil {
		return nil, err
	}
	deliverySnap, err := marshalSnapshot(b.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	return []any{
		b.ID, b.BookingNumber, b.UserID,
		guestFirst, guestLast, guestEmail, guestPhone,
		b.Status, b.PaymentStatus, b.TotalAmountCents,
		b.UsedCredit, b.CreditDiscountCents, b.CreditSurplusCents,
		b.Schedule.Kind, legacy.PickupDate, legacy.PickupTimeSlot,
		legacy.DeliveryDate, legacy.DeliveryTimeSlot,
		pickupSlotID, deliverySlotID,
		b.PickupAddressID, b.DeliveryAddressID,
		pickupSnap, deliverySnap,
		b.PaymentSessionID, b.PaymentIntentID, b.PaidAt,
		b.CancelledAt, b.CancelledBy, b.CancellationReason,
		b.CreatedAt, b.UpdatedAt,
	}, nil
}

func marshalSnapshot(s *entity.AddressSnapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal address snapshot: %w", err)
	}
	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var (
		b                                              entity.Booking
		guestFirst, guestLast, guestEmail, guestPhone  *string
		scheduleKind                                   entity.ScheduleKind
		pickupDate, deliveryDate                       time.Time
		pickupTimeSlot, deliveryTimeSlot               string
		pickupSlotID, deliverySlotID                   *uuid.UUID
		pickupSnap, deliverySnap                       []byte
	)

	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.UserID,
		&guestFirst, &guestLast, &guestEmail, &guestPhone,
		&b.Status, &b.PaymentStatus, &b.TotalAmountCents,
		&b.UsedCredit, &b.CreditDiscountCents, &b.CreditSurplusCents,
		&scheduleKind, &pickupDate, &pickupTimeSlot, &deliveryDate, &deliveryTimeSlot,
		&pickupSlotID, &deliverySlotID,
		&b.PickupAddressID, &b.DeliveryAddressID,
		&pickupSnap, &deliverySnap,
		&b.PaymentSessionID, &b.PaymentIntentID, &b.PaidAt,
		&b.CancelledAt, &b.CancelledBy, &b.CancellationReason,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if guestEmail != nil {
		b.Guest = &entity.GuestContact{Email: *guestEmail}
		if guestFirst != nil {
			b.Guest.FirstName = *guestFirst
		}
		if guestLast != nil {
			b.Guest.LastName = *guestLast
		}
		if guestPhone != nil {
			b.Guest.Phone = *guestPhone
		}
	}

	b.Schedule = entity.NewLegacySchedule(pickupDate, pickupTimeSlot, deliveryDate, deliveryTimeSlot)
	if scheduleKind == entity.ScheduleKindSlots && pickupSlotID != nil && deliverySlotID != nil {
		b.Schedule.Kind = entity.ScheduleKindSlots
		b.Schedule.Slots = &entity.SlotSchedule{
			PickupSlotID:   *pickupSlotID,
			DeliverySlotID: *deliverySlotID,
		}
	}

	if len(pickupSnap) > 0 {
		var snap entity.AddressSnapshot
		if err := json.Unmarshal(pickupSnap, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal pickup snapshot: %w", err)
		}
		b.PickupAddress = &snap
	}
	if len(deliverySnap) > 0 {
		var snap entity.AddressSnapshot
		if err := json.Unmarshal(deliverySnap, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal delivery snapshot: %w", err)
		}
		b.DeliveryAddress = &snap
	}

	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	args, err := bookingArgs(booking)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_number", booking.BookingNumber),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingNumber, err)
	}

	return nil
}

func (r *bookingRepository) CreateIdempotent(ctx context.Context, booking *entity.Booking) (bool, error) {
	// Single conditional insert: two concurrent callers with the same payment
	// reference cannot both insert, regardless of prior lookups.
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
		ON CONFLICT (payment_intent_id) DO NOTHING
	`

	args, err := bookingArgs(booking)
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to create booking idempotently",
			zap.Error(err),
			zap.String("booking_number", booking.BookingNumber),
		)
		return false, fmt.Errorf("create booking %s: %w", booking.BookingNumber, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByPaymentRef(ctx context.Context, ref string) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE payment_intent_id = $1 OR payment_session_id = $1
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, ref))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by payment reference",
			zap.Error(err),
			zap.String("payment_ref", ref),
		)
		return nil, fmt.Errorf("find booking by payment ref %s: %w", ref, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) CountActiveByAddressID(ctx context.Context, addressID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE (pickup_address_id = $1 OR delivery_address_id = $1)
		  AND status NOT IN ('completed', 'cancelled', 'delivered')
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, addressID).Scan(&count); err != nil {
		r.log.Error("Failed to count active bookings by address",
			zap.Error(err),
			zap.String("address_id", addressID.String()),
		)
		return 0, fmt.Errorf("count active bookings for address %s: %w", addressID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Physical deletion is reserved for rolling back a just-created booking
	// that never reached a confirmed state.
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

const insertModificationQuery = `
	INSERT INTO booking_modifications (id, booking_id, field, old_value,
	                                   new_value, actor, reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func insertModification(ctx context.Context, tx pgx.Tx, mod *entity.BookingModification) error {
	_, err := tx.Exec(ctx, insertModificationQuery,
		mod.ID,
		mod.BookingID,
		mod.Field,
		mod.OldValue,
		mod.NewValue,
		mod.Actor,
		mod.Reason,
		mod.CreatedAt,
	)
	return err
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus, mod *entity.BookingModification) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin status update for booking %s: %w", bookingID.String(), err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := tx.Exec(ctx, query, bookingID, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(to), err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if err := insertModification(ctx, tx, mod); err != nil {
		r.log.Error("Failed to write status audit row, rolling back transition",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("audit status change for booking %s: %w", bookingID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit status update for booking %s: %w", bookingID.String(), err)
	}
	return true, nil
}

func (r *bookingRepository) MarkCancelled(ctx context.Context, bookingID uuid.UUID, at time.Time, by, reason string, mod *entity.BookingModification) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin cancel for booking %s: %w", bookingID.String(), err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2, cancelled_by = $3,
		    cancellation_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`

	result, err := tx.Exec(ctx, query, bookingID, at, by, reason)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("cancel booking %s: %w", bookingID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if err := insertModification(ctx, tx, mod); err != nil {
		r.log.Error("Failed to write cancellation audit row, rolling back",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("audit cancellation for booking %s: %w", bookingID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit cancel for booking %s: %w", bookingID.String(), err)
	}
	return true, nil
}

func (r *bookingRepository) UpdateModifiable(ctx context.Context, booking *entity.Booking, mods []*entity.BookingModification) (bool, error) {
	legacy, err := booking.Schedule.Derive()
	if err != nil {
		return false, fmt.Errorf("derive schedule: %w", err)
	}

	var pickupSlotID, deliverySlotID *uuid.UUID
	if booking.Schedule.Kind == entity.ScheduleKindSlots && booking.Schedule.Slots != nil {
		pickupSlotID = &booking.Schedule.Slots.PickupSlotID
		deliverySlotID = &booking.Schedule.Slots.DeliverySlotID
	}

	pickupSnap, err := marshalSnapshot(booking.PickupAddress)
	if err != nil {
		return false, err
	}
	deliverySnap, err := marshalSnapshot(booking.DeliveryAddress)
	if err != nil {
		return false, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin update for booking %s: %w", booking.ID.String(), err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE bookings
		SET schedule_kind = $2, pickup_date = $3, pickup_time_slot = $4,
		    delivery_date = $5, delivery_time_slot = $6,
		    pickup_slot_id = $7, delivery_slot_id = $8,
		    pickup_address_id = $9, delivery_address_id = $10,
		    pickup_address_snapshot = $11, delivery_address_snapshot = $12,
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`

	result, err := tx.Exec(ctx, query,
		booking.ID, booking.Schedule.Kind,
		legacy.PickupDate, legacy.PickupTimeSlot, legacy.DeliveryDate, legacy.DeliveryTimeSlot,
		pickupSlotID, deliverySlotID,
		booking.PickupAddressID, booking.DeliveryAddressID,
		pickupSnap, deliverySnap,
	)
	if err != nil {
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return false, fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	// Rows go in slice order so the trail keeps the causal ordering of the
	// field changes.
	for _, mod := range mods {
		if err := insertModification(ctx, tx, mod); err != nil {
			r.log.Error("Failed to write modification audit row, rolling back",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.String("field", mod.Field),
			)
			return false, fmt.Errorf("audit modification for booking %s: %w", booking.ID.String(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit update for booking %s: %w", booking.ID.String(), err)
	}
	return true, nil
}

func (r *bookingRepository) SetCreditUsage(ctx context.Context, bookingID uuid.UUID, discountCents, surplusCents int64) error {
	query := `
		UPDATE bookings
		SET used_credit = TRUE, credit_discount_cents = $2, credit_surplus_cents = $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, bookingID, discountCents, surplusCents)
	if err != nil {
		r.log.Error("Failed to set booking credit usage",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("set credit usage for booking %s: %w", bookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}
