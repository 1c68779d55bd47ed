package repository

import (
	"context"
	"fmt"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingItemRepository interface {
	CreateBatch(ctx context.Context, items []*entity.BookingItem) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingItem, error)
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error
}

type bookingItemRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingItemRepository(db database.PgxIface, log *zap.Logger) BookingItemRepository {
	return &bookingItemRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_item")),
	}
}

func (r *bookingItemRepository) CreateBatch(ctx context.Context, items []*entity.BookingItem) error {
	query := `
		INSERT INTO booking_items (id, booking_id, service_id, quantity,
		                           unit_price_cents, special_instructions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range items {
		_, err := r.db.Exec(ctx, query,
			item.ID,
			item.BookingID,
			item.ServiceID,
			item.Quantity,
			item.UnitPriceCents,
			item.SpecialInstructions,
			item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create booking item",
				zap.Error(err),
				zap.String("booking_id", item.BookingID.String()),
				zap.String("service_id", item.ServiceID.String()),
			)
			return fmt.Errorf("create booking item for %s: %w", item.BookingID.String(), err)
		}
	}

	return nil
}

func (r *bookingItemRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingItem, error) {
	query := `
		SELECT id, booking_id, service_id, quantity, unit_price_cents,
		       special_instructions, created_at
		FROM booking_items
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking items",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find items for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var items []*entity.BookingItem
	for rows.Next() {
		var item entity.BookingItem
		err := rows.Scan(
			&item.ID,
			&item.BookingID,
			&item.ServiceID,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.SpecialInstructions,
			&item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking item row", zap.Error(err))
			return nil, fmt.Errorf("scan booking item row: %w", err)
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *bookingItemRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	query := `DELETE FROM booking_items WHERE booking_id = $1`

	if _, err := r.db.Exec(ctx, query, bookingID); err != nil {
		r.log.Error("Failed to delete booking items",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("delete items for booking %s: %w", bookingID.String(), err)
	}

	return nil
}
