package repository

import (
	"context"
	"fmt"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModificationRepository reads the audit trail. Writes happen inside the
// booking repository's transactions so a status change and its row commit
// together.
type ModificationRepository interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingModification, error)
}

type modificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewModificationRepository(db database.PgxIface, log *zap.Logger) ModificationRepository {
	return &modificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "modification")),
	}
}

func (r *modificationRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingModification, error) {
	query := `
		SELECT id, booking_id, field, old_value, new_value, actor, reason, created_at
		FROM booking_modifications
		WHERE booking_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking modifications",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find modifications for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var mods []*entity.BookingModification
	for rows.Next() {
		var mod entity.BookingModification
		err := rows.Scan(
			&mod.ID,
			&mod.BookingID,
			&mod.Field,
			&mod.OldValue,
			&mod.NewValue,
			&mod.Actor,
			&mod.Reason,
			&mod.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan modification row", zap.Error(err))
			return nil, fmt.Errorf("scan modification row: %w", err)
		}
		mods = append(mods, &mod)
	}

	return mods, nil
}
