package repository

import (
	"context"
	"fmt"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SlotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LogisticSlot, error)
	// FindAvailable returns open slots of the given role within the date
	// range, ordered by date then start time.
	FindAvailable(ctx context.Context, role entity.SlotRole, from, to time.Time) ([]*entity.LogisticSlot, error)
}

type slotRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSlotRepository(db database.PgxIface, log *zap.Logger) SlotRepository {
	return &slotRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot")),
	}
}

const slotColumns = `id, role, slot_date, start_time, end_time, is_open, created_at`

func scanSlot(row rowScanner) (*entity.LogisticSlot, error) {
	var s entity.LogisticSlot
	err := row.Scan(
		&s.ID,
		&s.Role,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.IsOpen,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *slotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LogisticSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM logistic_slots WHERE id = $1`

	slot, err := scanSlot(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find slot by ID",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return nil, fmt.Errorf("find slot by ID %s: %w", id.String(), err)
	}

	return slot, nil
}

func (r *slotRepository) FindAvailable(ctx context.Context, role entity.SlotRole, from, to time.Time) ([]*entity.LogisticSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM logistic_slots
		WHERE role = $1
		  AND is_open = TRUE
		  AND slot_date >= $2
		  AND slot_date <= $3
		ORDER BY slot_date, start_time
	`

	rows, err := r.db.Query(ctx, query, role, from, to)
	if err != nil {
		r.log.Error("Failed to find available slots",
			zap.Error(err),
			zap.String("role", string(role)),
		)
		return nil, fmt.Errorf("find available %s slots: %w", string(role), err)
	}
	defer rows.Close()

	var slots []*entity.LogisticSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			r.log.Error("Failed to scan slot row", zap.Error(err))
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}
