package repository

import (
	"context"
	"fmt"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreditUsageRepository interface {
	Create(ctx context.Context, usage *entity.CreditUsage) error
	FindBySubscriptionID(ctx context.Context, subscriptionID uuid.UUID, limit, offset int) ([]*entity.CreditUsage, error)
	// SumDiscountBySubscriptionID aggregates the total amount saved.
	SumDiscountBySubscriptionID(ctx context.Context, subscriptionID uuid.UUID) (int64, error)
}

type creditUsageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCreditUsageRepository(db database.PgxIface, log *zap.Logger) CreditUsageRepository {
	return &creditUsageRepository{
		db:  db,
		log: log.With(zap.String("repository", "credit_usage")),
	}
}

func (r *creditUsageRepository) Create(ctx context.Context, usage *entity.CreditUsage) error {
	query := `
		INSERT INTO credit_usage (id, subscription_credit_id, subscription_id,
		                          booking_id, discount_cents, surplus_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		usage.ID,
		usage.SubscriptionCreditID,
		usage.SubscriptionID,
		usage.BookingID,
		usage.DiscountCents,
		usage.SurplusCents,
		usage.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create credit usage",
			zap.Error(err),
			zap.String("booking_id", usage.BookingID.String()),
		)
		return fmt.Errorf("create credit usage for booking %s: %w", usage.BookingID.String(), err)
	}

	return nil
}

func (r *creditUsageRepository) FindBySubscriptionID(ctx context.Context, subscriptionID uuid.UUID, limit, offset int) ([]*entity.CreditUsage, error) {
	query := `
		SELECT id, subscription_credit_id, subscription_id, booking_id,
		       discount_cents, surplus_cents, created_at
		FROM credit_usage
		WHERE subscription_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, subscriptionID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find credit usage",
			zap.Error(err),
			zap.String("subscription_id", subscriptionID.String()),
		)
		return nil, fmt.Errorf("find credit usage for subscription %s: %w", subscriptionID.String(), err)
	}
	defer rows.Close()

	var usages []*entity.CreditUsage
	for rows.Next() {
		var usage entity.CreditUsage
		err := rows.Scan(
			&usage.ID,
			&usage.SubscriptionCreditID,
			&usage.SubscriptionID,
			&usage.BookingID,
			&usage.DiscountCents,
			&usage.SurplusCents,
			&usage.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan credit usage row", zap.Error(err))
			return nil, fmt.Errorf("scan credit usage row: %w", err)
		}
		usages = append(usages, &usage)
	}

	return usages, nil
}

func (r *creditUsageRepository) SumDiscountBySubscriptionID(ctx context.Context, subscriptionID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(discount_cents), 0)
		FROM credit_usage
		WHERE subscription_id = $1
	`

	var total int64
	if err := r.db.QueryRow(ctx, query, subscriptionID).Scan(&total); err != nil {
		r.log.Error("Failed to sum credit discounts",
			zap.Error(err),
			zap.String("subscription_id", subscriptionID.String()),
		)
		return 0, fmt.Errorf("sum discounts for subscription %s: %w", subscriptionID.String(), err)
	}

	return total, nil
}
