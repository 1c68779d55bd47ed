package repository

import (
	"context"
	"fmt"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SubscriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error)
	FindEntitledByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error)
	FindAllEntitled(ctx context.Context) ([]*entity.Subscription, error)
}

type subscriptionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSubscriptionRepository(db database.PgxIface, log *zap.Logger) SubscriptionRepository {
	return &subscriptionRepository{
		db:  db,
		log: log.With(zap.String("repository", "subscription")),
	}
}

const subscriptionColumns = `id, user_id, plan, status, current_period_start,
	current_period_end, created_at, updated_at`

func scanSubscription(row rowScanner) (*entity.Subscription, error) {
	var s entity.Subscription
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Plan,
		&s.Status,
		&s.CurrentPeriodStart,
		&s.CurrentPeriodEnd,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find subscription by ID",
			zap.Error(err),
			zap.String("subscription_id", id.String()),
		)
		return nil, fmt.Errorf("find subscription by ID %s: %w", id.String(), err)
	}

	return sub, nil
}

func (r *subscriptionRepository) FindEntitledByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND status IN ('active', 'trialing')
		ORDER BY created_at DESC
		LIMIT 1
	`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find entitled subscription",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find entitled subscription for user %s: %w", userID.String(), err)
	}

	return sub, nil
}

func (r *subscriptionRepository) FindAllEntitled(ctx context.Context) ([]*entity.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status IN ('active', 'trialing')
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find entitled subscriptions", zap.Error(err))
		return nil, fmt.Errorf("find entitled subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*entity.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			r.log.Error("Failed to scan subscription row", zap.Error(err))
			return nil, fmt.Errorf("scan subscription row: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, nil
}
