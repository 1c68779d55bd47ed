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

type CreditRepository interface {
	Create(ctx context.Context, credit *entity.SubscriptionCredit) error
	FindForWeek(ctx context.Context, subscriptionID uuid.UUID, weekStart time.Time) (*entity.SubscriptionCredit, error)
	// ConsumeOne decrements credits_remaining by exactly one as a single
	// conditional write. Returns false when no credit was left; two concurrent
	// callers cannot both take the last credit.
	ConsumeOne(ctx context.Context, creditID uuid.UUID) (bool, error)
}

type creditRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCreditRepository(db database.PgxIface, log *zap.Logger) CreditRepository {
	return &creditRepository{
		db:  db,
		log: log.With(zap.String("repository", "credit")),
	}
}

const creditColumns = `id, subscription_id, credits_total, credits_remaining,
	week_start_date, reset_at, created_at`

func scanCredit(row rowScanner) (*entity.SubscriptionCredit, error) {
	var c entity.SubscriptionCredit
	err := row.Scan(
		&c.ID,
		&c.SubscriptionID,
		&c.CreditsTotal,
		&c.CreditsRemaining,
		&c.WeekStartDate,
		&c.ResetAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *creditRepository) Create(ctx context.Context, credit *entity.SubscriptionCredit) error {
	// One row per subscription per week; the unique index makes a duplicate
	// weekly reset a no-op instead of a double grant.
	query := `
		INSERT INTO subscription_credits (` + creditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subscription_id, week_start_date) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		credit.ID,
		credit.SubscriptionID,
		credit.CreditsTotal,
		credit.CreditsRemaining,
		credit.WeekStartDate,
		credit.ResetAt,
		credit.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create subscription credit",
			zap.Error(err),
			zap.String("subscription_id", credit.SubscriptionID.String()),
		)
		return fmt.Errorf("create credit for subscription %s: %w", credit.SubscriptionID.String(), err)
	}

	return nil
}

func (r *creditRepository) FindForWeek(ctx context.Context, subscriptionID uuid.UUID, weekStart time.Time) (*entity.SubscriptionCredit, error) {
	query := `
		SELECT ` + creditColumns + `
		FROM subscription_credits
		WHERE subscription_id = $1 AND week_start_date = $2
	`

	credit, err := scanCredit(r.db.QueryRow(ctx, query, subscriptionID, weekStart))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find credit for week",
			zap.Error(err),
			zap.String("subscription_id", subscriptionID.String()),
		)
		return nil, fmt.Errorf("find credit for subscription %s: %w", subscriptionID.String(), err)
	}

	return credit, nil
}

func (r *creditRepository) ConsumeOne(ctx context.Context, creditID uuid.UUID) (bool, error) {
	query := `
		UPDATE subscription_credits
		SET credits_remaining = credits_remaining - 1
		WHERE id = $1 AND credits_remaining > 0
	`

	result, err := r.db.Exec(ctx, query, creditID)
	if err != nil {
		r.log.Error("Failed to consume credit",
			zap.Error(err),
			zap.String("credit_id", creditID.String()),
		)
		return false, fmt.Errorf("consume credit %s: %w", creditID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}
