package usecase

import (
	"context"
	"math"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/dto/response"
	"pressing-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreditService interface {
	// CheckEligibility quotes what a booking of the given weight would cost
	// the subscriber this week.
	CheckEligibility(ctx context.Context, userID uuid.UUID, weightKg float64) (*response.CreditEligibilityResponse, error)
	// Consume burns exactly one credit for the booking. The decrement is a
	// single conditional write at the storage layer.
	Consume(ctx context.Context, subscriptionID, bookingID uuid.UUID, discountCents, surplusCents int64) error
	Balance(ctx context.Context, userID uuid.UUID) (*response.CreditBalanceResponse, error)
	// ResetWeekly grants the new week's credits for every entitled
	// subscription, superseding (never mutating) the prior week's rows.
	ResetWeekly(ctx context.Context) (int, error)
}

type creditService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewCreditService(repo *repository.Repository, config *utils.Config, log *zap.Logger) CreditService {
	return &creditService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "credit")),
	}
}

// priceFor computes the weight-billed price in cents.
func (s *creditService) priceFor(weightKg float64) int64 {
	return int64(math.Round(weightKg * float64(s.config.Credit.SurplusRateCents)))
}

func (s *creditService) CheckEligibility(ctx context.Context, userID uuid.UUID, weightKg float64) (*response.CreditEligibilityResponse, error) {
	if weightKg <= 0 {
		return nil, newValidationError("invalid booking weight", map[string]string{
			"weight_kg": "must be greater than zero",
		})
	}

	fullPrice := s.priceFor(weightKg)
	quote := &response.CreditEligibilityResponse{
		TotalAmountCents: fullPrice,
	}

	sub, err := s.repo.Subscription.FindEntitledByUserID(ctx, userID)
	if err != nil {
		return nil, transient(err)
	}
	if sub == nil {
		return quote, nil
	}

	credit, err := s.repo.Credit.FindForWeek(ctx, sub.ID, entity.WeekStart(time.Now()))
	if err != nil {
		return nil, transient(err)
	}
	if credit == nil || credit.CreditsRemaining <= 0 {
		if credit != nil {
			quote.CreditsRemaining = credit.CreditsRemaining
		}
		return quote, nil
	}

	quote.CanUse = true
	quote.CreditsRemaining = credit.CreditsRemaining

	threshold := s.config.Credit.ThresholdKg
	if weightKg <= threshold {
		// Fully covered by the credit.
		quote.DiscountCents = fullPrice
		quote.SurplusCents = 0
	} else {
		// Credit covers the threshold, the remainder bills at the per-kg rate.
		quote.DiscountCents = s.priceFor(threshold)
		quote.SurplusCents = s.priceFor(weightKg - threshold)
	}

	return quote, nil
}

func (s *creditService) Consume(ctx context.Context, subscriptionID, bookingID uuid.UUID, discountCents, surplusCents int64) error {
	credit, err := s.repo.Credit.FindForWeek(ctx, subscriptionID, entity.WeekStart(time.Now()))
	if err != nil {
		return transient(err)
	}
	if credit == nil {
		return &StateConflictError{
			Code:    ConflictNoCreditsRemaining,
			Message: "no credits remaining for the current week",
		}
	}

	consumed, err := s.repo.Credit.ConsumeOne(ctx, credit.ID)
	if err != nil {
		return transient(err)
	}
	if !consumed {
		return &StateConflictError{
			Code:    ConflictNoCreditsRemaining,
			Message: "no credits remaining for the current week",
		}
	}

	now := time.Now()
	usage := &entity.CreditUsage{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		SubscriptionCreditID: credit.ID,
		SubscriptionID:       subscriptionID,
		BookingID:            bookingID,
		DiscountCents:        discountCents,
		SurplusCents:         surplusCents,
	}

	if err := s.repo.CreditUsage.Create(ctx, usage); err != nil {
		return transient(err)
	}

	if err := s.repo.Booking.SetCreditUsage(ctx, bookingID, discountCents, surplusCents); err != nil {
		return transient(err)
	}

	s.log.Info("Credit consumed",
		zap.String("subscription_id", subscriptionID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Int64("discount_cents", discountCents),
		zap.Int64("surplus_cents", surplusCents),
	)

	return nil
}

func (s *creditService) Balance(ctx context.Context, userID uuid.UUID) (*response.CreditBalanceResponse, error) {
	sub, err := s.repo.Subscription.FindEntitledByUserID(ctx, userID)
	if err != nil {
		return nil, transient(err)
	}
	if sub == nil {
		return nil, &NotFoundError{Resource: "subscription", ID: userID.String()}
	}

	credit, err := s.repo.Credit.FindForWeek(ctx, sub.ID, entity.WeekStart(time.Now()))
	if err != nil {
		return nil, transient(err)
	}

	saved, err := s.repo.CreditUsage.SumDiscountBySubscriptionID(ctx, sub.ID)
	if err != nil {
		return nil, transient(err)
	}

	balance := &response.CreditBalanceResponse{
		TotalSavedCents: saved,
	}
	if credit != nil {
		balance.CreditsTotal = credit.CreditsTotal
		balance.CreditsRemaining = credit.CreditsRemaining
		balance.WeekStartDate = credit.WeekStartDate.Format("2006-01-02")
		balance.ResetAt = credit.ResetAt.Format(time.RFC3339)
	}

	return balance, nil
}

func (s *creditService) ResetWeekly(ctx context.Context) (int, error) {
	subs, err := s.repo.Subscription.FindAllEntitled(ctx)
	if err != nil {
		return 0, transient(err)
	}

	now := time.Now()
	weekStart := entity.WeekStart(now)
	granted := 0

	for _, sub := range subs {
		credit := &entity.SubscriptionCredit{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			SubscriptionID:   sub.ID,
			CreditsTotal:     sub.Plan.CreditsPerWeek(),
			CreditsRemaining: sub.Plan.CreditsPerWeek(),
			WeekStartDate:    weekStart,
			ResetAt:          now,
		}

		if err := s.repo.Credit.Create(ctx, credit); err != nil {
			s.log.Error("Failed to grant weekly credit",
				zap.Error(err),
				zap.String("subscription_id", sub.ID.String()),
			)
			continue
		}
		granted++
	}

	s.log.Info("Weekly credit reset completed",
		zap.Int("subscriptions", len(subs)),
		zap.Int("granted", granted),
		zap.Time("week_start", weekStart),
	)

	return granted, nil
}
