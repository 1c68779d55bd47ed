package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pressing-booking/internal/data/entity"

	"github.com/google/uuid"
)

func TestCheckEligibilityUnderThreshold(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	env.seedSubscriptionWithCredits(user.ID, entity.PlanMonthly, 2)

	quote, err := env.creditService().CheckEligibility(context.Background(), user.ID, 15)
	if err != nil {
		t.Fatalf("CheckEligibility: %v", err)
	}
	if !quote.CanUse {
		t.Fatal("expected credit usable at 15kg")
	}
	if quote.TotalAmountCents != 4500 {
		t.Errorf("total = %d, want 4500", quote.TotalAmountCents)
	}
	if quote.DiscountCents != 4500 {
		t.Errorf("discount = %d, want 4500 (full coverage at threshold)", quote.DiscountCents)
	}
	if quote.SurplusCents != 0 {
		t.Errorf("surplus = %d, want 0", quote.SurplusCents)
	}
}

func TestCheckEligibilityOverThreshold(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	env.seedSubscriptionWithCredits(user.ID, entity.PlanMonthly, 1)

	quote, err := env.creditService().CheckEligibility(context.Background(), user.ID, 20)
	if err != nil {
		t.Fatalf("CheckEligibility: %v", err)
	}
	if !quote.CanUse {
		t.Fatal("expected credit usable at 20kg")
	}
	if quote.DiscountCents != 4500 {
		t.Errorf("discount = %d, want 4500 (15kg covered)", quote.DiscountCents)
	}
	if quote.SurplusCents != 1500 {
		t.Errorf("surplus = %d, want 1500 (5kg over threshold)", quote.SurplusCents)
	}
	if quote.TotalAmountCents != 6000 {
		t.Errorf("total = %d, want 6000", quote.TotalAmountCents)
	}
}

func TestCheckEligibilityWithoutSubscription(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()

	quote, err := env.creditService().CheckEligibility(context.Background(), user.ID, 10)
	if err != nil {
		t.Fatalf("CheckEligibility: %v", err)
	}
	if quote.CanUse {
		t.Error("expected credit unusable without a subscription")
	}
	if quote.TotalAmountCents != 3000 {
		t.Errorf("total = %d, want 3000", quote.TotalAmountCents)
	}
}

func TestCheckEligibilityExhaustedWeek(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	env.seedSubscriptionWithCredits(user.ID, entity.PlanMonthly, 0)

	quote, err := env.creditService().CheckEligibility(context.Background(), user.ID, 10)
	if err != nil {
		t.Fatalf("CheckEligibility: %v", err)
	}
	if quote.CanUse {
		t.Error("expected credit unusable with zero remaining")
	}
}

func TestConsumeLastCreditConcurrently(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	sub, credit := env.seedSubscriptionWithCredits(user.ID, entity.PlanMonthly, 1)
	svc := env.creditService()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Consume(context.Background(), sub.ID, uuid.New(), 4500, 0)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var conflict *StateConflictError
		if errors.As(err, &conflict) && conflict.Code == ConflictNoCreditsRemaining {
			conflicts++
		} else {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Errorf("successes = %d, conflicts = %d; want exactly one of each", successes, conflicts)
	}
	if remaining := env.credits.remaining(credit.ID); remaining != 0 {
		t.Errorf("credits remaining = %d, want 0", remaining)
	}
}

func TestConsumeRecordsUsageAndBooking(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	sub, _ := env.seedSubscriptionWithCredits(user.ID, entity.PlanQuarterly, 3)

	bookingID := uuid.New()
	userID := user.ID
	env.bookings.bookings[bookingID] = &entity.Booking{
		Base:   entity.Base{ID: bookingID},
		UserID: &userID,
		Status: entity.BookingStatusPending,
	}

	if err := env.creditService().Consume(context.Background(), sub.ID, bookingID, 4500, 1500); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	if len(env.usages.usages) != 1 {
		t.Fatalf("got %d usage rows, want 1", len(env.usages.usages))
	}
	usage := env.usages.usages[0]
	if usage.DiscountCents != 4500 || usage.SurplusCents != 1500 {
		t.Errorf("usage amounts = %d/%d, want 4500/1500", usage.DiscountCents, usage.SurplusCents)
	}

	booking := env.bookings.bookings[bookingID]
	if !booking.UsedCredit || booking.CreditDiscountCents == nil || *booking.CreditDiscountCents != 4500 {
		t.Error("booking credit fields not set")
	}
}

func TestResetWeeklyGrantsPerPlan(t *testing.T) {
	env := newTestEnv()
	userA, _ := env.seedUserWithAddress()
	subA := &entity.Subscription{
		Base:   entity.Base{ID: uuid.New()},
		UserID: userA.ID,
		Plan:   entity.PlanMonthly,
		Status: entity.SubscriptionStatusActive,
	}
	subB := &entity.Subscription{
		Base:   entity.Base{ID: uuid.New()},
		UserID: uuid.New(),
		Plan:   entity.PlanQuarterly,
		Status: entity.SubscriptionStatusTrialing,
	}
	cancelled := &entity.Subscription{
		Base:   entity.Base{ID: uuid.New()},
		UserID: uuid.New(),
		Plan:   entity.PlanMonthly,
		Status: entity.SubscriptionStatusCanceled,
	}
	env.subs.subs[subA.ID] = subA
	env.subs.subs[subB.ID] = subB
	env.subs.subs[cancelled.ID] = cancelled

	granted, err := env.creditService().ResetWeekly(context.Background())
	if err != nil {
		t.Fatalf("ResetWeekly: %v", err)
	}
	if granted != 2 {
		t.Errorf("granted = %d, want 2 (cancelled excluded)", granted)
	}

	for subID, want := range map[uuid.UUID]int{subA.ID: 2, subB.ID: 3} {
		credit, err := env.credits.FindForWeek(context.Background(), subID, entity.WeekStart(time.Now()))
		if err != nil || credit == nil {
			t.Fatalf("missing credit row for %s", subID)
		}
		if credit.CreditsRemaining != want {
			t.Errorf("sub %s remaining = %d, want %d", subID, credit.CreditsRemaining, want)
		}
	}
}
