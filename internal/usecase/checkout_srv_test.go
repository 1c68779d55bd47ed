package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"pressing-booking/internal/dto/request"
	"pressing-booking/internal/dto/response"
	"pressing-booking/pkg/payment"

	"github.com/google/uuid"
)

// seedPaidSession registers a settled payment session carrying a complete
// guest checkout payload.
func seedPaidSession(env *testEnv, ref, email string, amountCents int64, serviceID uuid.UUID, weightKg float64) *payment.Session {
	session := &payment.Session{
		ID:              "cs_" + ref,
		PaymentIntentID: ref,
		Status:          "complete",
		AmountCents:     amountCents,
		Currency:        "eur",
		CustomerEmail:   email,
		Metadata: payment.Metadata{
			Guest: payment.GuestMeta{
				FirstName: "Claire",
				LastName:  "Moreau",
				Email:     email,
				Phone:     "+33612345678",
			},
			Items: []payment.ItemMeta{
				{ServiceID: serviceID.String(), Quantity: 3},
			},
			Pickup: payment.AddressMeta{
				Street:     "3 rue des Martyrs",
				City:       "Paris",
				PostalCode: "75009",
			},
			Delivery: payment.AddressMeta{
				Street:     "3 rue des Martyrs",
				City:       "Paris",
				PostalCode: "75009",
			},
			Schedule: payment.ScheduleMeta{
				PickupDate:       time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
				PickupTimeSlot:   "09:00-11:00",
				DeliveryDate:     time.Now().AddDate(0, 0, 6).Format("2006-01-02"),
				DeliveryTimeSlot: "09:00-11:00",
			},
			WeightKg: weightKg,
		},
	}
	env.payments.sessions[ref] = session
	return session
}

func TestFinalizeCreatesBookingAndAccount(t *testing.T) {
	env := newTestEnv()
	svc := env.seedService("express", 1500)
	seedPaidSession(env, "pi_fresh_1", "claire@example.com", 4500, svc.ID, 0)

	resp, err := env.checkoutService().FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_fresh_1"})
	if err != nil {
		t.Fatalf("FinalizeGuestBooking: %v", err)
	}

	if !resp.AccountCreated {
		t.Error("AccountCreated = false, want true for a fresh email")
	}
	if resp.AlreadyProcessed {
		t.Error("AlreadyProcessed = true on first finalize")
	}
	if resp.Booking.TotalAmountCents != 4500 {
		t.Errorf("total = %d, want the settled session amount 4500", resp.Booking.TotalAmountCents)
	}
	if env.bookings.count() != 1 {
		t.Errorf("booking rows = %d, want 1", env.bookings.count())
	}

	user, _ := env.users.FindByEmail(context.Background(), "claire@example.com")
	if user == nil {
		t.Fatal("no account persisted for the guest email")
	}
	if user.PasswordResetToken == nil {
		t.Error("auto-created account has no password reset token")
	} else {
		// Only the SHA-256 hex digest of the token may be persisted.
		if len(*user.PasswordResetToken) != 64 {
			t.Errorf("stored reset token length = %d, want 64 hex chars", len(*user.PasswordResetToken))
		}
		if _, err := hex.DecodeString(*user.PasswordResetToken); err != nil {
			t.Errorf("stored reset token is not hex: %v", err)
		}
	}

	addrs, _ := env.addrs.FindByUserID(context.Background(), user.ID)
	if len(addrs) != 1 || !addrs[0].IsDefault {
		t.Errorf("got %d persisted addresses, want 1 default", len(addrs))
	}
	if addrs[0].Street != "3 rue des Martyrs" {
		t.Errorf("persisted street = %s, want the guest-entered one", addrs[0].Street)
	}
}

func TestFinalizeIdempotentReplay(t *testing.T) {
	env := newTestEnv()
	svc := env.seedService("express", 1500)
	seedPaidSession(env, "pi_replay_1", "claire@example.com", 4500, svc.ID, 0)

	checkout := env.checkoutService()
	first, err := checkout.FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_replay_1"})
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	second, err := checkout.FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_replay_1"})
	if err != nil {
		t.Fatalf("replay finalize: %v", err)
	}

	if !second.AlreadyProcessed {
		t.Error("replay not flagged AlreadyProcessed")
	}
	if second.Booking.ID != first.Booking.ID {
		t.Error("replay returned a different booking")
	}
	if env.bookings.count() != 1 {
		t.Errorf("booking rows = %d, want 1 after replay", env.bookings.count())
	}
}

func TestFinalizeConcurrentDoubleSubmit(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	svc := env.seedService("express", 1500)
	seedPaidSession(env, "pi_race_1", user.Email, 4500, svc.ID, 0)

	checkout := env.checkoutService()
	results := make([]*response.CheckoutResponse, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = checkout.FinalizeGuestBooking(context.Background(),
				&request.GuestCheckoutRequest{PaymentReference: "pi_race_1"})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}
	if env.bookings.count() != 1 {
		t.Fatalf("booking rows = %d, want exactly 1", env.bookings.count())
	}

	fresh := 0
	for _, r := range results {
		if !r.AlreadyProcessed {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("fresh finalizations = %d, want exactly 1", fresh)
	}
	if results[0].Booking.ID != results[1].Booking.ID {
		t.Error("concurrent finalizations diverged on the booking")
	}
}

func TestFinalizeUnpaidSessionRejected(t *testing.T) {
	env := newTestEnv()
	svc := env.seedService("express", 1500)
	session := seedPaidSession(env, "pi_open_1", "claire@example.com", 4500, svc.ID, 0)
	session.Status = "open"

	_, err := env.checkoutService().FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_open_1"})

	var conflict *StateConflictError
	if !errors.As(err, &conflict) || conflict.Code != ConflictPaymentNotConfirmed {
		t.Fatalf("err = %v, want payment-not-confirmed conflict", err)
	}
	if env.bookings.count() != 0 {
		t.Error("booking persisted for an unsettled session")
	}
}

func TestFinalizeUnknownReference(t *testing.T) {
	env := newTestEnv()

	_, err := env.checkoutService().FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_missing_1"})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want not-found error", err)
	}
}

func TestFinalizeZeroAmountRejected(t *testing.T) {
	env := newTestEnv()
	svc := env.seedService("express", 1500)
	seedPaidSession(env, "pi_zero_1", "claire@example.com", 0, svc.ID, 0)

	_, err := env.checkoutService().FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_zero_1"})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want validation error for zero amount", err)
	}
}

func TestFinalizeCompensatesOnItemFailure(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	svc := env.seedService("express", 1500)
	seedPaidSession(env, "pi_fail_1", user.Email, 4500, svc.ID, 0)
	env.items.failCreateBatch = true

	_, err := env.checkoutService().FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_fail_1"})
	if err == nil {
		t.Fatal("expected error from item batch failure")
	}

	if env.bookings.count() != 0 {
		t.Errorf("booking rows left behind = %d, want 0", env.bookings.count())
	}
	if env.items.count() != 0 {
		t.Errorf("item rows left behind = %d, want 0", env.items.count())
	}
}

func TestFinalizeExistingSubscriberConsumesCredit(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()
	_, credit := env.seedSubscriptionWithCredits(user.ID, "monthly", 2)
	svc := env.seedService("express", 1500)
	seedPaidSession(env, "pi_credit_1", user.Email, 4500, svc.ID, 10)

	resp, err := env.checkoutService().FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_credit_1"})
	if err != nil {
		t.Fatalf("FinalizeGuestBooking: %v", err)
	}
	if resp.AccountCreated {
		t.Error("AccountCreated = true for an existing email")
	}

	stored := env.bookings.bookings[uuid.MustParse(resp.Booking.ID)]
	if stored == nil {
		t.Fatal("booking not persisted")
	}
	if !stored.UsedCredit {
		t.Fatal("declared weight with an entitled subscription did not burn a credit")
	}
	// 10 kg under the 15 kg threshold: the whole order is covered.
	if stored.CreditDiscountCents == nil || *stored.CreditDiscountCents != 3000 {
		t.Errorf("discount = %v, want 3000", stored.CreditDiscountCents)
	}
	if env.credits.remaining(credit.ID) != 1 {
		t.Errorf("credits remaining = %d, want 1", env.credits.remaining(credit.ID))
	}
	if len(env.usages.usages) != 1 {
		t.Errorf("usage rows = %d, want 1", len(env.usages.usages))
	}
}

func TestFinalizeUsesStoredAddressOnRequest(t *testing.T) {
	env := newTestEnv()
	user, addr := env.seedUserWithAddress()
	svc := env.seedService("express", 1500)
	seedPaidSession(env, "pi_addr_1", user.Email, 4500, svc.ID, 0)

	resp, err := env.checkoutService().FinalizeGuestBooking(context.Background(),
		&request.GuestCheckoutRequest{PaymentReference: "pi_addr_1", UseAccountAddresses: true})
	if err != nil {
		t.Fatalf("FinalizeGuestBooking: %v", err)
	}

	stored := env.bookings.bookings[uuid.MustParse(resp.Booking.ID)]
	if stored.PickupAddress == nil || stored.PickupAddress.Street != addr.Street {
		t.Errorf("pickup snapshot = %+v, want the stored default address", stored.PickupAddress)
	}
}
