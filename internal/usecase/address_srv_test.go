package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"pressing-booking/internal/data/entity"

	"github.com/google/uuid"
)

func TestDeleteAddressRejectedWhileBookingsActive(t *testing.T) {
	env := newTestEnv()
	user, addr := env.seedUserWithAddress()
	booking := seedPendingBooking(env, user.ID, time.Now().Add(48*time.Hour))
	booking.PickupAddressID = &addr.ID

	err := env.addressService().Delete(context.Background(), user.ID, addr.ID)

	var conflict *StateConflictError
	if !errors.As(err, &conflict) || conflict.Code != ConflictAddressInUse {
		t.Fatalf("err = %v, want address-in-use conflict", err)
	}
	if _, ok := env.addrs.addresses[addr.ID]; !ok {
		t.Error("address removed despite active booking")
	}
}

func TestDeleteAddressSucceedsOnceBookingsSettle(t *testing.T) {
	env := newTestEnv()
	user, addr := env.seedUserWithAddress()
	booking := seedPendingBooking(env, user.ID, time.Now().Add(48*time.Hour))
	booking.PickupAddressID = &addr.ID
	booking.Status = entity.BookingStatusCancelled

	if err := env.addressService().Delete(context.Background(), user.ID, addr.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := env.addrs.addresses[addr.ID]; ok {
		t.Error("address still present after delete")
	}
}

func TestDeleteAddressRequiresOwnership(t *testing.T) {
	env := newTestEnv()
	_, addr := env.seedUserWithAddress()

	err := env.addressService().Delete(context.Background(), uuid.New(), addr.ID)

	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want authorization error", err)
	}
}

func TestDeleteAddressNotFound(t *testing.T) {
	env := newTestEnv()
	user, _ := env.seedUserWithAddress()

	err := env.addressService().Delete(context.Background(), user.ID, uuid.New())

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want not-found error", err)
	}
}

func TestListAddressesReturnsOwnRows(t *testing.T) {
	env := newTestEnv()
	user, addr := env.seedUserWithAddress()

	addrs, err := env.addressService().List(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(addrs) != 1 || addrs[0].ID != addr.ID.String() {
		t.Fatalf("got %d addresses, want the seeded one", len(addrs))
	}
	if !addrs[0].IsDefault {
		t.Error("seeded default address not flagged as default")
	}
}
