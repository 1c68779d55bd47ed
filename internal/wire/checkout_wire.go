package wire

import (
	"pressing-booking/internal/adaptor"
	"pressing-booking/internal/data/repository"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCheckout(
	r chi.Router,
	checkoutHandler *adaptor.CheckoutHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/bookings/guest - Finalize a paid guest checkout. Public by
	// design: the guest has no session, the payment reference is the proof.
	r.Post("/api/bookings/guest", checkoutHandler.FinalizeGuestBooking)
}
