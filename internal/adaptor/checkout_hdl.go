package adaptor

import (
	"encoding/json"
	"net/http"

	"pressing-booking/internal/dto/request"
	"pressing-booking/internal/usecase"
	"pressing-booking/pkg/utils"

	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service usecase.CheckoutService
	log     *zap.Logger
}

func NewCheckoutHandler(service usecase.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "checkout")),
	}
}

// FinalizeGuestBooking handles POST /api/bookings/guest (public).
// The payment reference is the only trusted input; everything else comes back
// from the payment provider's session.
func (h *CheckoutHandler) FinalizeGuestBooking(w http.ResponseWriter, r *http.Request) {
	var req request.GuestCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.FinalizeGuestBooking(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "finalize guest booking")
		return
	}

	// A replay is an idempotent success, but surfaces as 409 carrying the
	// original booking so clients can tell it apart from a fresh creation.
	if result.AlreadyProcessed {
		utils.ResponseConflict(w, "Booking already finalized for this payment reference", result)
		return
	}
	utils.ResponseCreated(w, "success", result)
}
