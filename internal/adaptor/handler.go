package adaptor

import (
	"errors"
	"net/http"

	"pressing-booking/internal/usecase"
	"pressing-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Address  *AddressHandler
	Booking  *BookingHandler
	Checkout *CheckoutHandler
	Credit   *CreditHandler
	Slot     *SlotHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Address:  NewAddressHandler(service.Address, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Checkout: NewCheckoutHandler(service.Checkout, log),
		Credit:   NewCreditHandler(service.Credit, log),
		Slot:     NewSlotHandler(service.Slot, log),
	}
}

// conflictPayload is the body attached to 409 responses so clients can branch
// on the conflict code instead of parsing messages.
type conflictPayload struct {
	Code string `json:"code"`
}

// handleServiceError is the single funnel from the service error taxonomy to
// HTTP. Every handler routes its service errors through here.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validationErr *usecase.ValidationError
		authErr       *usecase.AuthorizationError
		notFoundErr   *usecase.NotFoundError
		conflictErr   *usecase.StateConflictError
		externalErr   *usecase.ExternalServiceError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" rejected",
			zap.String("operation", operation),
			zap.String("reason", validationErr.Message))
		utils.ResponseBadRequest(w, validationErr.Message, validationErr.Fields)

	case errors.As(err, &authErr):
		log.Warn(operation+" forbidden",
			zap.String("operation", operation))
		utils.ResponseForbidden(w, authErr.Message)

	case errors.As(err, &notFoundErr):
		log.Warn(operation+" target missing",
			zap.String("operation", operation),
			zap.String("resource", notFoundErr.Resource))
		utils.ResponseNotFound(w, notFoundErr.Error())

	case errors.As(err, &conflictErr):
		if conflictErr.Code == usecase.ConflictPaymentNotConfirmed {
			log.Warn(operation+" payment not settled",
				zap.String("operation", operation))
			utils.ResponsePaymentRequired(w, conflictErr.Message)
			return
		}
		log.Warn(operation+" state conflict",
			zap.String("operation", operation),
			zap.String("code", conflictErr.Code))
		utils.ResponseConflict(w, conflictErr.Message, conflictPayload{Code: conflictErr.Code})

	case errors.As(err, &externalErr):
		log.Error(operation+" collaborator failed",
			zap.Error(err),
			zap.String("operation", operation),
			zap.String("collaborator", externalErr.Service))
		utils.ResponseInternalError(w, "Upstream service unavailable")

	default:
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
