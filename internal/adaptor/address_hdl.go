package adaptor

import (
	"net/http"

	"pressing-booking/internal/usecase"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AddressHandler struct {
	service usecase.AddressService
	log     *zap.Logger
}

func NewAddressHandler(service usecase.AddressService, log *zap.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		log:     log.With(zap.String("handler", "address")),
	}
}

// List handles GET /api/addresses (protected)
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	addrs, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "list addresses")
		return
	}

	utils.ResponseSuccess(w, "success", addrs)
}

// Delete handles DELETE /api/addresses/{id} (protected)
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	addressID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid address ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), userID, addressID); err != nil {
		handleServiceError(w, h.log, err, "delete address")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
