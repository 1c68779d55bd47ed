package adaptor

import (
	"encoding/json"
	"net/http"

	"pressing-booking/internal/dto/request"
	"pressing-booking/internal/usecase"
	"pressing-booking/pkg/utils"

	"go.uber.org/zap"
)

type CreditHandler struct {
	service usecase.CreditService
	log     *zap.Logger
}

func NewCreditHandler(service usecase.CreditService, log *zap.Logger) *CreditHandler {
	return &CreditHandler{
		service: service,
		log:     log.With(zap.String("handler", "credit")),
	}
}

// CheckEligibility handles POST /api/subscriptions/credits/check (protected)
func (h *CreditHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CheckCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	quote, err := h.service.CheckEligibility(r.Context(), userID, req.WeightKg)
	if err != nil {
		handleServiceError(w, h.log, err, "check credit eligibility")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// Balance handles GET /api/subscriptions/credits (protected)
func (h *CreditHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get credit balance")
		return
	}

	utils.ResponseSuccess(w, "success", balance)
}
