package adaptor

import (
	"encoding/json"
	"net/http"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/dto/request"
	"pressing-booking/internal/dto/response"
	"pressing-booking/internal/usecase"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// bookingIDParam parses the {id} route parameter.
func bookingIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/bookings (protected)
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// List handles GET /api/bookings (protected)
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, total, err := h.service.List(r.Context(), userID, req.Page, req.Limit())
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", response.NewPaginatedResponse(bookings, req.Page, req.Limit(), total))
}

// GetByID handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}

	role, _ := utils.GetRoleFromContext(r.Context())
	booking, err := h.service.GetByID(r.Context(), userID, bookingID, role == "admin")
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Modify handles PUT /api/bookings/{id} (protected)
func (h *BookingHandler) Modify(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}

	var req request.ModifyBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.Modify(r.Context(), userID, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "modify booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Cancel handles POST /api/bookings/{id}/cancel (protected)
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}

	var req request.CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.Cancel(r.Context(), userID, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// ReportProblem handles POST /api/bookings/{id}/report (protected)
func (h *BookingHandler) ReportProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}

	var req request.ReportProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	report, err := h.service.ReportProblem(r.Context(), userID, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "report problem")
		return
	}

	utils.ResponseCreated(w, "success", report)
}

// GetModifications handles GET /api/bookings/{id}/modifications (protected)
func (h *BookingHandler) GetModifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}

	mods, err := h.service.GetModifications(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking modifications")
		return
	}

	utils.ResponseSuccess(w, "success", mods)
}

// ==================== ADMIN METHODS ====================

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// Transition handles PUT /api/admin/bookings/{id}/status (admin only)
func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Status == "" {
		utils.ResponseBadRequest(w, "Status is required", nil)
		return
	}

	booking, err := h.service.Transition(r.Context(), bookingID, entity.BookingStatus(req.Status), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "transition booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}
