package adaptor

import (
	"net/http"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/usecase"
	"pressing-booking/pkg/utils"

	"go.uber.org/zap"
)

type SlotHandler struct {
	service usecase.SlotService
	log     *zap.Logger
}

func NewSlotHandler(service usecase.SlotService, log *zap.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log.With(zap.String("handler", "slot")),
	}
}

// GetAvailable handles GET /api/logistic-slots?role=pickup&from=...&to=... (public)
func (h *SlotHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	role := entity.SlotRole(query.Get("role"))
	if role == "" {
		role = entity.SlotRolePickup
	}

	now := time.Now()
	from := now
	to := now.AddDate(0, 0, 14)

	if v := query.Get("from"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid from date, use YYYY-MM-DD", nil)
			return
		}
		from = parsed
	}
	if v := query.Get("to"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			utils.ResponseBadRequest(w, "Invalid to date, use YYYY-MM-DD", nil)
			return
		}
		to = parsed
	}

	slots, err := h.service.GetAvailable(r.Context(), role, from, to)
	if err != nil {
		handleServiceError(w, h.log, err, "get available slots")
		return
	}

	utils.ResponseSuccess(w, "success", slots)
}
