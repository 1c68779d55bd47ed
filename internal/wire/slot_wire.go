package wire

import (
	"pressing-booking/internal/adaptor"
	"pressing-booking/internal/data/repository"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSlot(
	r chi.Router,
	slotHandler *adaptor.SlotHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/logistic-slots - Browse open pickup/delivery windows. Public so
	// guests can pick a schedule before paying.
	r.Get("/api/logistic-slots", slotHandler.GetAvailable)
}
