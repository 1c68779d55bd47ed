package wire

import (
	"pressing-booking/internal/adaptor"
	"pressing-booking/internal/data/repository"
	"pressing-booking/pkg/middleware"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAddress(
	r chi.Router,
	addressHandler *adaptor.AddressHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// GET /api/addresses - The caller's reusable addresses
		r.Get("/api/addresses", addressHandler.List)

		// DELETE /api/addresses/{id} - Refused while active bookings reference it
		r.Delete("/api/addresses/{id}", addressHandler.Delete)
	})
}
