package wire

import (
	"pressing-booking/internal/adaptor"
	"pressing-booking/internal/data/repository"
	"pressing-booking/pkg/middleware"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCredit(
	r chi.Router,
	creditHandler *adaptor.CreditHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/subscriptions/credits/check - Quote a booking against this
		// week's credit
		r.Post("/api/subscriptions/credits/check", creditHandler.CheckEligibility)

		// GET /api/subscriptions/credits - Current balance and savings
		r.Get("/api/subscriptions/credits", creditHandler.Balance)
	})
}
