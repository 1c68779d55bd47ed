package wire

import (
	"pressing-booking/internal/adaptor"
	"pressing-booking/internal/data/repository"
	"pressing-booking/pkg/middleware"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/bookings - Create booking (authenticated users only)
		r.Post("/api/bookings", bookingHandler.Create)

		// GET /api/bookings - Booking history (user's own bookings)
		r.Get("/api/bookings", bookingHandler.List)

		// GET /api/bookings/{id} - Booking details
		r.Get("/api/bookings/{id}", bookingHandler.GetByID)

		// PUT /api/bookings/{id} - Modify schedule or addresses
		r.Put("/api/bookings/{id}", bookingHandler.Modify)

		// POST /api/bookings/{id}/cancel - Customer cancellation
		r.Post("/api/bookings/{id}/cancel", bookingHandler.Cancel)

		// POST /api/bookings/{id}/report - Report a problem
		r.Post("/api/bookings/{id}/report", bookingHandler.ReportProblem)

		// GET /api/bookings/{id}/modifications - Audit trail
		r.Get("/api/bookings/{id}/modifications", bookingHandler.GetModifications)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(repo.User, log))

		// PUT /api/admin/bookings/{id}/status - Lifecycle transition (staff)
		r.Put("/{id}/status", bookingHandler.Transition)
	})
}
