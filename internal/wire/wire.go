package wire

import (
	"net/http"

	"pressing-booking/internal/adaptor"
	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/usecase"
	"pressing-booking/pkg/mailer"
	"pressing-booking/pkg/middleware"
	"pressing-booking/pkg/payment"
	"pressing-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds the dependency graph by hand: clients, services, handlers,
// router.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	payClient := payment.NewClient(config.Payment.BaseURL, config.Payment.SecretKey, logger)
	mailClient := mailer.NewClient(
		config.Mailer.BaseURL,
		config.Mailer.APIKey,
		config.Mailer.SenderEmail,
		config.Mailer.SenderName,
		logger,
	)

	service := usecase.NewService(repo, config, payClient, mailClient, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, repo, config, logger)
	wireAddress(r, handler.Address, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)
	wireCheckout(r, handler.Checkout, repo, config, logger)
	wireCredit(r, handler.Credit, repo, config, logger)
	wireSlot(r, handler.Slot, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
