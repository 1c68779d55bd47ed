package usecase

import (
	"pressing-booking/internal/data/repository"
	"pressing-booking/pkg/mailer"
	"pressing-booking/pkg/payment"
	"pressing-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	Address  AddressService
	Booking  BookingService
	Checkout CheckoutService
	Credit   CreditService
	Slot     SlotService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	pay payment.Client,
	mail mailer.Client,
	log *zap.Logger,
) *Service {
	slot := NewSlotService(repo, log)
	credit := NewCreditService(repo, config, log)

	return &Service{
		Auth:     NewAuthService(repo, config, log),
		Address:  NewAddressService(repo, log),
		Booking:  NewBookingService(repo, slot, log),
		Checkout: NewCheckoutService(repo, slot, credit, pay, mail, config, log),
		Credit:   credit,
		Slot:     slot,
	}
}
