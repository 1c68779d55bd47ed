package repository

import (
	"pressing-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Service      ServiceRepository
	Address      AddressRepository
	Booking      BookingRepository
	BookingItem  BookingItemRepository
	Modification ModificationRepository
	Report       ReportRepository
	Slot         SlotRepository
	Subscription SubscriptionRepository
	Credit       CreditRepository
	CreditUsage  CreditUsageRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Service:      NewServiceRepository(db, log),
		Address:      NewAddressRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		BookingItem:  NewBookingItemRepository(db, log),
		Modification: NewModificationRepository(db, log),
		Report:       NewReportRepository(db, log),
		Slot:         NewSlotRepository(db, log),
		Subscription: NewSubscriptionRepository(db, log),
		Credit:       NewCreditRepository(db, log),
		CreditUsage:  NewCreditUsageRepository(db, log),
	}
}
