package usecase

import (
	"context"
	"fmt"

	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressService manages the customer's reusable addresses. Deletion is
// refused while any active booking still points at the address; the booking's
// own snapshot stays immutable either way.
type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]response.UserAddressResponse, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type addressService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAddressService(repo *repository.Repository, log *zap.Logger) AddressService {
	return &addressService{
		repo: repo,
		log:  log.With(zap.String("service", "address")),
	}
}

func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]response.UserAddressResponse, error) {
	addrs, err := s.repo.Address.FindByUserID(ctx, userID)
	if err != nil {
		return nil, transient(err)
	}

	resp := make([]response.UserAddressResponse, 0, len(addrs))
	for _, a := range addrs {
		resp = append(resp, response.UserAddressToResponse(a))
	}
	return resp, nil
}

func (s *addressService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	addr, err := s.repo.Address.FindByID(ctx, addressID)
	if err != nil {
		return transient(err)
	}
	if addr == nil {
		return &NotFoundError{Resource: "address", ID: addressID.String()}
	}
	if addr.UserID != userID {
		return &AuthorizationError{Message: "address does not belong to the authenticated user"}
	}

	active, err := s.repo.Booking.CountActiveByAddressID(ctx, addressID)
	if err != nil {
		return transient(err)
	}
	if active > 0 {
		return &StateConflictError{
			Code:    ConflictAddressInUse,
			Message: fmt.Sprintf("address is still referenced by %d active bookings", active),
		}
	}

	if err := s.repo.Address.Delete(ctx, addressID); err != nil {
		return transient(err)
	}

	s.log.Info("Address deleted",
		zap.String("address_id", addressID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}
