package response

import (
	"time"

	"pressing-booking/internal/data/entity"
)

type UserAddressResponse struct {
	ID                 string    `json:"id"`
	Street             string    `json:"street"`
	City               string    `json:"city"`
	PostalCode         string    `json:"postal_code"`
	Building           *string   `json:"building,omitempty"`
	AccessInstructions *string   `json:"access_instructions,omitempty"`
	IsDefault          bool      `json:"is_default"`
	CreatedAt          time.Time `json:"created_at"`
}

func UserAddressToResponse(a *entity.Address) UserAddressResponse {
	return UserAddressResponse{
		ID:                 a.ID.String(),
		Street:             a.Street,
		City:               a.City,
		PostalCode:         a.PostalCode,
		Building:           a.Building,
		AccessInstructions: a.AccessInstructions,
		IsDefault:          a.IsDefault,
		CreatedAt:          a.CreatedAt,
	}
}
