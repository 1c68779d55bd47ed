package request

type AddressInput struct {
	Street             string  `json:"street" validate:"required,min=3"`
	City               string  `json:"city" validate:"required"`
	PostalCode         string  `json:"postal_code" validate:"required,min=4,max=10"`
	Building           *string `json:"building,omitempty"`
	AccessInstructions *string `json:"access_instructions,omitempty"`
}

// ScheduleInput carries either two logistic slot references or the legacy
// free-text date plus time-slot pair. Exactly one form must be filled.
type ScheduleInput struct {
	PickupSlotID   *string `json:"pickup_slot_id,omitempty" validate:"omitempty,uuid4"`
	DeliverySlotID *string `json:"delivery_slot_id,omitempty" validate:"omitempty,uuid4"`

	PickupDate       *string `json:"pickup_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PickupTimeSlot   *string `json:"pickup_time_slot,omitempty"`
	DeliveryDate     *string `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeliveryTimeSlot *string `json:"delivery_time_slot,omitempty"`
}

// IsSlotBased reports whether the input references published slots.
func (s *ScheduleInput) IsSlotBased() bool {
	return s.PickupSlotID != nil && s.DeliverySlotID != nil
}

type BookingItemInput struct {
	ServiceID           string  `json:"service_id" validate:"required,uuid4"`
	Quantity            int     `json:"quantity" validate:"required,min=1"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

type CreateBookingRequest struct {
	Items             []BookingItemInput `json:"items" validate:"required,min=1,dive"`
	Schedule          ScheduleInput      `json:"schedule" validate:"required"`
	PickupAddressID   string             `json:"pickup_address_id" validate:"required,uuid4"`
	DeliveryAddressID string             `json:"delivery_address_id" validate:"required,uuid4"`
}

type ModifyBookingRequest struct {
	Schedule          *ScheduleInput `json:"schedule,omitempty"`
	PickupAddressID   *string        `json:"pickup_address_id,omitempty" validate:"omitempty,uuid4"`
	DeliveryAddressID *string        `json:"delivery_address_id,omitempty" validate:"omitempty,uuid4"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type ReportProblemRequest struct {
	Type        string   `json:"type" validate:"required,oneof=damage missing_item late_delivery quality other"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	PhotoURLs   []string `json:"photo_urls,omitempty" validate:"omitempty,max=10,dive,url"`
}
