package response

import (
	"time"

	"pressing-booking/internal/data/entity"
)

type AddressResponse struct {
	Street             string  `json:"street"`
	City               string  `json:"city"`
	PostalCode         string  `json:"postal_code"`
	Building           *string `json:"building,omitempty"`
	AccessInstructions *string `json:"access_instructions,omitempty"`
}

type ScheduleResponse struct {
	Kind             string  `json:"kind"`
	PickupDate       string  `json:"pickup_date"`
	PickupTimeSlot   string  `json:"pickup_time_slot"`
	DeliveryDate     string  `json:"delivery_date"`
	DeliveryTimeSlot string  `json:"delivery_time_slot"`
	PickupSlotID     *string `json:"pickup_slot_id,omitempty"`
	DeliverySlotID   *string `json:"delivery_slot_id,omitempty"`
}

type BookingItemResponse struct {
	ID                  string  `json:"id"`
	ServiceID           string  `json:"service_id"`
	ServiceName         string  `json:"service_name,omitempty"`
	Quantity            int     `json:"quantity"`
	UnitPriceCents      int64   `json:"unit_price_cents"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

type BookingResponse struct {
	ID               string                `json:"id"`
	BookingNumber    string                `json:"booking_number"`
	UserID           *string               `json:"user_id,omitempty"`
	GuestEmail       *string               `json:"guest_email,omitempty"`
	Status           entity.BookingStatus  `json:"status"`
	PaymentStatus    entity.PaymentStatus  `json:"payment_status"`
	TotalAmountCents int64                 `json:"total_amount_cents"`
	UsedCredit       bool                  `json:"used_credit"`
	CreditDiscount   *int64                `json:"credit_discount_cents,omitempty"`
	Schedule         ScheduleResponse      `json:"schedule"`
	PickupAddress    *AddressResponse      `json:"pickup_address,omitempty"`
	DeliveryAddress  *AddressResponse      `json:"delivery_address,omitempty"`
	Items            []BookingItemResponse `json:"items,omitempty"`
	CancelledAt      *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

type ModificationResponse struct {
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportResponse struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	PhotoURLs   []string  `json:"photo_urls,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Helper converters

func snapshotToResponse(s *entity.AddressSnapshot) *AddressResponse {
	if s == nil {
		return nil
	}
	return &AddressResponse{
		Street:             s.Street,
		City:               s.City,
		PostalCode:         s.PostalCode,
		Building:           s.Building,
		AccessInstructions: s.AccessInstructions,
	}
}

func scheduleToResponse(s entity.Schedule) ScheduleResponse {
	resp := ScheduleResponse{Kind: string(s.Kind)}
	if legacy, err := s.Derive(); err == nil {
		resp.PickupDate = legacy.PickupDate.Format("2006-01-02")
		resp.PickupTimeSlot = legacy.PickupTimeSlot
		resp.DeliveryDate = legacy.DeliveryDate.Format("2006-01-02")
		resp.DeliveryTimeSlot = legacy.DeliveryTimeSlot
	}
	if s.Kind == entity.ScheduleKindSlots && s.Slots != nil {
		pickupID := s.Slots.PickupSlotID.String()
		deliveryID := s.Slots.DeliverySlotID.String()
		resp.PickupSlotID = &pickupID
		resp.DeliverySlotID = &deliveryID
	}
	return resp
}

func BookingToResponse(b *entity.Booking, items []*entity.BookingItem) BookingResponse {
	resp := BookingResponse{
		ID:               b.ID.String(),
		BookingNumber:    b.BookingNumber,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		TotalAmountCents: b.TotalAmountCents,
		UsedCredit:       b.UsedCredit,
		CreditDiscount:   b.CreditDiscountCents,
		Schedule:         scheduleToResponse(b.Schedule),
		PickupAddress:    snapshotToResponse(b.PickupAddress),
		DeliveryAddress:  snapshotToResponse(b.DeliveryAddress),
		CancelledAt:      b.CancelledAt,
		CreatedAt:        b.CreatedAt,
	}

	if b.UserID != nil {
		id := b.UserID.String()
		resp.UserID = &id
	}
	if b.Guest != nil {
		email := b.Guest.Email
		resp.GuestEmail = &email
	}

	for _, item := range items {
		resp.Items = append(resp.Items, BookingItemResponse{
			ID:                  item.ID.String(),
			ServiceID:           item.ServiceID.String(),
			Quantity:            item.Quantity,
			UnitPriceCents:      item.UnitPriceCents,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	return resp
}

func ModificationToResponse(m *entity.BookingModification) ModificationResponse {
	return ModificationResponse{
		Field:     m.Field,
		OldValue:  m.OldValue,
		NewValue:  m.NewValue,
		Actor:     m.Actor,
		CreatedAt: m.CreatedAt,
	}
}

func ReportToResponse(r *entity.BookingReport) ReportResponse {
	return ReportResponse{
		ID:          r.ID.String(),
		BookingID:   r.BookingID.String(),
		Type:        string(r.Type),
		Description: r.Description,
		PhotoURLs:   r.PhotoURLs,
		CreatedAt:   r.CreatedAt,
	}
}
