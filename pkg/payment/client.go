package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client retrieves checkout sessions from the external payment provider. The
// provider is the source of truth for the paid amount and carries the guest
// checkout metadata captured at payment-creation time.
type Client interface {
	RetrieveSession(ctx context.Context, ref string) (*Session, error)
}

type Session struct {
	ID              string   `json:"id"`
	PaymentIntentID string   `json:"payment_intent_id"`
	Status          string   `json:"status"`
	AmountCents     int64    `json:"amount_total"`
	Currency        string   `json:"currency"`
	CustomerEmail   string   `json:"customer_email"`
	Metadata        Metadata `json:"metadata"`
}

// Paid reports whether the session settled successfully.
func (s *Session) Paid() bool {
	return s.Status == "complete" || s.Status == "paid"
}

// Metadata is the structured checkout payload attached to the session when the
// payment was created. Required fields are validated at the orchestrator
// boundary, not inspected ad hoc downstream.
type Metadata struct {
	Guest    GuestMeta    `json:"guest"`
	Items    []ItemMeta   `json:"items"`
	Pickup   AddressMeta  `json:"pickup_address"`
	Delivery AddressMeta  `json:"delivery_address"`
	Schedule ScheduleMeta `json:"schedule"`
	// Declared garment weight, used for subscription credit eligibility.
	WeightKg float64 `json:"weight_kg,omitempty"`
}

type GuestMeta struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ItemMeta struct {
	ServiceID           string  `json:"service_id"`
	Quantity            int     `json:"quantity"`
	UnitPriceCents      int64   `json:"unit_price_cents"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

type AddressMeta struct {
	Street             string  `json:"street"`
	City               string  `json:"city"`
	PostalCode         string  `json:"postal_code"`
	Building           *string `json:"building,omitempty"`
	AccessInstructions *string `json:"access_instructions,omitempty"`
}

type ScheduleMeta struct {
	PickupSlotID     string `json:"pickup_slot_id,omitempty"`
	DeliverySlotID   string `json:"delivery_slot_id,omitempty"`
	PickupDate       string `json:"pickup_date,omitempty"`
	PickupTimeSlot   string `json:"pickup_time_slot,omitempty"`
	DeliveryDate     string `json:"delivery_date,omitempty"`
	DeliveryTimeSlot string `json:"delivery_time_slot,omitempty"`
}

type httpClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
	log       *zap.Logger
}

func NewClient(baseURL, secretKey string, log *zap.Logger) Client {
	return &httpClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
		log:       log.With(zap.String("client", "payment")),
	}
}

func (c *httpClient) RetrieveSession(ctx context.Context, ref string) (*Session, error) {
	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", c.baseURL, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("Failed to retrieve checkout session",
			zap.Error(err),
			zap.String("payment_ref", ref),
		)
		return nil, fmt.Errorf("retrieve session %s: %w", ref, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read session response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("Payment provider returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("payment_ref", ref),
		)
		return nil, fmt.Errorf("payment provider status %d for session %s", resp.StatusCode, ref)
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", ref, err)
	}

	return &session, nil
}
