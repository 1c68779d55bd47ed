package request

// GuestCheckoutRequest finalizes a guest booking after payment. The contact,
// items, addresses and schedule travel in the payment session metadata
// captured at payment-creation time; only the reference crosses here.
type GuestCheckoutRequest struct {
	PaymentReference string `json:"payment_reference" validate:"required,min=8"`
	// UseAccountAddresses opts an existing account into its stored default
	// addresses instead of the guest-entered snapshot.
	UseAccountAddresses bool `json:"use_account_addresses,omitempty"`
}
