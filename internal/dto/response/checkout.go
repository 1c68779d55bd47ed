package response

// CheckoutResponse is the result of finalizing a guest checkout. AlreadyProcessed
// marks the idempotent no-op path where an earlier invocation created the booking.
type CheckoutResponse struct {
	Booking          BookingResponse `json:"booking"`
	AccountCreated   bool            `json:"account_created"`
	AlreadyProcessed bool            `json:"already_processed"`
}
