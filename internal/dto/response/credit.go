package response

type CreditEligibilityResponse struct {
	CanUse           bool  `json:"can_use"`
	CreditsRemaining int   `json:"credits_remaining"`
	TotalAmountCents int64 `json:"total_amount_cents"`
	DiscountCents    int64 `json:"discount_cents"`
	SurplusCents     int64 `json:"surplus_cents"`
}

type CreditBalanceResponse struct {
	CreditsTotal     int    `json:"credits_total"`
	CreditsRemaining int    `json:"credits_remaining"`
	WeekStartDate    string `json:"week_start_date"`
	ResetAt          string `json:"reset_at"`
	TotalSavedCents  int64  `json:"total_saved_cents"`
}
