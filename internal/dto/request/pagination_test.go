package request

import "testing"

func TestPaginatedRequestLimit(t *testing.T) {
	if got := (PaginatedRequest{PerPage: 25}).Limit(); got != 25 {
		t.Errorf("Limit() = %d, want the requested 25", got)
	}
	if got := (PaginatedRequest{}).Limit(); got != defaultPerPage {
		t.Errorf("Limit() = %d, want the default %d for a missing per_page", got, defaultPerPage)
	}
	if got := (PaginatedRequest{PerPage: 5000}).Limit(); got != maxPerPage {
		t.Errorf("Limit() = %d, want the %d cap", got, maxPerPage)
	}
}
