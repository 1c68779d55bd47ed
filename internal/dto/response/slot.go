package response

import (
	"pressing-booking/internal/data/entity"
)

type SlotResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DelayValidationResponse mirrors the scheduler's structured verdict so callers
// can surface the exact shortfall.
type DelayValidationResponse struct {
	Valid         bool    `json:"valid"`
	RequiredHours float64 `json:"required_hours"`
	ActualHours   float64 `json:"actual_hours"`
	Reason        string  `json:"reason,omitempty"`
}

func SlotToResponse(s *entity.LogisticSlot) SlotResponse {
	return SlotResponse{
		ID:        s.ID.String(),
		Role:      string(s.Role),
		Date:      s.Date.Format("2006-01-02"),
		StartTime: s.StartTime.Format("15:04"),
		EndTime:   s.EndTime.Format("15:04"),
	}
}
