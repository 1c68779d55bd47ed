package request

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// PaginatedRequest carries the page window for list endpoints. Values come
// straight from query parameters, so Limit normalizes out-of-range input
// instead of failing the request.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

func (p PaginatedRequest) Limit() int {
	switch {
	case p.PerPage < 1:
		return defaultPerPage
	case p.PerPage > maxPerPage:
		return maxPerPage
	default:
		return p.PerPage
	}
}
