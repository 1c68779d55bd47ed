package request

type CheckCreditRequest struct {
	WeightKg float64 `json:"weight_kg" validate:"required,gt=0,lte=200"`
}
