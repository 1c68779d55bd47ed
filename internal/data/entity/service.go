package entity

type ServiceType string

const (
	ServiceTypeExpress ServiceType = "express"
	ServiceTypeClassic ServiceType = "classic"
)

func (t ServiceType) IsValid() bool {
	return t == ServiceTypeExpress || t == ServiceTypeClassic
}

// MinDelayHours is the minimum processing gap between pickup end and delivery
// start for the service class.
func (t ServiceType) MinDelayHours() float64 {
	if t == ServiceTypeExpress {
		return 24
	}
	return 72
}

// Service is a catalog row for a cleaning service.
type Service struct {
	Base
	Name           string      `db:"name"`
	Type           ServiceType `db:"service_type"`
	UnitPriceCents int64       `db:"unit_price_cents"`
	IsActive       bool        `db:"is_active"`
}
