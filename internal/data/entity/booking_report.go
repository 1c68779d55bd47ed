package entity

import (
	"github.com/google/uuid"
)

type ReportType string

const (
	ReportTypeDamage       ReportType = "damage"
	ReportTypeMissingItem  ReportType = "missing_item"
	ReportTypeLateDelivery ReportType = "late_delivery"
	ReportTypeQuality      ReportType = "quality"
	ReportTypeOther        ReportType = "other"
)

// BookingReport is a customer problem report keyed to a booking. Reports never
// mutate the booking status.
type BookingReport struct {
	BaseSimple
	BookingID   uuid.UUID  `db:"booking_id"`
	ReportedBy  string     `db:"reported_by"`
	Type        ReportType `db:"report_type"`
	Description string     `db:"description"`
	PhotoURLs   []string   `db:"photo_urls"`
}
