package repository

import (
	"context"
	"fmt"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.BookingReport) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingReport, error)
}

type reportRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReportRepository(db database.PgxIface, log *zap.Logger) ReportRepository {
	return &reportRepository{
		db:  db,
		log: log.With(zap.String("repository", "report")),
	}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.BookingReport) error {
	query := `
		INSERT INTO booking_reports (id, booking_id, reported_by, report_type,
		                             description, photo_urls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.BookingID,
		report.ReportedBy,
		report.Type,
		report.Description,
		report.PhotoURLs,
		report.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking report",
			zap.Error(err),
			zap.String("booking_id", report.BookingID.String()),
		)
		return fmt.Errorf("create report for booking %s: %w", report.BookingID.String(), err)
	}

	return nil
}

func (r *reportRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingReport, error) {
	query := `
		SELECT id, booking_id, reported_by, report_type, description, photo_urls, created_at
		FROM booking_reports
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking reports",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find reports for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var reports []*entity.BookingReport
	for rows.Next() {
		var report entity.BookingReport
		err := rows.Scan(
			&report.ID,
			&report.BookingID,
			&report.ReportedBy,
			&report.Type,
			&report.Description,
			&report.PhotoURLs,
			&report.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan report row", zap.Error(err))
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, &report)
	}

	return reports, nil
}
