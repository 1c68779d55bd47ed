package repository

import (
	"context"
	"fmt"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AddressRepository interface {
	Create(ctx context.Context, address *entity.Address) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Address, error)
	FindDefaultByUserID(ctx context.Context, userID uuid.UUID) (*entity.Address, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type addressRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAddressRepository(db database.PgxIface, log *zap.Logger) AddressRepository {
	return &addressRepository{
		db:  db,
		log: log.With(zap.String("repository", "address")),
	}
}

const addressColumns = `id, user_id, street, city, postal_code, building,
	access_instructions, is_default, created_at, updated_at`

func (r *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	query := `
		INSERT INTO user_addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		address.ID,
		address.UserID,
		address.Street,
		address.City,
		address.PostalCode,
		address.Building,
		address.AccessInstructions,
		address.IsDefault,
		address.CreatedAt,
		address.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create address",
			zap.Error(err),
			zap.String("user_id", address.UserID.String()),
		)
		return fmt.Errorf("create address for user %s: %w", address.UserID.String(), err)
	}

	return nil
}

func scanAddress(row rowScanner) (*entity.Address, error) {
	var a entity.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Street,
		&a.City,
		&a.PostalCode,
		&a.Building,
		&a.AccessInstructions,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM user_addresses WHERE id = $1 AND deleted_at IS NULL`

	address, err := scanAddress(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find address by ID",
			zap.Error(err),
			zap.String("address_id", id.String()),
		)
		return nil, fmt.Errorf("find address by ID %s: %w", id.String(), err)
	}

	return address, nil
}

func (r *addressRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM user_addresses
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find addresses by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find addresses for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var addresses []*entity.Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			r.log.Error("Failed to scan address row", zap.Error(err))
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, address)
	}

	return addresses, nil
}

func (r *addressRepository) FindDefaultByUserID(ctx context.Context, userID uuid.UUID) (*entity.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM user_addresses
		WHERE user_id = $1 AND is_default = TRUE AND deleted_at IS NULL
		LIMIT 1
	`

	address, err := scanAddress(r.db.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find default address",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find default address for user %s: %w", userID.String(), err)
	}

	return address, nil
}

func (r *addressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Soft delete; the usecase guards against deleting an address still
	// referenced by active bookings.
	query := `UPDATE user_addresses SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete address",
			zap.Error(err),
			zap.String("address_id", id.String()),
		)
		return fmt.Errorf("delete address %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("address %s not found", id.String())
	}

	return nil
}
