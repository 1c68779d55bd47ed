package entity

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	FirstName    string   `db:"first_name"`
	LastName     string   `db:"last_name"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Phone        *string  `db:"phone"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`

	// Set for auto-created guest accounts until the user picks a password.
	PasswordResetToken   *string    `db:"password_reset_token"`
	PasswordResetExpires *time.Time `db:"password_reset_expires"`
}
