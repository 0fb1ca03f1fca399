package types

import "time"

// Roles a user account can hold.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Email is the unique identity the user logs in with.
	// It is immutable after registration.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the system,
	// one of "admin" or "customer". New accounts default to "customer".
	Role string `json:"role" db:"role"`

	// PasswordHash stores the bcrypt digest of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
