package models

import "time"

// Role is an account's access level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// IsStaff reports whether r may use the back office.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// Account is a customer or staff member, identified by phone number.
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Phone        string    `json:"phone" gorm:"uniqueIndex;type:varchar(20);not null"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Email        string    `json:"email,omitempty"`
	BusinessName string    `json:"business_name,omitempty"`
	BusinessType string    `json:"business_type,omitempty"`
	GSTNumber    string    `json:"gst_number,omitempty"`
	Role         Role      `json:"role" gorm:"type:varchar(10);default:user"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SavedAddress is an address kept in a customer's address book. At most one
// per account is the default.
type SavedAddress struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AccountID string `json:"-" gorm:"index;type:varchar(36);not null"`
	Address   `gorm:"embedded"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
