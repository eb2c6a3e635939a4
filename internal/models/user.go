package models

import "time"

// Roles a user account can hold. Authorization decisions are made
// against the role stored on the account, never against a particular
// email address.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a registered account of the store.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email,max=255"`
	Password string `gorm:"type:varchar(255)" validate:"required,min=6,max=100"` // bcrypt hash once registered; zeroed before any response
	Role     string `json:"role" gorm:"type:varchar(20)"`

	// Password reset state. A token is single-use and only valid until
	// ResetTokenExpires.
	ResetToken        string     `json:"-" gorm:"type:varchar(36);index"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
