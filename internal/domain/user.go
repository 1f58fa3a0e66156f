package domain

import "time"

// Roles
const (
	RoleAdmin    = "admin"    // Society administrator
	RoleResident = "resident" // Flat owner or tenant
)

// User Model
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`                              // Primary key
	Name              string     `gorm:"size:100;not null" json:"name"`                     // Display name
	Email             string     `gorm:"size:150;uniqueIndex;not null" json:"email"`        // Login identity
	Password          string     `gorm:"not null" json:"-"`                                 // Hashed password
	Role              string     `gorm:"size:20;index;default:resident" json:"role"`        // Role: admin or resident
	FlatNo            string     `gorm:"size:20" json:"flat_no"`                            // Flat number
	Phone             string     `gorm:"size:20" json:"phone"`                              // Contact number
	DeleteRequest     bool       `gorm:"not null;default:false" json:"delete_request"`      // Resident asked for account removal
	ResetToken        *string    `gorm:"size:64;index" json:"-"`                            // Password reset token
	ResetTokenExpires *time.Time `json:"-"`                                                 // Reset token expiry
	CreatedAt         time.Time  `json:"created_at"`                                        // Creation time
	UpdatedAt         time.Time  `json:"updated_at"`                                        // Last update
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
