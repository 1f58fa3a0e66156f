package domain

import "time"

// Complaint statuses
const (
	ComplaintPending  = "Pending"
	ComplaintResolved = "Resolved"
)

// Complaint Model
type Complaint struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                                  // Primary key
	UserID      uint      `gorm:"not null;index" json:"user_id"`                         // Raised by
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`                  // Raised by row
	Description string    `gorm:"type:text;not null" json:"description"`                 // Complaint text
	Category    string    `gorm:"size:50;not null" json:"category"`                      // Plumbing, Electrical, ...
	Status      string    `gorm:"size:20;not null;default:Pending;index" json:"status"`  // Pending or Resolved
	CreatedAt   time.Time `json:"created_at"`                                            // Raised at
}

// ComplaintRow is a complaint joined with its author
type ComplaintRow struct {
	Complaint
	Name   string `json:"name"`    // Author name
	FlatNo string `json:"flat_no"` // Author flat
}
