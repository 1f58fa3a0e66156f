package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses
const (
	StatusPending  = "Pending"  // Billed or submitted, not yet confirmed
	StatusVerified = "Verified" // Confirmed by an admin
)

// Derived payment states
const (
	StateBilled    = "billed"    // Awaiting resident action
	StateSubmitted = "submitted" // Awaiting admin verification
	StateVerified  = "verified"  // Settled
)

// Payment Model: one maintenance bill per resident per billing period,
// mutated in place as it moves through its lifecycle.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                                                          // Primary key
	ResidentID    uint            `gorm:"not null;uniqueIndex:idx_payment_period,priority:1" json:"resident_id"`         // Owning user
	Resident      *User           `gorm:"foreignKey:ResidentID;constraint:OnDelete:CASCADE" json:"-"`                    // Owning user row
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`                                     // Amount due
	Status        string          `gorm:"size:20;not null;default:Pending;index" json:"status"`                          // Pending or Verified
	Method        string          `gorm:"size:30" json:"method"`                                                         // UPI, Cash, ...
	MonthName     string          `gorm:"size:20;not null;uniqueIndex:idx_payment_period,priority:2" json:"month_name"` // Billing month, e.g. March
	Year          int             `gorm:"not null;uniqueIndex:idx_payment_period,priority:3" json:"year"`                // Billing year
	TransactionID *string         `gorm:"size:64" json:"transaction_id"`                                                 // UTR supplied by the resident
	PaymentDate   *time.Time      `json:"payment_date"`                                                                  // When the UTR was submitted
	CreatedAt     time.Time       `json:"created_at"`                                                                    // Billing time
	UpdatedAt     time.Time       `json:"updated_at"`                                                                    // Last transition
}

// State derives the lifecycle state from status and transaction id
func (p *Payment) State() string {
	switch {
	case p.Status == StatusVerified:
		return StateVerified
	case p.TransactionID != nil:
		return StateSubmitted
	default:
		return StateBilled
	}
}

// PaymentRow is a payment joined with its resident, as listed to admins
type PaymentRow struct {
	Payment
	UserName string `json:"user_name"` // Resident name
	FlatNo   string `json:"flat_no"`   // Resident flat
}
