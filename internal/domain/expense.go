package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense Model
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	Title       string          `gorm:"size:200;not null" json:"title"`            // What was paid for
	Category    string          `gorm:"size:50;not null" json:"category"`          // Repairs, Salary, ...
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"` // Amount spent
	Description string          `gorm:"type:text" json:"description"`              // Free text
	SpentDate   time.Time       `gorm:"type:date;index" json:"spent_date"`         // Day of spending
	CreatedAt   time.Time       `json:"created_at"`                                // Recorded at
}
