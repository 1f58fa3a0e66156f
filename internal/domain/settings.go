package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the singleton settings row
const SettingsID = 1

// SocietySettings Model (singleton row)
type SocietySettings struct {
	ID                uint            `gorm:"primaryKey" json:"id"`                                 // Always SettingsID
	SocietyName       string          `gorm:"size:150" json:"society_name"`                         // Display name
	MaintenanceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"maintenance_amount"` // Default monthly bill
	QRImage           string          `gorm:"size:255" json:"qr_image"`                             // Payment QR image URL
	UpdatedAt         time.Time       `json:"updated_at"`                                           // Last change
}

// TableName pins the table name to the singular form used by the frontend
func (SocietySettings) TableName() string {
	return "society_settings"
}
