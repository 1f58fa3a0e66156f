// Package settings manages the singleton society settings row.
package settings

import (
	"context"
	"errors"

	"society_ease/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Defaults used when the row has never been written
const DefaultName = "My Society"

// DefaultAmount is the monthly maintenance used before an admin sets one
var DefaultAmount = decimal.NewFromInt(1000)

// Load returns the settings row, creating it with defaults when missing
func Load(ctx context.Context, db *gorm.DB) (*domain.SocietySettings, error) {
	var s domain.SocietySettings
	err := db.WithContext(ctx).First(&s, domain.SettingsID).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s = domain.SocietySettings{
		ID:                domain.SettingsID,
		SocietyName:       DefaultName,
		MaintenanceAmount: DefaultAmount,
	}
	if err := db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Update changes the society name and maintenance amount
func Update(ctx context.Context, db *gorm.DB, name string, amount decimal.Decimal) (*domain.SocietySettings, error) {
	s, err := Load(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(s).Updates(map[string]any{
		"society_name":       name,
		"maintenance_amount": amount,
	}).Error; err != nil {
		return nil, err
	}
	s.SocietyName = name
	s.MaintenanceAmount = amount
	return s, nil
}

// SetQRImage stores the public URL of the payment QR code
func SetQRImage(ctx context.Context, db *gorm.DB, url string) error {
	if _, err := Load(ctx, db); err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&domain.SocietySettings{ID: domain.SettingsID}).
		Update("qr_image", url).Error
}
