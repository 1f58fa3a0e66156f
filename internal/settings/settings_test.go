package settings

import (
	"context"
	"testing"

	"society_ease/internal/domain"
	"society_ease/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecreatesMissingRow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	require.NoError(t, db.Delete(&domain.SocietySettings{}, domain.SettingsID).Error)

	s, err := Load(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, domain.SettingsID, s.ID)
	assert.Equal(t, DefaultName, s.SocietyName)
	assert.True(t, s.MaintenanceAmount.Equal(DefaultAmount))
}

func TestUpdateAndQRImage(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	s, err := Update(ctx, db, "Green Park", decimal.RequireFromString("1500.50"))
	require.NoError(t, err)
	assert.Equal(t, "Green Park", s.SocietyName)

	require.NoError(t, SetQRImage(ctx, db, "/uploads/qr.png"))

	reloaded, err := Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "Green Park", reloaded.SocietyName)
	assert.True(t, reloaded.MaintenanceAmount.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, "/uploads/qr.png", reloaded.QRImage)

	var count int64
	require.NoError(t, db.Model(&domain.SocietySettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "settings stay a single row")
}
