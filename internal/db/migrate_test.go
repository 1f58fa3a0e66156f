package db_test

import (
	"testing"

	"society_ease/internal/db"
	"society_ease/internal/domain"
	"society_ease/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAutoMigrateSeedsSettings(t *testing.T) {
	gdb := testutil.NewDB(t)
	require.NoError(t, db.AutoMigrate(gdb), "migration is repeatable")

	var rows []domain.SocietySettings
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.EqualValues(t, domain.SettingsID, rows[0].ID)
	assert.True(t, rows[0].MaintenanceAmount.Equal(decimal.NewFromInt(1000)))
}

func TestSeedAdmin(t *testing.T) {
	gdb := testutil.NewDB(t)

	created, err := db.SeedAdmin(gdb, "Administrator", "admin@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = db.SeedAdmin(gdb, "Administrator", "admin@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created, "existing email is left alone")

	var admin domain.User
	require.NoError(t, gdb.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("secret1")))
}
