package db

import (
	"errors" // Error inspection
	"time"   // Pool lifetimes

	"society_ease/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Money type
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels
)

// Models lists every table managed by the application, parents first
func Models() []any {
	return []any{
		&domain.User{},
		&domain.SocietySettings{},
		&domain.Payment{},
		&domain.Complaint{},
		&domain.Notice{},
		&domain.Expense{},
		&domain.Notification{},
	}
}

// Open connects to MySQL and configures the connection pool
func Open(dsn string, quiet bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{TranslateError: true} // Surface duplicate keys as gorm.ErrDuplicatedKey
	if quiet {
		gcfg.Logger = logger.Default.LogMode(logger.Silent) // Keep SQL out of production logs
	}
	gdb, err := gorm.Open(mysql.Open(dsn), gcfg) // Open a connection to the database
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB() // Underlying pool
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return gdb, nil
}

// AutoMigrate creates tables, missing foreign keys, constraints, columns and indexes,
// then makes sure the settings row exists
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return err
	}
	settings := domain.SocietySettings{
		ID:                domain.SettingsID,
		SocietyName:       "My Society",
		MaintenanceAmount: decimal.NewFromInt(1000),
	}
	// Insert the singleton only when missing
	return gdb.Where(domain.SocietySettings{ID: domain.SettingsID}).FirstOrCreate(&settings).Error
}

// SeedAdmin creates the first admin account unless the email is already taken
func SeedAdmin(gdb *gorm.DB, name, email, password string) (bool, error) {
	var existing domain.User
	err := gdb.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil // Already present
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := domain.User{Name: name, Email: email, Password: string(hash), Role: domain.RoleAdmin}
	if err := gdb.Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) *gorm.DB {
	gdb, err := Open(dsn, false)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := AutoMigrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
	return gdb
}
