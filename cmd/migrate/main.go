package main

import (
	"society_ease/internal/config" // Custom import path (Config)
	"society_ease/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb := db.Migrate(cfg.DSN())

	// Seed the first admin when credentials are provided
	if cfg.AdminEmail == "" || cfg.AdminPass == "" {
		return
	}
	created, err := db.SeedAdmin(gdb, "Administrator", cfg.AdminEmail, cfg.AdminPass)
	if err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
	if created {
		logrus.WithField("email", cfg.AdminEmail).Info("Admin account created")
	}
}
