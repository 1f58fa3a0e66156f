package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Cache TTL

	"society_ease/internal/domain"   // Importing domain models
	"society_ease/internal/settings" // Settings row access
	"society_ease/internal/utils"    // Cache and image helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Money type
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

const (
	settingsCacheTTL = 10 * time.Minute
	maxQRUpload      = 5 << 20 // 5 MiB
	qrMaxSide        = 512     // QR images are scaled to fit 512x512
)

// SettingsRequest is the body for updating society settings
type SettingsRequest struct {
	SocietyName       string          `json:"society_name" binding:"required"`
	MaintenanceAmount decimal.Decimal `json:"maintenance_amount"`
}

// GetSettingsHandler returns the society settings, served from Redis when cached
func GetSettingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached domain.SocietySettings
		if found, err := utils.GetCache(ctx, rdb, utils.CacheKeySettings, &cached); err != nil {
			logrus.WithField("error", err.Error()).Warn("Settings cache read failed")
		} else if found {
			c.JSON(http.StatusOK, cached)
			return
		}
		s, err := settings.Load(ctx, db)
		if err != nil {
			respondError(c, err, "Failed to fetch settings", nil)
			return
		}
		if err := utils.SetCache(ctx, rdb, utils.CacheKeySettings, s, settingsCacheTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Settings cache write failed")
		}
		c.JSON(http.StatusOK, s)
	}
}

// UpdateSettingsHandler changes the society name and default maintenance amount
func UpdateSettingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SocietyName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Society name is required"})
			return
		}
		if !req.MaintenanceAmount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Maintenance amount must be greater than zero"})
			return
		}
		s, err := settings.Update(c.Request.Context(), db, strings.TrimSpace(req.SocietyName), req.MaintenanceAmount)
		if err != nil {
			respondError(c, err, "Failed to update settings", nil)
			return
		}
		invalidate(c, rdb, utils.CacheKeySettings)
		logrus.WithField("maintenance_amount", s.MaintenanceAmount.String()).Info("Society settings updated")
		c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully!", "settings": s})
	}
}

// UploadQRHandler stores a resized payment QR image and points the settings at it
func UploadQRHandler(db *gorm.DB, rdb *redis.Client, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxQRUpload+1<<10)
		header, err := c.FormFile("qrCode")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		if header.Size > maxQRUpload {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large, maximum is 5 MB"})
			return
		}
		f, err := header.Open()
		if err != nil {
			respondError(c, err, "Failed to read upload", nil)
			return
		}
		defer f.Close()

		data, err := utils.NormalizeImage(f, qrMaxSide)
		if errors.Is(err, utils.ErrUnsupportedImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only jpg, jpeg, png and webp images are allowed"})
			return
		}
		if errors.Is(err, utils.ErrImageTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image is too large, maximum is 8000 pixels per side"})
			return
		}
		if err != nil {
			respondError(c, err, "Failed to process image", nil)
			return
		}
		name, err := utils.SaveUpload(uploadDir, data, ".png")
		if err != nil {
			respondError(c, err, "Failed to store image", nil)
			return
		}
		url := "/uploads/" + name
		if err := settings.SetQRImage(c.Request.Context(), db, url); err != nil {
			respondError(c, err, "Failed to update settings", nil)
			return
		}
		invalidate(c, rdb, utils.CacheKeySettings)
		logrus.WithField("qr_image", url).Info("Payment QR updated")
		c.JSON(http.StatusOK, gin.H{"message": "QR uploaded successfully!", "qr_image": url})
	}
}
