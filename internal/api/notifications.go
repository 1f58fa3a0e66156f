package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"society_ease/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

const notificationsShown = 10

// NotificationRequest is a resident's message to the admins
type NotificationRequest struct {
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"` // general unless stated
}

// NotificationRow is a notification joined with its sender
type NotificationRow struct {
	domain.Notification
	Name   string `json:"name"`
	FlatNo string `json:"flat_no"`
}

// CreateNotificationHandler records a message from the caller
func CreateNotificationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := mustSession(c)
		if !ok {
			return
		}
		var req NotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}
		kind := strings.TrimSpace(req.Type)
		if kind == "" {
			kind = domain.NotificationGeneral
		}
		n := domain.Notification{SenderID: session.UserID, Message: strings.TrimSpace(req.Message), Type: kind}
		if err := db.WithContext(c.Request.Context()).Create(&n).Error; err != nil {
			respondError(c, err, "Failed to send notification", nil)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Notification sent", "notification": n})
	}
}

// ListNotificationsHandler returns the latest notifications for the admin panel
func ListNotificationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows := []NotificationRow{}
		if err := db.WithContext(c.Request.Context()).
			Table("notifications AS n").
			Select("n.*, u.name AS name, u.flat_no AS flat_no").
			Joins("LEFT JOIN users AS u ON u.id = n.sender_id").
			Order("n.created_at DESC, n.id DESC").
			Limit(notificationsShown).
			Scan(&rows).Error; err != nil {
			respondError(c, err, "Failed to fetch notifications", nil)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
