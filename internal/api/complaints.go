package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"society_ease/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// ComplaintRequest is the body for raising a complaint
type ComplaintRequest struct {
	Description string `json:"description" binding:"required"` // What is wrong
	Category    string `json:"category" binding:"required"`    // Plumbing, Electrical, ...
}

// CreateComplaintHandler raises a complaint on behalf of the caller
func CreateComplaintHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := mustSession(c)
		if !ok {
			return
		}
		var req ComplaintRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description and category are required"})
			return
		}
		complaint := domain.Complaint{
			UserID:      session.UserID, // Author always comes from the token
			Description: strings.TrimSpace(req.Description),
			Category:    strings.TrimSpace(req.Category),
			Status:      domain.ComplaintPending,
		}
		if complaint.Description == "" || complaint.Category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description and category are required"})
			return
		}
		if err := db.WithContext(c.Request.Context()).Create(&complaint).Error; err != nil {
			respondError(c, err, "Failed to submit complaint", logrus.Fields{"user_id": session.UserID})
			return
		}
		logrus.WithFields(logrus.Fields{"complaint_id": complaint.ID, "user_id": session.UserID}).Info("Complaint raised")
		c.JSON(http.StatusCreated, gin.H{"message": "Complaint submitted successfully!", "complaint": complaint})
	}
}

// ResidentComplaintsHandler lists the complaints raised by one resident, newest first
func ResidentComplaintsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		complaints := []domain.Complaint{}
		if err := db.WithContext(c.Request.Context()).
			Where("user_id = ?", id).
			Order("created_at DESC, id DESC").
			Find(&complaints).Error; err != nil {
			respondError(c, err, "Failed to fetch complaints", logrus.Fields{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, complaints)
	}
}

// AllComplaintsHandler lists every complaint with its author's name and flat
func AllComplaintsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows := []domain.ComplaintRow{}
		if err := db.WithContext(c.Request.Context()).
			Table("complaints AS c").
			Select("c.*, u.name AS name, u.flat_no AS flat_no").
			Joins("JOIN users AS u ON u.id = c.user_id").
			Order("c.created_at DESC, c.id DESC").
			Scan(&rows).Error; err != nil {
			respondError(c, err, "Failed to fetch complaints", nil)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// ResolveComplaintHandler moves a complaint to Resolved; resolving twice is a no-op
func ResolveComplaintHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		var complaint domain.Complaint
		if err := db.WithContext(ctx).First(&complaint, id).Error; err != nil {
			respondError(c, err, "Failed to update complaint", logrus.Fields{"complaint_id": id})
			return
		}
		if complaint.Status != domain.ComplaintResolved {
			if err := db.WithContext(ctx).Model(&complaint).Update("status", domain.ComplaintResolved).Error; err != nil {
				respondError(c, err, "Failed to update complaint", logrus.Fields{"complaint_id": id})
				return
			}
			logrus.WithField("complaint_id", id).Info("Complaint resolved")
		}
		c.JSON(http.StatusOK, gin.H{"message": "Complaint marked as Resolved", "status": domain.ComplaintResolved})
	}
}

// DeleteComplaintHandler removes a complaint
func DeleteComplaintHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(&domain.Complaint{}, id)
		if res.Error != nil {
			respondError(c, res.Error, "Failed to delete complaint", logrus.Fields{"complaint_id": id})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted"})
	}
}
