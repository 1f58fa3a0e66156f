package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"society_ease/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

var (
	errResidentNotFound = errors.New("resident not found")
	errLastAdmin        = errors.New("cannot delete the only admin account")
)

// DirectoryEntry is a user as listed in the admin directory
type DirectoryEntry struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	FlatNo        string `json:"flat_no"`
	Phone         string `json:"phone"`
	DeleteRequest bool   `json:"delete_request"`
}

// ListResidentsHandler returns the resident directory ordered by flat
func ListResidentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows := []DirectoryEntry{}
		if err := db.WithContext(c.Request.Context()).Model(&domain.User{}).
			Where("role = ?", domain.RoleResident).
			Order("flat_no ASC, name ASC").
			Find(&rows).Error; err != nil {
			respondError(c, err, "Failed to fetch residents", nil)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// CreateResidentHandler lets an admin add a resident account
func CreateResidentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, a valid email and a password of at least 6 characters are required"})
			return
		}
		user, err := createUser(c.Request.Context(), db, req, domain.RoleResident)
		if errors.Is(err, errEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
			return
		}
		if err != nil {
			respondError(c, err, "Failed to add resident", logrus.Fields{"email": req.Email})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "flat_no": user.FlatNo}).Info("Resident added")
		c.JSON(http.StatusCreated, user)
	}
}

// DeleteResidentHandler removes a resident and everything they own in one transaction
func DeleteResidentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		// Atomic cascade: children first, then the user row
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("sender_id = ?", id).Delete(&domain.Notification{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Where("user_id = ?", id).Delete(&domain.Complaint{}).Error; err != nil {
				return err
			}
			if err := tx.Where("resident_id = ?", id).Delete(&domain.Payment{}).Error; err != nil {
				return err
			}
			res := tx.Where("id = ? AND role = ?", id, domain.RoleResident).Delete(&domain.User{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errResidentNotFound // Rolls back the child deletes
			}
			return nil // Commit transaction
		})
		if errors.Is(err, errResidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
		if err != nil {
			respondError(c, err, "Failed to delete resident", logrus.Fields{"user_id": id})
			return
		}
		logrus.WithField("user_id", id).Info("Resident deleted with related data")
		c.JSON(http.StatusOK, gin.H{"message": "Resident and all related data cleared!"})
	}
}

// RequestDeleteHandler flags the resident's account for removal and notifies the admins
func RequestDeleteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&domain.User{}).Where("id = ?", id).Update("delete_request", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return tx.Create(&domain.Notification{
				SenderID: id,
				Message:  "Resident requested account deletion",
				Type:     domain.NotificationDeleteRequest,
			}).Error
		})
		if err != nil {
			respondError(c, err, "Failed to send request", logrus.Fields{"user_id": id})
			return
		}
		logrus.WithField("user_id", id).Info("Account deletion requested")
		c.JSON(http.StatusOK, gin.H{"message": "Deletion request sent to Admin!"})
	}
}

// DeleteRequestsCountHandler counts residents waiting for account removal
func DeleteRequestsCountHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var count int64
		if err := db.WithContext(c.Request.Context()).Model(&domain.User{}).
			Where("delete_request = ?", true).Count(&count).Error; err != nil {
			respondError(c, err, "Failed to count delete requests", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// ListAdminsHandler lists admin accounts
func ListAdminsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows := []DirectoryEntry{}
		if err := db.WithContext(c.Request.Context()).Model(&domain.User{}).
			Where("role = ?", domain.RoleAdmin).
			Order("id").
			Find(&rows).Error; err != nil {
			respondError(c, err, "Failed to fetch admins", nil)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// RemoveAdminHandler deletes another admin, never the last one or the caller
func RemoveAdminHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := mustSession(c)
		if !ok {
			return
		}
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if id == session.UserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot remove your own account"})
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var admins int64
			if err := tx.Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return errLastAdmin
			}
			res := tx.Where("id = ? AND role = ?", id, domain.RoleAdmin).Delete(&domain.User{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
		switch {
		case errors.Is(err, errLastAdmin):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete the only admin account!"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		case err != nil:
			respondError(c, err, "Failed to remove admin", logrus.Fields{"admin_id": id})
		default:
			logrus.WithFields(logrus.Fields{"admin_id": id, "removed_by": session.UserID}).Info("Admin removed")
			c.JSON(http.StatusOK, gin.H{"message": "Admin removed successfully!"})
		}
	}
}
