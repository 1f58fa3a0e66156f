package middleware

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"society_ease/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// AdminOnlyMiddleware checks the user's role from the database on each request,
// so a demoted or deleted admin loses access before the token expires
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, exists := SessionFrom(c) // Get session from context
		// Check if session exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).First(&user, session.UserID).Error; err != nil {
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// Check if user role is admin
		if !user.IsAdmin() {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		session.Role = user.Role
		SetSession(c, session)
		// If admin, proceed to the next handler
		c.Next()
	}
}

// SelfOrAdminMiddleware allows the request when the :param user id is the caller's,
// or the caller is still an admin according to the database
func SelfOrAdminMiddleware(db *gorm.DB, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, exists := SessionFrom(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		if session.UserID == uint(id) {
			c.Next()
			return
		}
		// The token role only says who the caller was at login
		if !session.IsAdmin() || !storedAdmin(c, db, session.UserID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You can only access your own records"})
			return
		}
		c.Next()
	}
}

func storedAdmin(c *gin.Context, db *gorm.DB, userID uint) bool {
	var user domain.User
	if err := db.WithContext(c.Request.Context()).Select("id", "role").First(&user, userID).Error; err != nil {
		return false
	}
	return user.IsAdmin()
}
