package api

import (
	"context"  // Request scoped context
	"errors"   // Error inspection
	"html"     // Escaping user text in email
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Token expiry

	"society_ease/internal/domain"     // Importing domain models
	"society_ease/internal/middleware" // Session access
	"society_ease/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

const resetTokenTTL = time.Hour // Password reset links stay valid for one hour

// RegisterRequest is the body for registration and admin-created residents
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`           // Display name
	Email    string `json:"email" binding:"required,email"`    // Login email
	Password string `json:"password" binding:"required,min=6"` // Plain password
	FlatNo   string `json:"flat_no"`                           // Flat number
	Phone    string `json:"phone"`                             // Contact number
	Role     string `json:"role"`                              // resident (default) or admin
}

// LoginRequest is the body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// ForgotPasswordRequest is the body for requesting a reset link
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest is the body for setting a new password
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// UserSummary is the public part of a user returned at login
type UserSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	FlatNo string `json:"flat_no"`
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Message string      `json:"message"` // Human readable message
	Token   string      `json:"token"`   // JWT token
	User    UserSummary `json:"user"`    // Logged in user
}

var errEmailTaken = errors.New("email already exists")

// createUser validates the role, hashes the password and inserts the user
func createUser(ctx context.Context, db *gorm.DB, req RegisterRequest, role string) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := domain.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
		Role:     role,
		FlatNo:   strings.TrimSpace(req.FlatNo),
		Phone:    strings.TrimSpace(req.Phone),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent registration can pass the count and lose on the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// isAdmin checks the stored role of the session user
func isAdmin(ctx context.Context, db *gorm.DB, s middleware.Session) bool {
	var user domain.User
	if err := db.WithContext(ctx).First(&user, s.UserID).Error; err != nil {
		return false
	}
	return user.IsAdmin()
}

// RegisterHandler creates a resident, or an admin when called by an admin
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, a valid email and a password of at least 6 characters are required"})
			return
		}
		role := strings.ToLower(strings.TrimSpace(req.Role))
		switch role {
		case "", domain.RoleResident:
			role = domain.RoleResident
		case domain.RoleAdmin:
			// Only an existing admin may create another admin
			session, ok := middleware.SessionFrom(c)
			if !ok || !isAdmin(c.Request.Context(), db, session) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Only an admin can create admin accounts"})
				return
			}
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be resident or admin"})
			return
		}
		user, err := createUser(c.Request.Context(), db, req, role)
		if errors.Is(err, errEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
			return
		}
		if err != nil {
			respondError(c, err, "Failed to register user", logrus.Fields{"email": req.Email})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,   // New user ID
			"role":    user.Role, // Assigned role
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully as " + role + "!", "id": user.ID})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).
			Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
			First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret, ttl)
		if err != nil {
			respondError(c, err, "Failed to generate token", logrus.Fields{"user_id": user.ID})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{
			Message: "Login successful!",
			Token:   token,
			User:    UserSummary{ID: user.ID, Name: user.Name, Role: user.Role, FlatNo: user.FlatNo},
		})
	}
}

// ForgotPasswordHandler stores a one hour reset token and emails the reset link
func ForgotPasswordHandler(db *gorm.DB, mailer utils.Mailer, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}
		ctx := c.Request.Context()
		var user domain.User
		if err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Email not found."})
				return
			}
			respondError(c, err, "Failed to look up email", nil)
			return
		}
		token, err := utils.NewResetToken()
		if err != nil {
			respondError(c, err, "Failed to generate reset link", logrus.Fields{"user_id": user.ID})
			return
		}
		expires := time.Now().Add(resetTokenTTL)
		if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
			"reset_token":         token,
			"reset_token_expires": expires,
		}).Error; err != nil {
			respondError(c, err, "Failed to generate reset link", logrus.Fields{"user_id": user.ID})
			return
		}
		link := strings.TrimRight(frontendURL, "/") + "/reset-password/" + token
		body := `<p>Hello ` + html.EscapeString(user.Name) + `,</p><p>Click <a href="` + link + `">here</a> to reset your password. Valid for 1 hour.</p>`
		if err := mailer.Send(user.Email, "SocietyEase - Password Reset", body); err != nil {
			respondError(c, err, "Failed to send reset email", logrus.Fields{"user_id": user.ID})
			return
		}
		logrus.WithField("user_id", user.ID).Info("Password reset link sent")
		c.JSON(http.StatusOK, gin.H{"message": "Reset link sent to your email!"})
	}
}

// ResetPasswordHandler sets a new password for a valid, unexpired reset token
func ResetPasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password of at least 6 characters is required"})
			return
		}
		ctx := c.Request.Context()
		var user domain.User
		err := db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err, "Error updating password", nil)
			return
		}
		if err != nil || token == "" || user.ResetTokenExpires == nil || time.Now().After(*user.ResetTokenExpires) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token."})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err, "Error updating password", logrus.Fields{"user_id": user.ID})
			return
		}
		if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
			"password":            string(hash),
			"reset_token":         nil,
			"reset_token_expires": nil,
		}).Error; err != nil {
			respondError(c, err, "Error updating password", logrus.Fields{"user_id": user.ID})
			return
		}
		logrus.WithField("user_id", user.ID).Info("Password reset")
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully!"})
	}
}

// MeHandler returns the profile of the caller, or of :id when the route has one
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := mustSession(c)
		if !ok {
			return
		}
		id := session.UserID
		if c.Param("id") != "" {
			if id, ok = paramID(c, "id"); !ok {
				return
			}
		}
		var user domain.User
		if err := db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			respondError(c, err, "Database error", logrus.Fields{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
