package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"society_ease/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// JWTAuthMiddleware validates JWT tokens and stores the caller's Session
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFromHeader(c, secret)
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing, invalid or expired token"})
			return
		}
		SetSession(c, session)
		c.Next() // Proceed to the next handler
	}
}

// OptionalAuthMiddleware stores a Session when a valid token is present and never aborts
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session, ok := sessionFromHeader(c, secret); ok {
			SetSession(c, session)
		}
		c.Next()
	}
}

func sessionFromHeader(c *gin.Context, secret string) (Session, bool) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	// Check if the Authorization header is present and properly formatted
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return Session{}, false
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
	claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
	if err != nil || claims.UserID == 0 {
		return Session{}, false
	}
	return Session{UserID: claims.UserID, Role: claims.Role}, true
}
