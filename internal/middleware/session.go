package middleware

import (
	"society_ease/internal/domain" // Role constants

	"github.com/gin-gonic/gin" // Gin web framework
)

const sessionKey = "session"

// Session is the authenticated caller, set by JWTAuthMiddleware
type Session struct {
	UserID uint   // Authenticated user
	Role   string // Role at token issue time
}

// IsAdmin reports whether the caller is an admin
func (s Session) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

// SetSession stores the session on the request context
func SetSession(c *gin.Context, s Session) {
	c.Set(sessionKey, s)
}

// SessionFrom returns the caller's session, if any
func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
