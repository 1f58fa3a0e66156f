package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"society_ease/internal/billing"    // Bill lifecycle errors
	"society_ease/internal/middleware" // Session access

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// billingStatus maps lifecycle errors to HTTP statuses
func billingStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, billing.ErrInvalidAmount),
		errors.Is(err, billing.ErrInvalidPeriod),
		errors.Is(err, billing.ErrMissingTransactionID),
		errors.Is(err, billing.ErrTransactionIDTooLong),
		errors.Is(err, billing.ErrNoResidents),
		errors.Is(err, billing.ErrUnknownState):
		return http.StatusBadRequest, true
	case errors.Is(err, billing.ErrBillNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, billing.ErrPeriodExists),
		errors.Is(err, billing.ErrAlreadySubmitted),
		errors.Is(err, billing.ErrNotSubmitted):
		return http.StatusConflict, true
	}
	return 0, false
}

// respondError writes a known domain error with its message, or logs an
// unexpected one and answers 500 with a generic message
func respondError(c *gin.Context, err error, message string, fields logrus.Fields) {
	if status, ok := billingStatus(err); ok {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	entry := logrus.WithFields(fields).WithField("error", err.Error())
	if id, ok := c.Get("requestID"); ok {
		entry = entry.WithField("request_id", id)
	}
	entry.Error(message) // Keep the database error in the log, not the response
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// paramID parses a positive numeric path parameter, answering 400 when invalid
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// mustSession returns the caller's session; routes using it sit behind JWTAuthMiddleware
func mustSession(c *gin.Context) (middleware.Session, bool) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return s, ok
}
