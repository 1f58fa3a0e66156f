package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Cache TTL

	"society_ease/internal/domain" // Importing domain models
	"society_ease/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

const noticesCacheTTL = 5 * time.Minute

// NoticeRequest is the body for posting or editing a notice
type NoticeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// ListNoticesHandler returns every notice, newest first, served from Redis when cached
func ListNoticesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		notices := []domain.Notice{}
		// Try to get notices from cache
		found, err := utils.GetCache(ctx, rdb, utils.CacheKeyNotices, &notices)
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Notice cache read failed")
		}
		if found && err == nil {
			c.JSON(http.StatusOK, notices)
			return
		}
		notices = []domain.Notice{}
		if err := db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&notices).Error; err != nil {
			respondError(c, err, "Failed to fetch notices", nil)
			return
		}
		// Cache the result
		if err := utils.SetCache(ctx, rdb, utils.CacheKeyNotices, notices, noticesCacheTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Notice cache write failed")
		}
		c.JSON(http.StatusOK, notices)
	}
}

// CreateNoticeHandler posts a notice
func CreateNoticeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NoticeRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		notice := domain.Notice{Title: strings.TrimSpace(req.Title), Description: req.Description}
		if err := db.WithContext(c.Request.Context()).Create(&notice).Error; err != nil {
			respondError(c, err, "Failed to post notice", nil)
			return
		}
		invalidate(c, rdb, utils.CacheKeyNotices)
		c.JSON(http.StatusCreated, gin.H{"message": "Notice posted successfully!", "notice": notice})
	}
}

// UpdateNoticeHandler edits a notice
func UpdateNoticeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req NoticeRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		ctx := c.Request.Context()
		var notice domain.Notice
		if err := db.WithContext(ctx).First(&notice, id).Error; err != nil {
			respondError(c, err, "Failed to update notice", logrus.Fields{"notice_id": id})
			return
		}
		notice.Title = strings.TrimSpace(req.Title)
		notice.Description = req.Description
		if err := db.WithContext(ctx).Model(&notice).Updates(map[string]any{
			"title":       notice.Title,
			"description": notice.Description,
		}).Error; err != nil {
			respondError(c, err, "Failed to update notice", logrus.Fields{"notice_id": id})
			return
		}
		invalidate(c, rdb, utils.CacheKeyNotices)
		c.JSON(http.StatusOK, gin.H{"message": "Notice updated", "notice": notice})
	}
}

// DeleteNoticeHandler removes a notice
func DeleteNoticeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(&domain.Notice{}, id)
		if res.Error != nil {
			respondError(c, res.Error, "Failed to delete notice", logrus.Fields{"notice_id": id})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notice not found"})
			return
		}
		invalidate(c, rdb, utils.CacheKeyNotices)
		c.JSON(http.StatusOK, gin.H{"message": "Notice deleted"})
	}
}

// invalidate drops cached keys after a write; a cache failure only costs a stale read
func invalidate(c *gin.Context, rdb *redis.Client, keys ...string) {
	if err := utils.DeleteCache(c.Request.Context(), rdb, keys...); err != nil {
		logrus.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}
