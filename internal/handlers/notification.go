package handlers

import (
	"net/http"

	"github.com/ekinyalgin/curiora/internal/db"
	"github.com/ekinyalgin/curiora/internal/models"
	"github.com/ekinyalgin/curiora/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List returns the session user's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	user := CurrentUser(c)

	var notifications []models.Notification
	db.DB.Preload("Actor").Where("user_id = ?", user.ID).
		Order("created_at DESC").Limit(100).Find(&notifications)

	var unread int64
	db.DB.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", user.ID, false).Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        unread,
	})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	user := CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	result := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("is_read", true)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := CurrentUser(c)

	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	c.Status(http.StatusNoContent)
}
