package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/hub"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// ListNotifications -> current user's notifications, unread first
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	userID, ok := c.Get("user_id")
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("not authenticated"))
		return
	}

	var notifications []models.Notification
	if err := nc.DB.Where("user_id = ?", userID).
		Order("is_read asc, created_at desc").Limit(100).
		Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of notifications", notifications)
}

// CreateNotification -> admin pushes a message to a staff member
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	var req struct {
		UserID  uint   `json:"user_id" binding:"required"`
		Title   string `json:"title" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := nc.DB.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	notification := models.Notification{
		UserID:  &req.UserID,
		Title:   req.Title,
		Message: req.Message,
	}
	if err := nc.DB.Create(&notification).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hub.BroadcastMessage(hub.Message{Event: hub.EventNotification, Data: notification})
	utils.RespondJSON(c, http.StatusCreated, "Notification created", notification)
}

// MarkRead -> idempotent read marker
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("notification_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	userID, _ := c.Get("user_id")
	result := nc.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"notification_id": id})
}
