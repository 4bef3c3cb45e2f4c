package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> log pengiriman email, filter status dan order_id
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	q := nc.DB.Model(&models.Notification{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	orderID, err := queryUint(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if orderID != nil {
		q = q.Where("order_id = ?", *orderID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	var notifs []models.Notification
	if err := q.Order("created_at DESC, id DESC").Offset((page - 1) * size).Limit(size).Find(&notifs).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPaged(c, http.StatusOK, "All notifications", notifs, page, size, total)
}

// GetNotificationByID
func (nc *NotificationController) GetNotificationByID(c *gin.Context) {
	id, err := paramID(c, "notif_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification detail", notif)
}
