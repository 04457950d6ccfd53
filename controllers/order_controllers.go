package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/hub"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/services"
	"github.com/restokorp/restaurant-app/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

// CreateOrder -> open an order, walk-in or from a booking
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// the authenticated waiter opens the order unless an admin assigns one
	if req.WaiterID == nil {
		if userID, ok := c.Get("user_id"); ok {
			if id, ok := userID.(uint); ok {
				req.WaiterID = &id
			}
		}
	}

	order, err := oc.Orders.CreateOrder(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastMessage(hub.Message{Event: hub.EventOrderUpdate, Data: order})
	if order.BookingID != nil {
		hub.BroadcastMessage(hub.Message{Event: hub.EventBookingConvert, Data: gin.H{
			"booking_id": *order.BookingID,
			"order_id":   order.ID,
		}})
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrder -> order detail with items
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.Preload("OrderItems.Dish").Preload("Table").Preload("Waiter").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// ListOrders -> filter by status and/or shift date (YYYY-MM-DD)
func (oc *OrderController) ListOrders(c *gin.Context) {
	query := oc.DB.Preload("OrderItems.Dish").Preload("Table").Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid date parameter, expected YYYY-MM-DD"))
			return
		}
		query = query.Where("shift_date = ?", day)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// AddItems -> append dishes to an open order
func (oc *OrderController) AddItems(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var req struct {
		Items []services.OrderItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.AddItems(uint(id), req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastMessage(hub.Message{Event: hub.EventOrderUpdate, Data: order})
	utils.RespondJSON(c, http.StatusOK, "Items added", order)
}

// UpdateStatus -> kitchen flow transition
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(uint(id), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastMessage(hub.Message{Event: hub.EventOrderUpdate, Data: order})
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// CloseOrder -> finalize and return the generated receipt
func (oc *OrderController) CloseOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	receipt, err := oc.Orders.CloseOrder(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastMessage(hub.Message{Event: hub.EventReceiptGenerated, Data: receipt})
	utils.RespondJSON(c, http.StatusOK, "Order closed", receipt)
}
