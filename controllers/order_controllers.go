package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-ordering-app/middlewares"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
)

type OrderController struct {
	Orders  *services.OrderService
	Exports *services.ExportService
}

func NewOrderController(orders *services.OrderService, exports *services.ExportService) *OrderController {
	return &OrderController{Orders: orders, Exports: exports}
}

type checkoutRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	Email           string `json:"email"`
	Note            string `json:"note"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
}

func (r checkoutRequest) contact() services.Contact {
	return services.Contact{Name: r.CustomerName, Phone: r.PhoneNumber, Email: r.Email, Note: r.Note}
}

// Checkout -> buat order dari cart session
func (oc *OrderController) Checkout(c *gin.Context) {
	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Checkout(c.Request.Context(), middlewares.CartSessionID(c), body.contact(), body.DeliveryAddress)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, fmt.Sprintf("Order %s placed", order.Code), gin.H{
		"order":        order,
		"tracking_url": oc.Exports.TrackingURL(order.Code),
	})
}

// TrackOrder -> detail order dan riwayat status berdasarkan kode
func (oc *OrderController) TrackOrder(c *gin.Context) {
	order, err := oc.Orders.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// TrackingQR -> PNG QR code ke halaman tracking
func (oc *OrderController) TrackingQR(c *gin.Context) {
	order, err := oc.Orders.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	png, err := oc.Exports.TrackingQR(order.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, services.ContentTypePNG, png)
}

func orderFilter(c *gin.Context) (services.OrderFilter, error) {
	f := services.OrderFilter{
		Search:   c.Query("search"),
		Status:   models.OrderStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, services.ErrInvalidStatus
	}
	var err error
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	if f.MinTotal, err = queryDecimal(c, "min_total"); err != nil {
		return f, err
	}
	if f.MaxTotal, err = queryDecimal(c, "max_total"); err != nil {
		return f, err
	}
	return f, nil
}

// ListOrders (admin)
func (oc *OrderController) ListOrders(c *gin.Context) {
	f, err := orderFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	orders, total, err := oc.Orders.List(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	utils.RespondPaged(c, http.StatusOK, "List of orders", orders, f.Page, f.PageSize, total)
}

// GetOrderByID (admin)
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Orders.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> pending > processing > shipping > completed
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	status := models.OrderStatus(strings.ToLower(strings.TrimSpace(body.Status)))
	order, err := oc.Orders.SetStatus(c.Request.Context(), id, status, middlewares.Actor(c), body.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Order status updated to %s", order.Status.DisplayName()), order)
}

// CancelOrder: alasan wajib
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Cancel(c.Request.Context(), id, body.Reason, middlewares.Actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// GetOrderHistory
func (oc *OrderController) GetOrderHistory(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	events, err := oc.Orders.History(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status history", events)
}

// ExportOrders -> XLSX dengan filter yang sama seperti ListOrders
func (oc *OrderController) ExportOrders(c *gin.Context) {
	f, err := orderFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	orders, err := oc.Orders.All(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	data, err := oc.Exports.OrdersXLSX(orders)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sendFile(c, services.ContentTypeXLSX, fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_150405")), data)
}
