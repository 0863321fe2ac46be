package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/database"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/orders"
	"go-aqua-delivery/internal/payments"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderRequest struct {
	ClientID      uint               `json:"client_id" binding:"required"`
	Items         []orders.LineInput `json:"items" binding:"required"`
	Address       string             `json:"address"`
	District      string             `json:"district"`
	PaymentMethod string             `json:"payment_method"`
}

// --- POST: /api/orders ---
// Checkout for a registered client. Stock is deducted when the order is
// confirmed, not here.
func CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	var client models.Client
	if err := database.DB.First(&client, req.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found", "code": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load client", "code": "persistence_error"})
		return
	}

	// Fall back to the address on file when the request omits one.
	address, district := req.Address, req.District
	if address == "" {
		address = client.Address
	}
	if district == "" {
		district = client.District
	}

	order, err := orders.Create(database.DB, orders.CreateParams{
		ClientID: &client.ID,
		Channel:  models.ChannelClient,
		Lines:    req.Items,
		Delivery: orders.DeliveryInfo{Address: address, District: district},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// Open the payment attempt right away when the checkout names a method.
	// The order stands either way; a gateway hiccup is reported, not fatal.
	if req.PaymentMethod != "" {
		payment, payErr := payments.Initiate(database.DB, PayProvider, order.ID, req.PaymentMethod, 0)
		if payErr != nil {
			c.JSON(http.StatusCreated, gin.H{"order": order, "payment_error": apperr.Message(payErr)})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order, "payment": payment})
		return
	}

	c.JSON(http.StatusCreated, order)
}

type GuestOrderRequest struct {
	Items    []orders.LineInput `json:"items" binding:"required"`
	Name     string             `json:"name" binding:"required"`
	Phone    string             `json:"phone" binding:"required"`
	Address  string             `json:"address" binding:"required"`
	District string             `json:"district" binding:"required"`
}

// --- POST: /guest-orders ---
// Public checkout with no account. Stock is reserved immediately so
// anonymous traffic cannot oversell the warehouse.
func CreateGuestOrder(c *gin.Context) {
	var req GuestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	order, err := orders.Create(database.DB, orders.CreateParams{
		Channel: models.ChannelGuest,
		Lines:   req.Items,
		Delivery: orders.DeliveryInfo{
			Address:  req.Address,
			District: req.District,
			Name:     req.Name,
			Phone:    req.Phone,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// --- GET: /api/orders ---
func GetOrders(c *gin.Context) {
	var list []models.Order

	q := database.DB.Preload("Lines").Preload("Lines.Product").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Limit(100).Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// --- GET: /api/orders/:id ---
func GetOrder(c *gin.Context) {
	var order models.Order
	err := database.DB.Preload("Lines").Preload("Lines.Product").Preload("Client").
		First(&order, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found", "code": "not_found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- PUT: /api/orders/:id/status ---
func UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID", "code": "validation_error"})
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	order, err := orders.Transition(database.DB, uint(id), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type AssignRequest struct {
	DeliveryUserID uint `json:"delivery_user_id" binding:"required"`
}

// --- PUT: /api/orders/:id/assign ---
func AssignOrderDelivery(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID", "code": "validation_error"})
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	order, err := orders.AssignDelivery(database.DB, uint(id), req.DeliveryUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
