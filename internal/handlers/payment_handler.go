package handlers

import (
	"net/http"
	"strconv"

	"go-aqua-delivery/internal/database"
	"go-aqua-delivery/internal/payments"

	"github.com/gin-gonic/gin"
)

// PayProvider is the active gateway abstraction, wired at startup.
var PayProvider payments.Provider = &payments.SandboxProvider{BaseURL: "http://localhost:8080"}

type PaymentRequest struct {
	OrderID uint    `json:"order_id" binding:"required"`
	Method  string  `json:"method" binding:"required"`
	Amount  float64 `json:"amount"`
}

// --- POST: /api/payments ---
func InitiatePayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	payment, err := payments.Initiate(database.DB, PayProvider, req.OrderID, req.Method, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

type WebhookRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
	Detail        string `json:"detail"`
}

// --- POST: /payments/webhook ---
// Landing point for provider callbacks. Replays are harmless: the update
// is idempotent by transaction id.
func PaymentWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	if err := payments.ApplyUpdate(database.DB, req.TransactionID, req.Status, req.Detail); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment update applied"})
}

type OrderPaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// --- PUT: /api/orders/:id/payment ---
// Manual override for staff: mark cash collected, grant credit, etc.
func UpdateOrderPayment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID", "code": "validation_error"})
		return
	}

	var req OrderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	order, err := payments.SetOrderPaymentStatus(database.DB, uint(id), req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
