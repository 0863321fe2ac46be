package handlers

import (
	"net/http"
	"strconv"

	"go-aqua-delivery/internal/database"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/orders"
	"go-aqua-delivery/internal/subscriptions"

	"github.com/gin-gonic/gin"
)

type SubscriptionRequest struct {
	ClientID     uint `json:"client_id" binding:"required"`
	ProductID    uint `json:"product_id" binding:"required"`
	PlanBottles  int  `json:"plan_bottles" binding:"required"`
	BonusBottles int  `json:"bonus_bottles"`
	DailyCap     int  `json:"daily_cap"`
}

// --- POST: /api/subscriptions ---
func AddSubscription(c *gin.Context) {
	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	sub, err := subscriptions.Create(database.DB, req.ClientID, req.ProductID,
		req.PlanBottles, req.BonusBottles, req.DailyCap)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// --- GET: /api/subscriptions/:id ---
func GetSubscription(c *gin.Context) {
	var sub models.Subscription
	if err := database.DB.First(&sub, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found", "code": "not_found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

type ConsumeRequest struct {
	Bottles  int    `json:"bottles" binding:"required"`
	Address  string `json:"address" binding:"required"`
	District string `json:"district" binding:"required"`
}

// --- POST: /api/subscriptions/:id/consume ---
// Draws bottles from the prepaid balance and schedules the delivery.
func ConsumeSubscription(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID", "code": "validation_error"})
		return
	}

	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "validation_error"})
		return
	}

	order, err := subscriptions.Consume(database.DB, uint(id), req.Bottles, orders.DeliveryInfo{
		Address:  req.Address,
		District: req.District,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}
