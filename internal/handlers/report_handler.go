package handlers

import (
	"net/http"

	"go-aqua-delivery/internal/database"
	"go-aqua-delivery/internal/models"

	"github.com/gin-gonic/gin"
)

// ReportData defines the shape of the dashboard response
type ReportData struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int64   `json:"total_orders"`
	OpenOrders   int64   `json:"open_orders"`
	TopSelling   []struct {
		ProductName string  `json:"product_name"`
		Sold        int     `json:"sold"`
		Revenue     float64 `json:"revenue"`
	} `json:"top_selling"`
	RecentOrders []models.Order `json:"recent_orders"`
}

// --- GET: /api/reports ---
func GetSalesReport(c *gin.Context) {
	var data ReportData

	// 1. Delivered revenue (all time)
	err := database.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderDelivered).
		Select("COALESCE(SUM(total), 0)").
		Scan(&data.TotalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	// 2. Count total orders
	err = database.DB.Model(&models.Order{}).Count(&data.TotalOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// 3. Orders still moving through the lifecycle
	err = database.DB.Model(&models.Order{}).
		Where("status NOT IN ?", []string{models.OrderDelivered, models.OrderCancelled}).
		Count(&data.OpenOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count open orders"})
		return
	}

	// 4. Top 5 best sellers by delivered volume
	err = database.DB.Table("order_lines").
		Select("products.name as product_name, SUM(order_lines.quantity) as sold, SUM(order_lines.subtotal) as revenue").
		Joins("JOIN products ON order_lines.product_id = products.id").
		Joins("JOIN orders ON order_lines.order_id = orders.id").
		Where("orders.status = ?", models.OrderDelivered).
		Group("products.name").
		Order("sold desc").
		Limit(5).
		Scan(&data.TopSelling).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top selling items"})
		return
	}

	// 5. Last 10 orders, newest first
	err = database.DB.Order("created_at desc").Limit(10).Find(&data.RecentOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent orders"})
		return
	}

	c.JSON(http.StatusOK, data)
}
