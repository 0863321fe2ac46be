package database

import (
	"time"

	"go-aqua-delivery/internal/models"
)

// SalesReportResult aggregates delivered revenue for a date range.
type SalesReportResult struct {
	TotalRevenue float64
	TotalCount   int64
}

// GetSalesReport totals delivered, non-refunded orders in the range.
// COALESCE ensures we get 0 instead of NULL when there were no deliveries.
func GetSalesReport(start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	err := DB.Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("status = ?", models.OrderDelivered).
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("status = ?", models.OrderDelivered).
		Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
