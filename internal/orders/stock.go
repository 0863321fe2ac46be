package orders

import (
	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/models"

	"gorm.io/gorm"
)

// Stock ledger. Both operations are single UPDATE statements so the
// check-and-modify cannot be split by a concurrent writer: two confirms
// racing on the same product can never both pass the stock check.

// DeductStock atomically takes qty units off a product's stock. Fails with
// InsufficientStock when fewer than qty units are available, without
// touching the row.
func DeductStock(tx *gorm.DB, productID uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return apperr.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing product from an out-of-stock one.
		var product models.Product
		if err := tx.Select("id", "name").First(&product, productID).Error; err != nil {
			return apperr.ProductNotFound(productID)
		}
		return apperr.InsufficientStock(product.Name)
	}
	return nil
}

// RestoreStock puts qty units back, e.g. when a reserved order is cancelled.
func RestoreStock(tx *gorm.DB, productID uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return apperr.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ProductNotFound(productID)
	}
	return nil
}
