package orders

import (
	"errors"
	"fmt"

	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/notify"

	"gorm.io/gorm"
)

// transitions is the full lifecycle table. Anything not listed is illegal.
var transitions = map[string][]string{
	models.OrderPending:        {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed:      {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing:      {models.OrderOutForDelivery, models.OrderCancelled},
	models.OrderOutForDelivery: {models.OrderDelivered, models.OrderCancelled},
	models.OrderDelivered:      {},
	models.OrderCancelled:      {},
}

// CanTransition reports whether from→to is in the lifecycle table.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// Transition moves an order to target and runs the stock side effects of
// that move, all in one transaction:
//
//   - entering confirmed deducts stock for every line (unless the order
//     already reserved at creation, e.g. guest checkout);
//   - entering cancelled restores stock, but only if it was deducted.
//
// The status write is conditioned on the status that was read, so two
// concurrent requests against the same order cannot both succeed from a
// stale source state: the loser fails with InvalidTransition.
func Transition(db *gorm.DB, orderID uint, target string) (*models.Order, error) {
	if !IsValidStatus(target) {
		return nil, apperr.Validationf("unknown order status %q", target)
	}

	var order models.Order
	var fromStatus string

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Lines").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order %d not found", orderID)
			}
			return apperr.Persistence(err)
		}
		fromStatus = order.Status

		if !CanTransition(fromStatus, target) {
			return apperr.InvalidTransition(fromStatus, target)
		}

		updates := map[string]interface{}{"status": target}

		switch {
		case target == models.OrderConfirmed && !order.StockReserved:
			for _, line := range order.Lines {
				if err := DeductStock(tx, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
			updates["stock_reserved"] = true

		case target == models.OrderCancelled && order.StockReserved:
			for _, line := range order.Lines {
				if err := RestoreStock(tx, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
			updates["stock_reserved"] = false
		}

		// Conditional write: if another request moved the order since our
		// read, zero rows match and the whole transaction rolls back.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, fromStatus).
			Updates(updates)
		if res.Error != nil {
			return apperr.Persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidTransition(fromStatus, target)
		}

		order.Status = target
		if reserved, ok := updates["stock_reserved"].(bool); ok {
			order.StockReserved = reserved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify.Dispatch(transitionEvents(&order, fromStatus)...)

	return &order, nil
}

// AssignDelivery attaches a delivery person to an order. Only meaningful
// before the order is terminal.
func AssignDelivery(db *gorm.DB, orderID, deliveryUserID uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order %d not found", orderID)
		}
		return nil, apperr.Persistence(err)
	}
	if order.Status == models.OrderDelivered || order.Status == models.OrderCancelled {
		return nil, apperr.Validationf("order %d is already %s", orderID, order.Status)
	}

	if err := db.Model(&order).Update("delivery_user_id", deliveryUserID).Error; err != nil {
		return nil, apperr.Persistence(err)
	}

	notify.Dispatch(notify.Event{
		RecipientID:   deliveryUserID,
		RecipientKind: "delivery",
		Title:         "Delivery assigned",
		Message:       fmt.Sprintf("You were assigned order #%d (%s, %s)", order.ID, order.Address, order.District),
		EventType:     "delivery_assigned",
		OrderID:       order.ID,
	})

	return &order, nil
}

func transitionEvents(order *models.Order, from string) []notify.Event {
	events := []notify.Event{{
		RecipientKind: "admin",
		Title:         "Order status changed",
		Message:       fmt.Sprintf("Order #%d moved %s -> %s", order.ID, from, order.Status),
		EventType:     "order_status",
		OrderID:       order.ID,
	}}
	if order.ClientID != nil {
		events = append(events, notify.Event{
			RecipientID:   *order.ClientID,
			RecipientKind: "client",
			Title:         "Your order was updated",
			Message:       fmt.Sprintf("Order #%d is now %s", order.ID, order.Status),
			EventType:     "order_status",
			OrderID:       order.ID,
		})
	}
	return events
}
