package subscriptions

import (
	"errors"
	"fmt"
	"time"

	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/notify"
	"go-aqua-delivery/internal/orders"

	"gorm.io/gorm"
)

// Consume draws bottles from a prepaid subscription and produces the
// zero-cost delivery order for them. The balance decrement, the possible
// completion flip and the order insert are one transaction; a failed
// precondition mutates nothing.
//
// The resulting order is born paid (the plan was charged up front) and
// still walks the normal lifecycle, so the carboys leave stock when the
// order is confirmed.
func Consume(db *gorm.DB, subscriptionID uint, bottles int, info orders.DeliveryInfo) (*models.Order, error) {
	if bottles <= 0 {
		return nil, apperr.Validationf("bottle count must be positive")
	}
	if info.Address == "" || info.District == "" {
		return nil, apperr.Validationf("delivery address and district are required")
	}

	var sub models.Subscription
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, subscriptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("subscription %d not found", subscriptionID)
			}
			return apperr.Persistence(err)
		}

		if sub.Status != models.SubscriptionActive {
			return apperr.Validationf("subscription %d is %s, not active", sub.ID, sub.Status)
		}
		if sub.DailyCap > 0 && bottles > sub.DailyCap {
			return apperr.Validationf("requested %d bottles exceeds the daily cap of %d", bottles, sub.DailyCap)
		}
		if bottles > sub.BottlesRemaining {
			return apperr.SubscriptionExhausted(fmt.Sprintf(
				"subscription %d has %d bottles remaining, requested %d", sub.ID, sub.BottlesRemaining, bottles))
		}

		// Conditional decrement: the balance read above may be stale under
		// concurrent consumption, so the guard is re-applied in the UPDATE.
		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ? AND bottles_remaining >= ?", sub.ID, models.SubscriptionActive, bottles).
			Updates(map[string]interface{}{
				"bottles_remaining": gorm.Expr("bottles_remaining - ?", bottles),
				"bottles_delivered": gorm.Expr("bottles_delivered + ?", bottles),
			})
		if res.Error != nil {
			return apperr.Persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.SubscriptionExhausted(fmt.Sprintf(
				"subscription %d no longer has %d bottles available", sub.ID, bottles))
		}

		// Re-read the balance the UPDATE produced rather than doing the
		// arithmetic locally.
		if err := tx.First(&sub, sub.ID).Error; err != nil {
			return apperr.Persistence(err)
		}

		if sub.BottlesRemaining == 0 {
			if err := tx.Model(&models.Subscription{}).
				Where("id = ?", sub.ID).
				Update("status", models.SubscriptionCompleted).Error; err != nil {
				return apperr.Persistence(err)
			}
			sub.Status = models.SubscriptionCompleted
		}

		order = models.Order{
			ClientID:       &sub.ClientID,
			Channel:        models.ChannelSubscription,
			Status:         models.OrderPending,
			PaymentStatus:  models.PaymentPaid, // prepaid by the plan
			Subtotal:       0,
			DeliveryFee:    0,
			Total:          0,
			Address:        info.Address,
			District:       info.District,
			SubscriptionID: &sub.ID,
			CreatedAt:      time.Now(),
			Lines: []models.OrderLine{{
				ProductID: sub.ProductID,
				Quantity:  bottles,
				UnitPrice: 0,
				Subtotal:  0,
			}},
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := []notify.Event{{
		RecipientID:   sub.ClientID,
		RecipientKind: "client",
		Title:         "Subscription delivery scheduled",
		Message:       fmt.Sprintf("%d bottles on the way. %d remaining on your plan.", bottles, sub.BottlesRemaining),
		EventType:     "subscription_consumed",
		OrderID:       order.ID,
	}}
	if sub.Status == models.SubscriptionCompleted {
		events = append(events, notify.Event{
			RecipientID:   sub.ClientID,
			RecipientKind: "client",
			Title:         "Subscription completed",
			Message:       fmt.Sprintf("Your plan #%d is now fully delivered. Time to renew!", sub.ID),
			EventType:     "subscription_completed",
		})
	}
	notify.Dispatch(events...)

	return &order, nil
}

// Create opens a new plan for a client. Balance starts at the full
// plan-plus-bonus allotment.
func Create(db *gorm.DB, clientID, productID uint, planBottles, bonusBottles, dailyCap int) (*models.Subscription, error) {
	if planBottles <= 0 {
		return nil, apperr.Validationf("plan size must be positive")
	}
	if bonusBottles < 0 || dailyCap < 0 {
		return nil, apperr.Validationf("bonus bottles and daily cap cannot be negative")
	}

	sub := models.Subscription{
		ClientID:         clientID,
		ProductID:        productID,
		PlanBottles:      planBottles,
		BonusBottles:     bonusBottles,
		BottlesDelivered: 0,
		BottlesRemaining: planBottles + bonusBottles,
		DailyCap:         dailyCap,
		Status:           models.SubscriptionActive,
		CreatedAt:        time.Now(),
	}
	if err := db.Create(&sub).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return &sub, nil
}
