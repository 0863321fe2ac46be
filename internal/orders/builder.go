package orders

import (
	"errors"
	"fmt"
	"time"

	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/delivery"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/notify"
	"go-aqua-delivery/internal/pricing"

	"gorm.io/gorm"
)

// LineInput is one cart row as sent by the frontend.
type LineInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// DeliveryInfo is where the order goes. Name/Phone are only required on the
// guest channel, where there is no client record to pull them from.
type DeliveryInfo struct {
	Address  string `json:"address"`
	District string `json:"district"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// CreateParams describes one checkout. Payment initiation is a separate
// step layered on top by the handler.
type CreateParams struct {
	ClientID       *uint
	Channel        string // client | guest | subscription
	Lines          []LineInput
	Delivery       DeliveryInfo
	SubscriptionID *uint
}

// Create validates the cart, resolves unit prices, computes totals and
// persists the order header plus all lines in one transaction. On any
// failure nothing is written: no partial order, no partial stock change.
//
// Stock policy by channel: guest orders reserve (deduct) stock right here,
// because the public checkout must not oversell to anonymous traffic.
// Client orders defer the deduction to the confirmed transition. Whichever
// path deducts sets StockReserved, so it happens exactly once per order.
func Create(db *gorm.DB, p CreateParams) (*models.Order, error) {
	if len(p.Lines) == 0 {
		return nil, apperr.Validationf("order must contain at least one line")
	}
	for _, line := range p.Lines {
		if line.Quantity <= 0 {
			return nil, apperr.Validationf("quantity must be positive for product %d", line.ProductID)
		}
	}
	if p.Delivery.Address == "" || p.Delivery.District == "" {
		return nil, apperr.Validationf("delivery address and district are required")
	}
	if p.Channel == models.ChannelGuest && (p.Delivery.Name == "" || p.Delivery.Phone == "") {
		return nil, apperr.Validationf("guest orders require a contact name and phone")
	}

	reserveNow := p.Channel == models.ChannelGuest

	order := models.Order{
		ClientID:       p.ClientID,
		Channel:        p.Channel,
		Status:         models.OrderPending,
		PaymentStatus:  models.PaymentPending,
		Address:        p.Delivery.Address,
		District:       p.Delivery.District,
		GuestName:      p.Delivery.Name,
		GuestPhone:     p.Delivery.Phone,
		SubscriptionID: p.SubscriptionID,
		StockReserved:  reserveNow,
		CreatedAt:      time.Now(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		var lines []models.OrderLine

		for _, item := range p.Lines {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.ProductNotFound(item.ProductID)
				}
				return apperr.Persistence(err)
			}

			if reserveNow {
				if err := DeductStock(tx, product.ID, item.Quantity); err != nil {
					return err
				}
			} else if product.StockQuantity < item.Quantity {
				// Early courtesy check; the binding check runs at confirm.
				return apperr.InsufficientStock(product.Name)
			}

			unitPrice := pricing.ResolveUnitPrice(product, item.Quantity)
			lineSubtotal := unitPrice * float64(item.Quantity)
			subtotal += lineSubtotal

			lines = append(lines, models.OrderLine{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
				Subtotal:  lineSubtotal,
			})
		}

		order.Subtotal = subtotal
		order.DeliveryFee = feeFor(p.Channel, p.Delivery.District)
		order.Total = order.Subtotal + order.DeliveryFee
		order.Lines = lines

		if err := tx.Create(&order).Error; err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, best-effort.
	notify.Dispatch(creationEvents(&order)...)

	return &order, nil
}

// feeFor applies the per-channel fee policy. Subscription orders are
// prepaid, so no fee is charged on consumption.
func feeFor(channel, district string) float64 {
	switch channel {
	case models.ChannelGuest:
		return delivery.GuestFee(district)
	case models.ChannelSubscription:
		return 0
	default:
		return delivery.ClientFee(district)
	}
}

func creationEvents(order *models.Order) []notify.Event {
	events := []notify.Event{{
		RecipientKind: "admin",
		Title:         "New order received",
		Message:       fmt.Sprintf("Order #%d for %.2f (%s channel)", order.ID, order.Total, order.Channel),
		EventType:     "order_created",
		OrderID:       order.ID,
	}}
	if order.ClientID != nil {
		events = append(events, notify.Event{
			RecipientID:   *order.ClientID,
			RecipientKind: "client",
			Title:         "Order confirmed received",
			Message:       fmt.Sprintf("We received your order #%d. Total: %.2f", order.ID, order.Total),
			EventType:     "order_created",
			OrderID:       order.ID,
		})
	}
	return events
}
