package payments

import (
	"errors"
	"fmt"
	"time"

	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/notify"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment methods accepted at checkout.
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodWallet = "wallet"
)

// Initiate opens a payment attempt against an order and mirrors the status
// onto the order header in the same transaction.
//
// Cash is recorded as pending with no external call. Card and wallet go
// through the provider first: the remote call happens strictly before the
// transaction opens, so a slow or failing gateway never holds DB locks. If
// the gateway call fails, no payment row is written at all.
func Initiate(db *gorm.DB, provider Provider, orderID uint, method string, amount float64) (*models.Payment, error) {
	if method != MethodCash && method != MethodCard && method != MethodWallet {
		return nil, apperr.Validationf("unsupported payment method %q", method)
	}

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order %d not found", orderID)
		}
		return nil, apperr.Persistence(err)
	}
	if amount <= 0 {
		amount = order.Total
	}

	// Cheap pre-check so we do not open a remote payment we will refuse.
	if err := rejectIfPaid(db, orderID); err != nil {
		return nil, err
	}

	payment := models.Payment{
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		CreatedAt: time.Now(),
	}

	if method == MethodCash {
		payment.Status = models.PayAttemptPending
		payment.TransactionID = "cash-" + uuid.NewString()
	} else {
		remote, err := provider.CreateRemotePayment(amount, fmt.Sprintf("order #%d", orderID))
		if err != nil {
			return nil, &apperr.Error{
				Code:    apperr.CodePersistence,
				Message: "payment provider unavailable",
				Err:     err,
			}
		}
		payment.Status = models.PayAttemptProcessing
		payment.TransactionID = remote.ExternalID
		payment.ProviderDetail = remote.RedirectURL
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Re-checked under the transaction: two concurrent initiations must
		// not both slip past the pre-check.
		if err := rejectIfPaid(tx, orderID); err != nil {
			return err
		}
		if err := tx.Create(&payment).Error; err != nil {
			return apperr.Persistence(err)
		}
		return mirrorOntoOrder(tx, orderID, payment.Status)
	})
	if err != nil {
		return nil, err
	}

	notify.Dispatch(notify.Event{
		RecipientKind: "admin",
		Title:         "Payment initiated",
		Message:       fmt.Sprintf("%s payment of %.2f opened for order #%d", method, amount, orderID),
		EventType:     "payment_initiated",
		OrderID:       orderID,
	})

	return &payment, nil
}

// ApplyUpdate is the landing point for asynchronous provider confirmations
// (webhooks and redirects). It is idempotent: replaying the same terminal
// status finds the status unchanged and returns before any write or
// notification happens.
func ApplyUpdate(db *gorm.DB, transactionID, newStatus, providerDetail string) error {
	switch newStatus {
	case models.PayAttemptPending, models.PayAttemptProcessing,
		models.PayAttemptCompleted, models.PayAttemptFailed, models.PayAttemptRefunded:
	default:
		return apperr.Validationf("unknown payment status %q", newStatus)
	}

	var payment models.Payment
	changed := false

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transactionID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("no payment with transaction id %s", transactionID)
			}
			return apperr.Persistence(err)
		}

		if payment.Status == newStatus {
			return nil // replayed webhook, nothing to do
		}

		updates := map[string]interface{}{"status": newStatus}
		if providerDetail != "" {
			updates["provider_detail"] = providerDetail
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return apperr.Persistence(err)
		}
		payment.Status = newStatus
		changed = true

		return mirrorOntoOrder(tx, payment.OrderID, newStatus)
	})
	if err != nil {
		return err
	}

	if changed {
		notify.Dispatch(notify.Event{
			RecipientKind: "admin",
			Title:         "Payment update",
			Message:       fmt.Sprintf("Payment %s for order #%d is now %s", transactionID, payment.OrderID, newStatus),
			EventType:     "payment_update",
			OrderID:       payment.OrderID,
		})
	}
	return nil
}

// SetOrderPaymentStatus is the manual override used by staff, e.g. marking
// a cash order paid on delivery or flagging it as store credit. A pending
// cash payment row on the order is completed alongside.
func SetOrderPaymentStatus(db *gorm.DB, orderID uint, status string) (*models.Order, error) {
	switch status {
	case models.PaymentPending, models.PaymentPaid, models.PaymentCredit, models.PaymentRefunded:
	default:
		return nil, apperr.Validationf("unknown payment status %q", status)
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order %d not found", orderID)
			}
			return apperr.Persistence(err)
		}

		if err := tx.Model(&order).Update("payment_status", status).Error; err != nil {
			return apperr.Persistence(err)
		}
		order.PaymentStatus = status

		if status == models.PaymentPaid {
			// Settle the open cash attempt, if any.
			if err := tx.Model(&models.Payment{}).
				Where("order_id = ? AND method = ? AND status = ?", orderID, MethodCash, models.PayAttemptPending).
				Update("status", models.PayAttemptCompleted).Error; err != nil {
				return apperr.Persistence(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// rejectIfPaid fails with DuplicatePayment when the order already has a
// completed payment attempt.
func rejectIfPaid(db *gorm.DB, orderID uint) error {
	var count int64
	if err := db.Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, models.PayAttemptCompleted).
		Count(&count).Error; err != nil {
		return apperr.Persistence(err)
	}
	if count > 0 {
		return apperr.DuplicatePayment(orderID)
	}
	return nil
}

// mirrorOntoOrder reflects a payment-attempt status onto the order header's
// coarser payment field.
func mirrorOntoOrder(tx *gorm.DB, orderID uint, attemptStatus string) error {
	var orderStatus string
	switch attemptStatus {
	case models.PayAttemptCompleted:
		orderStatus = models.PaymentPaid
	case models.PayAttemptRefunded:
		orderStatus = models.PaymentRefunded
	default:
		orderStatus = models.PaymentPending
	}

	if err := tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", orderStatus).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}
