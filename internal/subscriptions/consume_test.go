package subscriptions_test

import (
	"testing"

	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/orders"
	"go-aqua-delivery/internal/subscriptions"
	"go-aqua-delivery/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dropoff = orders.DeliveryInfo{Address: "Av. Central 123", District: "Miraflores"}

func seedSubscription(t *testing.T, db *gorm.DB, remaining, delivered, dailyCap int, status string) models.Subscription {
	t.Helper()
	client := testutil.SeedClient(t, db)
	carboy := testutil.SeedProduct(t, db, models.Product{
		Name: "20L Carboy", Category: models.CategoryCarboy, Price: 7.50, StockQuantity: 100,
	})
	sub := models.Subscription{
		ClientID:         client.ID,
		ProductID:        carboy.ID,
		PlanBottles:      remaining + delivered,
		BonusBottles:     0,
		BottlesDelivered: delivered,
		BottlesRemaining: remaining,
		DailyCap:         dailyCap,
		Status:           status,
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}

func TestConsumeProducesZeroCostOrder(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	sub := seedSubscription(t, db, 10, 2, 0, models.SubscriptionActive)

	order, err := subscriptions.Consume(db, sub.ID, 2, dropoff)
	require.NoError(t, err)

	assert.Equal(t, 0.0, order.Subtotal)
	assert.Equal(t, 0.0, order.DeliveryFee)
	assert.Equal(t, 0.0, order.Total)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.ChannelSubscription, order.Channel)
	require.NotNil(t, order.SubscriptionID)
	assert.Equal(t, sub.ID, *order.SubscriptionID)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.Equal(t, 0.0, order.Lines[0].UnitPrice)

	var fresh models.Subscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, 8, fresh.BottlesRemaining)
	assert.Equal(t, 4, fresh.BottlesDelivered)
	assert.Equal(t, models.SubscriptionActive, fresh.Status)
}

func TestConsumeLastBottlesCompletesPlan(t *testing.T) {
	db := testutil.OpenDB(t)
	rec := testutil.CaptureNotifications(t)

	// Three bottles left, cap of five: a request for all three succeeds
	// and closes the plan.
	sub := seedSubscription(t, db, 3, 7, 5, models.SubscriptionActive)

	order, err := subscriptions.Consume(db, sub.ID, 3, dropoff)
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.Total)

	var fresh models.Subscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, 0, fresh.BottlesRemaining)
	assert.Equal(t, 10, fresh.BottlesDelivered)
	assert.Equal(t, models.SubscriptionCompleted, fresh.Status)

	assert.Equal(t, 1, rec.CountType("subscription_completed"))
}

func TestConsumeBeyondBalanceFails(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	sub := seedSubscription(t, db, 3, 0, 0, models.SubscriptionActive)

	_, err := subscriptions.Consume(db, sub.ID, 4, dropoff)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSubscriptionExhausted, apperr.CodeOf(err))

	// Precondition failure mutates nothing.
	var fresh models.Subscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, 3, fresh.BottlesRemaining)
	assert.Equal(t, 0, fresh.BottlesDelivered)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.EqualValues(t, 0, orderCount)
}

func TestConsumeOverDailyCapFails(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	sub := seedSubscription(t, db, 20, 0, 5, models.SubscriptionActive)

	_, err := subscriptions.Consume(db, sub.ID, 6, dropoff)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestConsumePausedSubscriptionFails(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	sub := seedSubscription(t, db, 10, 0, 0, models.SubscriptionPaused)

	_, err := subscriptions.Consume(db, sub.ID, 1, dropoff)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestConsumeValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	sub := seedSubscription(t, db, 10, 0, 0, models.SubscriptionActive)

	_, err := subscriptions.Consume(db, sub.ID, 0, dropoff)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = subscriptions.Consume(db, sub.ID, 1, orders.DeliveryInfo{District: "Miraflores"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = subscriptions.Consume(db, 9999, 1, dropoff)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestBalanceInvariantHolds(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	client := testutil.SeedClient(t, db)
	carboy := testutil.SeedProduct(t, db, models.Product{
		Name: "20L Carboy", Category: models.CategoryCarboy, Price: 7.50, StockQuantity: 100,
	})

	sub, err := subscriptions.Create(db, client.ID, carboy.ID, 12, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 15, sub.BottlesRemaining)

	for _, n := range []int{4, 4, 2} {
		_, err := subscriptions.Consume(db, sub.ID, n, dropoff)
		require.NoError(t, err)
	}

	var fresh models.Subscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, fresh.PlanBottles+fresh.BonusBottles, fresh.BottlesDelivered+fresh.BottlesRemaining)
	assert.Equal(t, 5, fresh.BottlesRemaining)
}

func TestConsumptionOrderFollowsNormalLifecycle(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	sub := seedSubscription(t, db, 10, 0, 0, models.SubscriptionActive)

	order, err := subscriptions.Consume(db, sub.ID, 3, dropoff)
	require.NoError(t, err)

	// Confirming the delivery order takes the carboys out of stock.
	_, err = orders.Transition(db, order.ID, models.OrderConfirmed)
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, db.First(&product, order.Lines[0].ProductID).Error)
	assert.Equal(t, 97, product.StockQuantity)
}
