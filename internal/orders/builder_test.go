package orders_test

import (
	"testing"

	"go-aqua-delivery/internal/apperr"
	"go-aqua-delivery/internal/delivery"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/orders"
	"go-aqua-delivery/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClientOrder(t *testing.T) {
	db := testutil.OpenDB(t)
	rec := testutil.CaptureNotifications(t)

	client := testutil.SeedClient(t, db)
	bottle := testutil.SeedProduct(t, db, models.Product{
		Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00, StockQuantity: 100,
	})

	order, err := orders.Create(db, orders.CreateParams{
		ClientID: &client.ID,
		Channel:  models.ChannelClient,
		Lines:    []orders.LineInput{{ProductID: bottle.ID, Quantity: 60}},
		Delivery: orders.DeliveryInfo{Address: client.Address, District: client.District},
	})
	require.NoError(t, err)

	// Sixty bottles hit the bulk rate.
	assert.Equal(t, 9.00, order.Lines[0].UnitPrice)
	assert.Equal(t, 540.00, order.Subtotal)
	assert.Equal(t, delivery.ClientFlatFee, order.DeliveryFee)
	assert.Equal(t, order.Subtotal+order.DeliveryFee, order.Total)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.False(t, order.StockReserved, "client orders reserve stock at confirmation")

	// Stock untouched until the confirmed transition.
	var fresh models.Product
	require.NoError(t, db.First(&fresh, bottle.ID).Error)
	assert.Equal(t, 100, fresh.StockQuantity)

	// Client and admin both get a creation event.
	assert.Equal(t, 2, rec.CountType("order_created"))
}

func TestCreateGuestOrderReservesStock(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	carboy := testutil.SeedProduct(t, db, models.Product{
		Name: "20L Carboy", Category: models.CategoryCarboy, Price: 7.50, StockQuantity: 5,
	})

	order, err := orders.Create(db, orders.CreateParams{
		Channel: models.ChannelGuest,
		Lines:   []orders.LineInput{{ProductID: carboy.ID, Quantity: 3}},
		Delivery: orders.DeliveryInfo{
			Address: "Jr. Union 45", District: "Surco", Name: "Pedro", Phone: "988777666",
		},
	})
	require.NoError(t, err)

	// Promo price for two or more carboys.
	assert.Equal(t, 5.00, order.Lines[0].UnitPrice)
	assert.Equal(t, 15.00, order.Subtotal)
	assert.Equal(t, 2.50, order.DeliveryFee, "surco is in the district table")
	assert.True(t, order.StockReserved)
	assert.Nil(t, order.ClientID)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, carboy.ID).Error)
	assert.Equal(t, 2, fresh.StockQuantity, "guest checkout deducts immediately")
}

func TestCreateGuestOrderUnknownDistrictBaselineFee(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	carboy := testutil.SeedProduct(t, db, models.Product{
		Name: "20L Carboy", Category: models.CategoryCarboy, Price: 7.50, StockQuantity: 5,
	})

	order, err := orders.Create(db, orders.CreateParams{
		Channel: models.ChannelGuest,
		Lines:   []orders.LineInput{{ProductID: carboy.ID, Quantity: 1}},
		Delivery: orders.DeliveryInfo{
			Address: "Somewhere 1", District: "Uncharted", Name: "Ana", Phone: "911",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, delivery.BaselineFee, order.DeliveryFee)
}

func TestCreateOrderValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	client := testutil.SeedClient(t, db)
	bottle := testutil.SeedProduct(t, db, models.Product{
		Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00, StockQuantity: 10,
	})

	cases := []struct {
		name   string
		params orders.CreateParams
	}{
		{"empty cart", orders.CreateParams{
			ClientID: &client.ID, Channel: models.ChannelClient,
			Delivery: orders.DeliveryInfo{Address: "a", District: "b"},
		}},
		{"missing address", orders.CreateParams{
			ClientID: &client.ID, Channel: models.ChannelClient,
			Lines:    []orders.LineInput{{ProductID: bottle.ID, Quantity: 1}},
			Delivery: orders.DeliveryInfo{District: "b"},
		}},
		{"zero quantity", orders.CreateParams{
			ClientID: &client.ID, Channel: models.ChannelClient,
			Lines:    []orders.LineInput{{ProductID: bottle.ID, Quantity: 0}},
			Delivery: orders.DeliveryInfo{Address: "a", District: "b"},
		}},
		{"guest without contact", orders.CreateParams{
			Channel:  models.ChannelGuest,
			Lines:    []orders.LineInput{{ProductID: bottle.ID, Quantity: 1}},
			Delivery: orders.DeliveryInfo{Address: "a", District: "b"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orders.Create(db, tc.params)
			require.Error(t, err)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		})
	}
}

func TestCreateOrderProductNotFound(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	client := testutil.SeedClient(t, db)
	_, err := orders.Create(db, orders.CreateParams{
		ClientID: &client.ID,
		Channel:  models.ChannelClient,
		Lines:    []orders.LineInput{{ProductID: 9999, Quantity: 1}},
		Delivery: orders.DeliveryInfo{Address: "a", District: "b"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeProductNotFound, apperr.CodeOf(err))
}

func TestGuestOrderInsufficientStockRollsBack(t *testing.T) {
	db := testutil.OpenDB(t)
	rec := testutil.CaptureNotifications(t)

	carboy := testutil.SeedProduct(t, db, models.Product{
		Name: "20L Carboy", Category: models.CategoryCarboy, Price: 7.50, StockQuantity: 5,
	})
	bottle := testutil.SeedProduct(t, db, models.Product{
		Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00, StockQuantity: 2,
	})

	// First line fits, second does not: nothing may persist.
	_, err := orders.Create(db, orders.CreateParams{
		Channel: models.ChannelGuest,
		Lines: []orders.LineInput{
			{ProductID: carboy.ID, Quantity: 2},
			{ProductID: bottle.ID, Quantity: 3},
		},
		Delivery: orders.DeliveryInfo{
			Address: "Jr. Union 45", District: "Surco", Name: "Pedro", Phone: "988777666",
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientStock, apperr.CodeOf(err))

	var freshCarboy, freshBottle models.Product
	require.NoError(t, db.First(&freshCarboy, carboy.ID).Error)
	require.NoError(t, db.First(&freshBottle, bottle.ID).Error)
	assert.Equal(t, 5, freshCarboy.StockQuantity, "partial deduction must roll back")
	assert.Equal(t, 2, freshBottle.StockQuantity)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.EqualValues(t, 0, orderCount)

	assert.Equal(t, 0, rec.CountType("order_created"), "no events for failed orders")
}

func TestClientOrderRejectedWhenStockShort(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	client := testutil.SeedClient(t, db)
	bottle := testutil.SeedProduct(t, db, models.Product{
		Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00, StockQuantity: 2,
	})

	_, err := orders.Create(db, orders.CreateParams{
		ClientID: &client.ID,
		Channel:  models.ChannelClient,
		Lines:    []orders.LineInput{{ProductID: bottle.ID, Quantity: 3}},
		Delivery: orders.DeliveryInfo{Address: "a", District: "b"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientStock, apperr.CodeOf(err))
}

func TestOrderTotalsInvariant(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	client := testutil.SeedClient(t, db)
	carboy := testutil.SeedProduct(t, db, models.Product{
		Name: "20L Carboy", Category: models.CategoryCarboy, Price: 7.50, StockQuantity: 50,
	})
	bottle := testutil.SeedProduct(t, db, models.Product{
		Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00, StockQuantity: 100,
	})

	order, err := orders.Create(db, orders.CreateParams{
		ClientID: &client.ID,
		Channel:  models.ChannelClient,
		Lines: []orders.LineInput{
			{ProductID: carboy.ID, Quantity: 4},
			{ProductID: bottle.ID, Quantity: 7},
		},
		Delivery: orders.DeliveryInfo{Address: client.Address, District: client.District},
	})
	require.NoError(t, err)

	var persisted models.Order
	require.NoError(t, db.Preload("Lines").First(&persisted, order.ID).Error)

	var lineSum float64
	for _, line := range persisted.Lines {
		assert.Equal(t, float64(line.Quantity)*line.UnitPrice, line.Subtotal)
		lineSum += line.Subtotal
	}
	assert.Equal(t, lineSum, persisted.Subtotal)
	assert.Equal(t, persisted.Subtotal+persisted.DeliveryFee, persisted.Total)
}

func TestUnitPriceIsFrozenSnapshot(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CaptureNotifications(t)

	client := testutil.SeedClient(t, db)
	bottle := testutil.SeedProduct(t, db, models.Product{
		Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00, StockQuantity: 100,
	})

	order, err := orders.Create(db, orders.CreateParams{
		ClientID: &client.ID,
		Channel:  models.ChannelClient,
		Lines:    []orders.LineInput{{ProductID: bottle.ID, Quantity: 5}},
		Delivery: orders.DeliveryInfo{Address: "a", District: "b"},
	})
	require.NoError(t, err)

	// Catalog price changes after checkout.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", bottle.ID).Update("price", 12.00).Error)

	var persisted models.Order
	require.NoError(t, db.Preload("Lines").First(&persisted, order.ID).Error)
	assert.Equal(t, 10.00, persisted.Lines[0].UnitPrice, "snapshot must not follow the catalog")
}
