package pricing

import (
	"testing"

	"go-aqua-delivery/internal/models"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestCarboyPromo(t *testing.T) {
	carboy := models.Product{Name: "20L Carboy", Category: models.CategoryCarboy, Price: 7.50}

	assert.Equal(t, 7.50, ResolveUnitPrice(carboy, 1), "single carboy pays list price")
	assert.Equal(t, CarboyPromoPrice, ResolveUnitPrice(carboy, 2), "promo starts at two")
	assert.Equal(t, CarboyPromoPrice, ResolveUnitPrice(carboy, 10))
}

func TestBottleBulk(t *testing.T) {
	bottle := models.Product{Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00}

	assert.Equal(t, 10.00, ResolveUnitPrice(bottle, 49))
	assert.Equal(t, BottleBulkPrice, ResolveUnitPrice(bottle, 50))
	// Sixty bottles at base price 10.00 resolve to the 9.00 bulk rate.
	assert.Equal(t, BottleBulkPrice, ResolveUnitPrice(bottle, 60))
}

func TestWholesaleTier(t *testing.T) {
	p := models.Product{
		Name:            "Dispenser Pump",
		Category:        models.CategoryAccessory,
		Price:           4.00,
		WholesalePrice:  floatPtr(3.25),
		WholesaleMinQty: 12,
	}

	assert.Equal(t, 4.00, ResolveUnitPrice(p, 11), "one below the minimum stays retail")
	assert.Equal(t, 3.25, ResolveUnitPrice(p, 12), "exact minimum unlocks wholesale")
	assert.Equal(t, 3.25, ResolveUnitPrice(p, 40))
}

func TestWholesaleDefaultMinimum(t *testing.T) {
	p := models.Product{
		Name:           "Cup Pack",
		Category:       models.CategoryAccessory,
		Price:          2.00,
		WholesalePrice: floatPtr(1.50),
		// No explicit minimum: the default of 10 applies.
	}

	assert.Equal(t, 2.00, ResolveUnitPrice(p, 9))
	assert.Equal(t, 1.50, ResolveUnitPrice(p, 10))
}

func TestPromoBeatsWholesale(t *testing.T) {
	carboy := models.Product{
		Name:            "20L Carboy",
		Category:        models.CategoryCarboy,
		Price:           7.50,
		WholesalePrice:  floatPtr(6.00),
		WholesaleMinQty: 2,
	}

	// Both tiers match at qty 2; the carboy promo has precedence.
	assert.Equal(t, CarboyPromoPrice, ResolveUnitPrice(carboy, 2))
}

func TestCategoryFieldIsAuthoritative(t *testing.T) {
	// The name mentions both trigger words, but the category says it is an
	// accessory, so no water tier may fire.
	rack := models.Product{
		Name:     "Bottle rack for carboys",
		Category: models.CategoryAccessory,
		Price:    15.00,
	}

	assert.Equal(t, 15.00, ResolveUnitPrice(rack, 60))
}

func TestNameFallbackForLegacyRows(t *testing.T) {
	// Rows created before the category column rely on the name.
	legacyCarboy := models.Product{Name: "Bidon 20L retornable", Price: 7.50}
	assert.Equal(t, CarboyPromoPrice, ResolveUnitPrice(legacyCarboy, 2))

	legacyBottle := models.Product{Name: "Small bottle 625ml", Price: 1.00}
	assert.Equal(t, BottleBulkPrice, ResolveUnitPrice(legacyBottle, 50))
}

func TestResolutionIsPure(t *testing.T) {
	bottle := models.Product{Name: "1L Bottle", Category: models.CategoryBottle, Price: 10.00}

	first := ResolveUnitPrice(bottle, 60)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ResolveUnitPrice(bottle, 60), "result must not depend on call order")
	}
}
