package pricing

import (
	"strings"

	"go-aqua-delivery/internal/models"
)

// Tier thresholds and promo prices. Per-line, first match wins.
const (
	CarboyPromoPrice  = 5.00
	CarboyPromoMinQty = 2

	BottleBulkPrice  = 9.00
	BottleBulkMinQty = 50

	// Applies when a product has a wholesale price but no explicit minimum.
	DefaultWholesaleMinQty = 10
)

// ResolveUnitPrice returns the unit price for one order line. It is a pure
// function of the product descriptor and the requested quantity: no stock
// checks, no catalog writes, no dependence on other lines.
//
// Precedence: carboy promo, bottle bulk, wholesale tier, list price.
func ResolveUnitPrice(p models.Product, quantity int) float64 {
	category := categoryOf(p)

	if category == models.CategoryCarboy && quantity >= CarboyPromoMinQty {
		return CarboyPromoPrice
	}

	if category == models.CategoryBottle && quantity >= BottleBulkMinQty {
		return BottleBulkPrice
	}

	if p.WholesalePrice != nil {
		minQty := p.WholesaleMinQty
		if minQty <= 0 {
			minQty = DefaultWholesaleMinQty
		}
		if quantity >= minQty {
			return *p.WholesalePrice
		}
	}

	return p.Price
}

// categoryOf trusts the explicit category field. Name matching only covers
// legacy rows created before the field existed and is not authoritative:
// a product named "bottle carrier for carboys" must not hit a water tier,
// so any categorized row bypasses it entirely.
func categoryOf(p models.Product) string {
	if p.Category != "" {
		return p.Category
	}

	name := strings.ToLower(p.Name)
	switch {
	case strings.Contains(name, "carboy") || strings.Contains(name, "bidon"):
		return models.CategoryCarboy
	case strings.Contains(name, "bottle"):
		return models.CategoryBottle
	default:
		return models.CategoryAccessory
	}
}
