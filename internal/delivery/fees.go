package delivery

import "strings"

// Delivery fee policies. Guest checkouts price the fee off the district
// table; registered clients get the flat rate they signed up under. The two
// paths are intentionally separate business policies, not a code accident,
// so each gets a named entry point.

const (
	// BaselineFee applies when a guest's district is not in the table.
	BaselineFee = 3.00

	// ClientFlatFee is the fixed fee charged on registered-client orders.
	ClientFlatFee = 2.00
)

// districtFees is the read-only district→fee table. In production this is
// seeded from the commercial team's coverage sheet.
var districtFees = map[string]float64{
	"centro":      1.50,
	"miraflores":  2.00,
	"san isidro":  2.00,
	"surco":       2.50,
	"la molina":   3.00,
	"callao":      3.50,
	"ventanilla":  4.00,
	"chorrillos":  2.50,
	"ate":         3.50,
	"los olivos":  3.00,
}

// GuestFee resolves the delivery fee for a guest order by district,
// falling back to the baseline when the district is unknown or blank.
func GuestFee(district string) float64 {
	if fee, ok := districtFees[normalize(district)]; ok {
		return fee
	}
	return BaselineFee
}

// ClientFee returns the flat registered-client fee. The district argument is
// accepted so both policies share a signature, but it does not affect the
// result today.
func ClientFee(district string) float64 {
	return ClientFlatFee
}

func normalize(district string) string {
	return strings.ToLower(strings.TrimSpace(district))
}
