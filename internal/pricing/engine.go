package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// UnitSellPrice computes a vendor's unit sell price from a base price and
// a percentage markup.
func UnitSellPrice(base, percentage decimal.Decimal) decimal.Decimal {
	return base.Add(base.Mul(percentage).Div(hundred))
}

// LineTotal computes the total value of a line given the ordered units.
func LineTotal(units, unitPrice decimal.Decimal) decimal.Decimal {
	return units.Mul(unitPrice)
}

// Savings returns the incumbent value minus the vendor value.
func Savings(incumbent, vendor decimal.Decimal) decimal.Decimal {
	return incumbent.Sub(vendor)
}

// SavingsPercent expresses savings as a percentage of the incumbent value,
// zero when the incumbent value is not positive.
func SavingsPercent(incumbent, vendor decimal.Decimal) decimal.Decimal {
	if !incumbent.IsPositive() {
		return decimal.Zero
	}
	return incumbent.Sub(vendor).Div(incumbent).Mul(hundred)
}
