package pipeline

import "github.com/shopspring/decimal"

// groupKey identifies one classification group: all candidate offers
// competing for the same product on the same order at the same point of
// sale.
type groupKey struct {
	PointOfSaleID  int64
	OrderID        int64
	SuperCatalogID int64
}

// groupBounds carries the two reference prices of a group: the minimum
// incumbent unit price across its rows and the minimum total vendor
// price among its offers.
type groupBounds struct {
	incumbentMin decimal.Decimal
	vendorMin    decimal.Decimal
}

// Classify labels every candidate offer within its group. An offer whose
// total is strictly above the group's minimum incumbent price loses to
// the incumbent; otherwise it is the vendor minimum when its total
// equals the group's cheapest vendor total, and a beaten vendor offer
// when it does not. Offers tied at the minimum total all classify as
// vendor minimum. Input order is preserved.
func Classify(offers []CandidateOffer) []ClassifiedOffer {
	groups := make(map[groupKey]*groupBounds)
	for _, o := range offers {
		key := groupKey{o.PointOfSaleID, o.OrderID, o.SuperCatalogID}
		b, ok := groups[key]
		if !ok {
			groups[key] = &groupBounds{incumbentMin: o.IncumbentPrice, vendorMin: o.TotalVendorPrice}
			continue
		}
		if o.IncumbentPrice.LessThan(b.incumbentMin) {
			b.incumbentMin = o.IncumbentPrice
		}
		if o.TotalVendorPrice.LessThan(b.vendorMin) {
			b.vendorMin = o.TotalVendorPrice
		}
	}

	out := make([]ClassifiedOffer, len(offers))
	for i, o := range offers {
		b := groups[groupKey{o.PointOfSaleID, o.OrderID, o.SuperCatalogID}]
		var class Classification
		switch {
		case b.incumbentMin.LessThan(o.TotalVendorPrice):
			class = ClassIncumbentMinimum
		case o.TotalVendorPrice.Equal(b.vendorMin):
			class = ClassVendorMinimum
		default:
			class = ClassVendorNonMinimum
		}
		out[i] = ClassifiedOffer{CandidateOffer: o, Classification: class}
	}
	return out
}
