package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/pricing"
	"github.com/abasto-labs/savings-api/internal/relations"
)

// Recommendation proposes switching one (product, order) purchase from
// its incumbent distributor to the cheapest candidate vendor.
type Recommendation struct {
	SuperCatalogID       int64           `json:"super_catalog_id"`
	OrderID              int64           `json:"order_id"`
	PointOfSaleID        int64           `json:"point_of_sale_id"`
	Units                decimal.Decimal `json:"units"`
	IncumbentVendorID    int64           `json:"incumbent_vendor_id"`
	RecommendedVendorID  int64           `json:"recommended_vendor_id"`
	StatusLabel          string          `json:"status_label"`
	CurrentUnitPrice     decimal.Decimal `json:"current_unit_price"`
	RecommendedUnitPrice decimal.Decimal `json:"recommended_unit_price"`
	Savings              decimal.Decimal `json:"savings"`
	SavingsPct           decimal.Decimal `json:"savings_pct"`
	Priority             string          `json:"priority"`
}

// Recommendations emits one row per (product, order) group whose best
// alternative saves at least minPct (a fraction, e.g. 0.1 for 10%) of
// the group's current value. The best alternative is the first row with
// the group's minimal total. Rows are sorted by savings descending,
// stable.
func Recommendations(offers []pipeline.ClassifiedOffer, minPct decimal.Decimal) []Recommendation {
	byPair := make(map[pairKey][]pipeline.ClassifiedOffer)
	var order []pairKey
	for _, o := range offers {
		key := keyOf(o)
		if _, seen := byPair[key]; !seen {
			order = append(order, key)
		}
		byPair[key] = append(byPair[key], o)
	}

	out := make([]Recommendation, 0, len(order))
	for _, key := range order {
		group := byPair[key]
		current := group[0]

		best := group[0]
		for _, o := range group[1:] {
			if o.TotalVendorPrice.LessThan(best.TotalVendorPrice) {
				best = o
			}
		}

		savings := pricing.Savings(current.IncumbentTotal, best.TotalVendorPrice)
		fraction := decimal.Zero
		if current.IncumbentTotal.IsPositive() {
			fraction = savings.Div(current.IncumbentTotal)
		}
		if fraction.LessThan(minPct) {
			continue
		}

		out = append(out, Recommendation{
			SuperCatalogID:       key.SuperCatalogID,
			OrderID:              key.OrderID,
			PointOfSaleID:        key.PointOfSaleID,
			Units:                current.UnitsOrdered,
			IncumbentVendorID:    current.IncumbentVendorID,
			RecommendedVendorID:  best.VendorID,
			StatusLabel:          relations.Label(best.Status),
			CurrentUnitPrice:     best.IncumbentPrice,
			RecommendedUnitPrice: best.UnitVendorPrice,
			Savings:              savings,
			SavingsPct:           fraction.Mul(hundred),
			Priority:             priority(savings),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Savings.GreaterThan(out[j].Savings)
	})
	return out
}
