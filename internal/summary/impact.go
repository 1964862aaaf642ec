package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/relations"
)

// VendorImpact estimates what activating one pending or rejected vendor
// at one point of sale would unlock.
type VendorImpact struct {
	VendorID         int64           `json:"vendor_id"`
	PointOfSaleID    int64           `json:"point_of_sale_id"`
	StatusLabel      string          `json:"status_label"`
	WinningProducts  int             `json:"winning_products"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
	UniqueProducts   int             `json:"unique_products"`
	AffectedOrders   int             `json:"affected_orders"`
}

// ActivationImpact reports, per (vendor, point of sale) whose relation
// status is rejected or pending, the savings its offers would unlock:
// winning products are those where the vendor holds the group minimum,
// and potential savings sum the positive gaps between each group's first
// incumbent value and the vendor's total. Rows are sorted by potential
// savings descending, stable.
func ActivationImpact(offers []pipeline.ClassifiedOffer) []VendorImpact {
	type vendorPos struct {
		vendor int64
		pos    int64
	}

	first := firstRowIndex(offers)

	byPair := make(map[vendorPos][]pipeline.ClassifiedOffer)
	var order []vendorPos
	for _, o := range offers {
		if o.Status == nil || !o.Status.Defined {
			continue
		}
		if o.Status.Code != relations.CodeRejected && o.Status.Code != relations.CodePending {
			continue
		}
		key := vendorPos{vendor: o.VendorID, pos: o.PointOfSaleID}
		if _, seen := byPair[key]; !seen {
			order = append(order, key)
		}
		byPair[key] = append(byPair[key], o)
	}

	out := make([]VendorImpact, 0, len(order))
	for _, key := range order {
		rows := byPair[key]

		var potential decimal.Decimal
		winning := make(map[int64]struct{})
		products := make(map[int64]struct{})
		orders := make(map[int64]struct{})
		for _, row := range rows {
			if row.Classification == pipeline.ClassVendorMinimum {
				winning[row.SuperCatalogID] = struct{}{}
			}
			products[row.SuperCatalogID] = struct{}{}
			orders[row.OrderID] = struct{}{}

			current := first[keyOf(row)]
			if gap := current.IncumbentTotal.Sub(row.TotalVendorPrice); gap.IsPositive() {
				potential = potential.Add(gap)
			}
		}

		out = append(out, VendorImpact{
			VendorID:         key.vendor,
			PointOfSaleID:    key.pos,
			StatusLabel:      relations.Label(rows[0].Status),
			WinningProducts:  len(winning),
			PotentialSavings: potential,
			UniqueProducts:   len(products),
			AffectedOrders:   len(orders),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PotentialSavings.GreaterThan(out[j].PotentialSavings)
	})
	return out
}
