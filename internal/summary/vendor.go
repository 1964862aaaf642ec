package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/pricing"
	"github.com/abasto-labs/savings-api/internal/relations"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// VendorSavings is one row of the per-vendor savings summary: the vendor's
// competing offers totalled against the incumbent baseline of each group
// it competes in.
type VendorSavings struct {
	VendorID        int64           `json:"vendor_id"`
	Name            string          `json:"name,omitempty"`
	StatusLabel     string          `json:"status_label"`
	UniqueProducts  int             `json:"unique_products"`
	AffectedOrders  int             `json:"affected_orders"`
	BetterPriceRows int             `json:"better_price_rows"`
	IncumbentValue  decimal.Decimal `json:"incumbent_value"`
	VendorValue     decimal.Decimal `json:"vendor_value"`
	Savings         decimal.Decimal `json:"savings"`
	SavingsPct      decimal.Decimal `json:"savings_pct"`
	Opportunity     string          `json:"opportunity"`
	MinPurchase     decimal.Decimal `json:"min_purchase"`
}

// Vendors builds the per-vendor savings summary. A competing row counts
// only when its group has an incumbent-minimum row to compare against;
// vendors with no countable rows (incumbent value zero) are excluded.
// Rows are sorted by absolute savings, descending, stable.
func Vendors(offers []pipeline.ClassifiedOffer, directory []snapshot.VendorInfo, thresholds []snapshot.MinPurchase) []VendorSavings {
	baseline := incumbentIndex(offers)
	rows := competing(offers)

	names := make(map[int64]string, len(directory))
	for _, v := range directory {
		names[v.VendorID] = v.Name
	}
	minPurchase := make(map[int64]decimal.Decimal, len(thresholds))
	for _, m := range thresholds {
		minPurchase[m.VendorID] = m.MinPurchase
	}

	byVendor := make(map[int64][]pipeline.ClassifiedOffer)
	var order []int64
	for _, o := range rows {
		if _, seen := byVendor[o.VendorID]; !seen {
			order = append(order, o.VendorID)
		}
		byVendor[o.VendorID] = append(byVendor[o.VendorID], o)
	}

	out := make([]VendorSavings, 0, len(order))
	for _, vendorID := range order {
		var (
			incumbentValue  decimal.Decimal
			vendorValue     decimal.Decimal
			betterPriceRows int
		)
		products := make(map[int64]struct{})
		orders := make(map[int64]struct{})

		vendorRows := byVendor[vendorID]
		for _, row := range vendorRows {
			pair, ok := baseline[keyOf(row)]
			if !ok {
				continue
			}
			incumbentValue = incumbentValue.Add(pair.IncumbentTotal)
			vendorValue = vendorValue.Add(row.TotalVendorPrice)
			products[row.SuperCatalogID] = struct{}{}
			orders[row.OrderID] = struct{}{}
			if row.TotalVendorPrice.LessThan(pair.IncumbentTotal) {
				betterPriceRows++
			}
		}

		if !incumbentValue.IsPositive() {
			continue
		}

		savings := pricing.Savings(incumbentValue, vendorValue)
		pct := pricing.SavingsPercent(incumbentValue, vendorValue)
		out = append(out, VendorSavings{
			VendorID:        vendorID,
			Name:            names[vendorID],
			StatusLabel:     relations.Label(vendorRows[0].Status),
			UniqueProducts:  len(products),
			AffectedOrders:  len(orders),
			BetterPriceRows: betterPriceRows,
			IncumbentValue:  incumbentValue,
			VendorValue:     vendorValue,
			Savings:         savings,
			SavingsPct:      pct,
			Opportunity:     vendorOpportunity(pct),
			MinPurchase:     minPurchase[vendorID],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Savings.Abs().GreaterThan(out[j].Savings.Abs())
	})
	return out
}
