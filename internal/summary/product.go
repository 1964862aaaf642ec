package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/pricing"
	"github.com/abasto-labs/savings-api/internal/relations"
)

// ProductSavings compares one (product, order) pair's incumbent purchase
// against the single best competing vendor offer.
type ProductSavings struct {
	SuperCatalogID     int64           `json:"super_catalog_id"`
	OrderID            int64           `json:"order_id"`
	PointOfSaleID      int64           `json:"point_of_sale_id"`
	Units              decimal.Decimal `json:"units"`
	IncumbentVendorID  int64           `json:"incumbent_vendor_id"`
	IncumbentUnitPrice decimal.Decimal `json:"incumbent_unit_price"`
	IncumbentTotal     decimal.Decimal `json:"incumbent_total"`
	VendorOptions      int             `json:"vendor_options"`
	BestVendorID       int64           `json:"best_vendor_id"`
	BestStatusLabel    string          `json:"best_status_label"`
	BestUnitPrice      decimal.Decimal `json:"best_unit_price"`
	BestTotal          decimal.Decimal `json:"best_total"`
	Savings            decimal.Decimal `json:"savings"`
	SavingsPct         decimal.Decimal `json:"savings_pct"`
	Opportunity        string          `json:"opportunity"`
}

// Products builds the per-product savings summary: one row per (product,
// order) pair that has both an incumbent-minimum baseline row and at
// least one competing offer. The best offer is the first one with the
// pair's minimal total. Rows are sorted by absolute savings, descending,
// stable.
func Products(offers []pipeline.ClassifiedOffer) []ProductSavings {
	baseline := incumbentIndex(offers)
	rows := competing(offers)

	byPair := make(map[pairKey][]pipeline.ClassifiedOffer)
	var order []pairKey
	for _, o := range rows {
		key := keyOf(o)
		if _, seen := byPair[key]; !seen {
			order = append(order, key)
		}
		byPair[key] = append(byPair[key], o)
	}

	out := make([]ProductSavings, 0, len(order))
	for _, key := range order {
		pair, ok := baseline[key]
		if !ok {
			continue
		}

		options := byPair[key]
		best := options[0]
		for _, o := range options[1:] {
			if o.TotalVendorPrice.LessThan(best.TotalVendorPrice) {
				best = o
			}
		}

		savings := pricing.Savings(pair.IncumbentTotal, best.TotalVendorPrice)
		pct := pricing.SavingsPercent(pair.IncumbentTotal, best.TotalVendorPrice)
		out = append(out, ProductSavings{
			SuperCatalogID:     key.SuperCatalogID,
			OrderID:            key.OrderID,
			PointOfSaleID:      key.PointOfSaleID,
			Units:              pair.UnitsOrdered,
			IncumbentVendorID:  pair.IncumbentVendorID,
			IncumbentUnitPrice: pair.IncumbentPrice,
			IncumbentTotal:     pair.IncumbentTotal,
			VendorOptions:      len(options),
			BestVendorID:       best.VendorID,
			BestStatusLabel:    relations.Label(best.Status),
			BestUnitPrice:      best.UnitVendorPrice,
			BestTotal:          best.TotalVendorPrice,
			Savings:            savings,
			SavingsPct:         pct,
			Opportunity:        productOpportunity(pct),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Savings.Abs().GreaterThan(out[j].Savings.Abs())
	})
	return out
}

// VendorFrequency counts how often a vendor is the best option across
// the per-product summary.
type VendorFrequency struct {
	VendorID       int64           `json:"vendor_id"`
	StatusLabel    string          `json:"status_label"`
	ProductsAsBest int             `json:"products_as_best"`
	TotalSavings   decimal.Decimal `json:"total_savings"`
	MeanSavings    decimal.Decimal `json:"mean_savings"`
}

// TopVendors aggregates the per-product summary by best vendor, sorted
// by total savings descending.
func TopVendors(rows []ProductSavings) []VendorFrequency {
	type vendorStatus struct {
		vendorID int64
		label    string
	}

	byVendor := make(map[vendorStatus]*VendorFrequency)
	var order []vendorStatus
	for _, r := range rows {
		key := vendorStatus{vendorID: r.BestVendorID, label: r.BestStatusLabel}
		f, ok := byVendor[key]
		if !ok {
			f = &VendorFrequency{VendorID: r.BestVendorID, StatusLabel: r.BestStatusLabel}
			byVendor[key] = f
			order = append(order, key)
		}
		f.ProductsAsBest++
		f.TotalSavings = f.TotalSavings.Add(r.Savings)
	}

	out := make([]VendorFrequency, 0, len(order))
	for _, key := range order {
		f := byVendor[key]
		f.MeanSavings = f.TotalSavings.Div(decimal.NewFromInt(int64(f.ProductsAsBest)))
		out = append(out, *f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSavings.GreaterThan(out[j].TotalSavings)
	})
	return out
}
