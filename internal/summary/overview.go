package summary

import (
	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/pricing"
	"github.com/abasto-labs/savings-api/internal/relations"
)

// Overview carries the executive KPIs of one analysis scope.
type Overview struct {
	TotalCurrent           decimal.Decimal `json:"total_current"`
	TotalOptimal           decimal.Decimal `json:"total_optimal"`
	MaxSaving              decimal.Decimal `json:"max_saving"`
	SavingPct              decimal.Decimal `json:"saving_pct"`
	VendorsWithOpportunity int             `json:"vendors_with_opportunity"`
	OptimizableProducts    int             `json:"optimizable_products"`
	OrdersAnalyzed         int             `json:"orders_analyzed"`
	ActiveVendors          int             `json:"active_vendors"`
	PendingOrRejected      int             `json:"pending_or_rejected"`
}

// ComputeOverview derives the executive KPIs from classified offers.
// TotalCurrent counts each group's incumbent value once, TotalOptimal
// takes each group's cheapest vendor total, and the vendor counts are
// distinct vendor ids per condition.
func ComputeOverview(offers []pipeline.ClassifiedOffer) Overview {
	first := firstRowIndex(offers)

	groupMin := make(map[pairKey]decimal.Decimal, len(first))
	for _, o := range offers {
		key := keyOf(o)
		min, ok := groupMin[key]
		if !ok || o.TotalVendorPrice.LessThan(min) {
			groupMin[key] = o.TotalVendorPrice
		}
	}

	var totalCurrent, totalOptimal decimal.Decimal
	for key, row := range first {
		totalCurrent = totalCurrent.Add(row.IncumbentTotal)
		totalOptimal = totalOptimal.Add(groupMin[key])
	}

	winners := make(map[int64]struct{})
	optimizable := make(map[int64]struct{})
	ordersSeen := make(map[int64]struct{})
	active := make(map[int64]struct{})
	pendingOrRejected := make(map[int64]struct{})
	for _, o := range offers {
		if o.Classification == pipeline.ClassVendorMinimum {
			winners[o.VendorID] = struct{}{}
		}
		if o.IncumbentTotal.GreaterThan(o.TotalVendorPrice) {
			optimizable[o.SuperCatalogID] = struct{}{}
		}
		ordersSeen[o.OrderID] = struct{}{}
		if o.Status != nil && o.Status.Defined {
			switch o.Status.Code {
			case relations.CodeActive:
				active[o.VendorID] = struct{}{}
			case relations.CodeRejected, relations.CodePending:
				pendingOrRejected[o.VendorID] = struct{}{}
			}
		}
	}

	return Overview{
		TotalCurrent:           totalCurrent,
		TotalOptimal:           totalOptimal,
		MaxSaving:              pricing.Savings(totalCurrent, totalOptimal),
		SavingPct:              pricing.SavingsPercent(totalCurrent, totalOptimal),
		VendorsWithOpportunity: len(winners),
		OptimizableProducts:    len(optimizable),
		OrdersAnalyzed:         len(ordersSeen),
		ActiveVendors:          len(active),
		PendingOrRejected:      len(pendingOrRejected),
	}
}
