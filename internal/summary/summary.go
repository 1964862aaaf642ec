// Package summary rolls classified offers up into the decision views
// consumed by the procurement dashboard: vendor and product savings
// summaries, point-of-sale purchase statistics, executive KPIs, switch
// recommendations, and vendor activation impact.
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pipeline"
)

// Opportunity tiers shared by the savings views. Each view applies its
// own thresholds; the labels are common.
const (
	OpportunityHigh   = "high"
	OpportunityMedium = "medium"
	OpportunityLow    = "low"
)

// DefaultMinSavingsFraction is the recommendation cut-off when the
// caller does not supply one: pairs saving less than 10% are not worth a
// vendor switch.
var DefaultMinSavingsFraction = decimal.RequireFromString("0.1")

var (
	hundred = decimal.NewFromInt(100)

	vendorHighPct    = decimal.NewFromInt(15)
	vendorMediumPct  = decimal.NewFromInt(5)
	productHighPct   = decimal.NewFromInt(20)
	productMediumPct = decimal.NewFromInt(10)

	priorityHighAmount   = decimal.NewFromInt(1000)
	priorityMediumAmount = decimal.NewFromInt(500)
)

// pairKey identifies one (point of sale, order, product) group.
type pairKey struct {
	PointOfSaleID  int64
	OrderID        int64
	SuperCatalogID int64
}

func keyOf(o pipeline.ClassifiedOffer) pairKey {
	return pairKey{PointOfSaleID: o.PointOfSaleID, OrderID: o.OrderID, SuperCatalogID: o.SuperCatalogID}
}

// ForPos narrows offers to one point of sale. A zero posID keeps the
// full set.
func ForPos(offers []pipeline.ClassifiedOffer, posID int64) []pipeline.ClassifiedOffer {
	if posID == 0 {
		return offers
	}
	out := make([]pipeline.ClassifiedOffer, 0, len(offers))
	for _, o := range offers {
		if o.PointOfSaleID == posID {
			out = append(out, o)
		}
	}
	return out
}

// competing keeps the rows that carry a concrete competing vendor offer.
func competing(offers []pipeline.ClassifiedOffer) []pipeline.ClassifiedOffer {
	out := make([]pipeline.ClassifiedOffer, 0, len(offers))
	for _, o := range offers {
		if o.Classification == pipeline.ClassVendorMinimum || o.Classification == pipeline.ClassVendorNonMinimum {
			out = append(out, o)
		}
	}
	return out
}

// incumbentIndex maps each group to its first incumbent-minimum row, the
// comparison baseline for the savings views. Groups without one are
// absent.
func incumbentIndex(offers []pipeline.ClassifiedOffer) map[pairKey]pipeline.ClassifiedOffer {
	ix := make(map[pairKey]pipeline.ClassifiedOffer)
	for _, o := range offers {
		if o.Classification != pipeline.ClassIncumbentMinimum {
			continue
		}
		key := keyOf(o)
		if _, ok := ix[key]; !ok {
			ix[key] = o
		}
	}
	return ix
}

// firstRowIndex maps each group to its first row in input order,
// whatever its classification.
func firstRowIndex(offers []pipeline.ClassifiedOffer) map[pairKey]pipeline.ClassifiedOffer {
	ix := make(map[pairKey]pipeline.ClassifiedOffer)
	for _, o := range offers {
		key := keyOf(o)
		if _, ok := ix[key]; !ok {
			ix[key] = o
		}
	}
	return ix
}

func vendorOpportunity(pct decimal.Decimal) string {
	switch {
	case pct.GreaterThan(vendorHighPct):
		return OpportunityHigh
	case pct.GreaterThan(vendorMediumPct):
		return OpportunityMedium
	default:
		return OpportunityLow
	}
}

func productOpportunity(pct decimal.Decimal) string {
	switch {
	case pct.GreaterThan(productHighPct):
		return OpportunityHigh
	case pct.GreaterThan(productMediumPct):
		return OpportunityMedium
	default:
		return OpportunityLow
	}
}

func priority(savings decimal.Decimal) string {
	switch {
	case savings.GreaterThan(priorityHighAmount):
		return OpportunityHigh
	case savings.GreaterThan(priorityMediumAmount):
		return OpportunityMedium
	default:
		return OpportunityLow
	}
}
