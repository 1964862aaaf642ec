package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pricing"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// PosVendorTotal is the spend one point of sale placed with one incumbent
// distributor, with its share of the point of sale's total spend.
type PosVendorTotal struct {
	PointOfSaleID int64           `json:"point_of_sale_id"`
	VendorID      int64           `json:"vendor_id"`
	Total         decimal.Decimal `json:"total"`
	SharePct      decimal.Decimal `json:"share_pct"`
}

// PosPurchases totals raw order lines per (point of sale, incumbent
// vendor). Rows are sorted by point of sale ascending, then spend
// descending.
func PosPurchases(orders []snapshot.OrderLine) []PosVendorTotal {
	type posVendor struct {
		pos    int64
		vendor int64
	}

	totals := make(map[posVendor]decimal.Decimal)
	posTotals := make(map[int64]decimal.Decimal)
	var order []posVendor
	for _, line := range orders {
		key := posVendor{pos: line.PointOfSaleID, vendor: line.IncumbentVendorID}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		lineTotal := pricing.LineTotal(line.UnitsOrdered, line.IncumbentPrice)
		totals[key] = totals[key].Add(lineTotal)
		posTotals[line.PointOfSaleID] = posTotals[line.PointOfSaleID].Add(lineTotal)
	}

	out := make([]PosVendorTotal, 0, len(order))
	for _, key := range order {
		total := totals[key]
		share := decimal.Zero
		if posTotal := posTotals[key.pos]; posTotal.IsPositive() {
			share = total.Div(posTotal).Mul(hundred)
		}
		out = append(out, PosVendorTotal{
			PointOfSaleID: key.pos,
			VendorID:      key.vendor,
			Total:         total,
			SharePct:      share,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PointOfSaleID != out[j].PointOfSaleID {
			return out[i].PointOfSaleID < out[j].PointOfSaleID
		}
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// PosOrderStats summarizes one point of sale's ordering activity.
type PosOrderStats struct {
	PointOfSaleID  int64           `json:"point_of_sale_id"`
	OrderCount     int             `json:"order_count"`
	MeanOrderValue decimal.Decimal `json:"mean_order_value"`
}

// OrderStats computes, per point of sale, the number of distinct orders
// and the mean order value (an order's value is the sum of its line
// totals). Rows are sorted by point of sale ascending.
func OrderStats(orders []snapshot.OrderLine) []PosOrderStats {
	type posOrder struct {
		pos   int64
		order int64
	}

	orderTotals := make(map[posOrder]decimal.Decimal)
	for _, line := range orders {
		key := posOrder{pos: line.PointOfSaleID, order: line.OrderID}
		orderTotals[key] = orderTotals[key].Add(pricing.LineTotal(line.UnitsOrdered, line.IncumbentPrice))
	}

	counts := make(map[int64]int)
	sums := make(map[int64]decimal.Decimal)
	for key, total := range orderTotals {
		counts[key.pos]++
		sums[key.pos] = sums[key.pos].Add(total)
	}

	out := make([]PosOrderStats, 0, len(counts))
	for pos, n := range counts {
		out = append(out, PosOrderStats{
			PointOfSaleID:  pos,
			OrderCount:     n,
			MeanOrderValue: sums[pos].Div(decimal.NewFromInt(int64(n))),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PointOfSaleID < out[j].PointOfSaleID })
	return out
}
