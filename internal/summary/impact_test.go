package summary_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/summary"
)

func TestActivationImpact(t *testing.T) {
	offers := []pipeline.ClassifiedOffer{
		// Vendor 5 is pending at POS 1: wins product 10 (saves 200) and
		// loses money on product 12 (gap not counted).
		co(1, 1, 10, 90, "1000", "1100", pipeline.ClassIncumbentMinimum),
		withStatus(co(1, 1, 10, 5, "1000", "800", pipeline.ClassVendorMinimum), 2),
		withStatus(co(1, 2, 12, 5, "500", "700", pipeline.ClassIncumbentMinimum), 2),
		// Vendor 6 is active, vendor 7 has no relation: both excluded.
		withStatus(co(1, 1, 10, 6, "1000", "900", pipeline.ClassVendorNonMinimum), 1),
		co(1, 2, 12, 7, "500", "450", pipeline.ClassVendorMinimum),
		// Vendor 8 is rejected at POS 2 and saves 50.
		withStatus(co(2, 3, 14, 8, "350", "300", pipeline.ClassVendorMinimum), 0),
	}

	got := summary.ActivationImpact(offers)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, int64(5), first.VendorID)
	require.Equal(t, int64(1), first.PointOfSaleID)
	require.Equal(t, "Pending", first.StatusLabel)
	require.Equal(t, 1, first.WinningProducts)
	require.True(t, first.PotentialSavings.Equal(dec("200")))
	require.Equal(t, 2, first.UniqueProducts)
	require.Equal(t, 2, first.AffectedOrders)

	second := got[1]
	require.Equal(t, int64(8), second.VendorID)
	require.Equal(t, int64(2), second.PointOfSaleID)
	require.Equal(t, "Rejected", second.StatusLabel)
	require.True(t, second.PotentialSavings.Equal(dec("50")))
}

func TestActivationImpactIgnoresUndefinedStatus(t *testing.T) {
	undefined := co(1, 1, 10, 5, "100", "90", pipeline.ClassVendorMinimum)
	undefined.Status = nil

	require.Empty(t, summary.ActivationImpact([]pipeline.ClassifiedOffer{undefined}))
}
