package summary_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/summary"
)

func TestRecommendations(t *testing.T) {
	baseline := co(1, 1, 10, 90, "10000", "11000", pipeline.ClassIncumbentMinimum)
	baseline.IncumbentVendorID = 90
	baseline.UnitsOrdered = dec("40")

	best := withStatus(co(1, 1, 10, 5, "10000", "5000", pipeline.ClassVendorMinimum), 1)
	best.IncumbentPrice = dec("250")
	best.UnitVendorPrice = dec("125")

	offers := []pipeline.ClassifiedOffer{
		// Saves 5000 of 10000: high priority.
		baseline,
		best,
		// Saves 600 of 1600: medium priority.
		co(1, 2, 11, 91, "1600", "1700", pipeline.ClassIncumbentMinimum),
		co(1, 2, 11, 6, "1600", "1000", pipeline.ClassVendorMinimum),
		// Saves 50 of 1000: below the 10% default cut-off.
		co(1, 3, 12, 92, "1000", "1200", pipeline.ClassIncumbentMinimum),
		co(1, 3, 12, 7, "1000", "950", pipeline.ClassVendorMinimum),
	}

	got := summary.Recommendations(offers, summary.DefaultMinSavingsFraction)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, int64(10), first.SuperCatalogID)
	require.True(t, first.Units.Equal(dec("40")))
	require.Equal(t, int64(90), first.IncumbentVendorID)
	require.Equal(t, int64(5), first.RecommendedVendorID)
	require.Equal(t, "Active", first.StatusLabel)
	require.True(t, first.CurrentUnitPrice.Equal(dec("250")))
	require.True(t, first.RecommendedUnitPrice.Equal(dec("125")))
	require.True(t, first.Savings.Equal(dec("5000")))
	require.True(t, first.SavingsPct.Equal(dec("50")))
	require.Equal(t, summary.OpportunityHigh, first.Priority)

	second := got[1]
	require.Equal(t, int64(11), second.SuperCatalogID)
	require.True(t, second.Savings.Equal(dec("600")))
	require.Equal(t, summary.OpportunityMedium, second.Priority)
}

func TestRecommendationsCustomThreshold(t *testing.T) {
	offers := []pipeline.ClassifiedOffer{
		co(1, 3, 12, 92, "1000", "1200", pipeline.ClassIncumbentMinimum),
		co(1, 3, 12, 7, "1000", "950", pipeline.ClassVendorMinimum),
	}

	require.Empty(t, summary.Recommendations(offers, summary.DefaultMinSavingsFraction))

	got := summary.Recommendations(offers, dec("0.01"))
	require.Len(t, got, 1)
	require.True(t, got[0].Savings.Equal(dec("50")))
	require.Equal(t, summary.OpportunityLow, got[0].Priority)
}

func TestRecommendationsZeroCurrentValue(t *testing.T) {
	// A pair whose incumbent value is zero has no savings fraction and
	// is never recommended at a positive threshold.
	offers := []pipeline.ClassifiedOffer{
		co(1, 4, 13, 8, "0", "50", pipeline.ClassVendorMinimum),
	}

	require.Empty(t, summary.Recommendations(offers, summary.DefaultMinSavingsFraction))
}
