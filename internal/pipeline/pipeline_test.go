package pipeline_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/relations"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Addresses: []snapshot.PosAddress{
			{PointOfSaleID: 1, Address: "Av. Reforma 10, Centro, Oax., MX", Country: "MX"},
		},
		Orders: []snapshot.OrderLine{
			{PointOfSaleID: 1, OrderID: 500, SuperCatalogID: 77, UnitsOrdered: dec("1"), IncumbentPrice: dec("95"), IncumbentVendorID: 9},
		},
		Catalog: []snapshot.CatalogEntry{
			{VendorID: 10, Zone: "México", SuperCatalogID: 77, BasePrice: dec("100"), Percentage: dec("0")},
			{VendorID: 11, Zone: "México", SuperCatalogID: 77, BasePrice: dec("90"), Percentage: dec("10")},
			{VendorID: 20, Zone: "Oaxaca", SuperCatalogID: 77, BasePrice: dec("80"), Percentage: dec("0")},
			{VendorID: 21, Zone: "Oaxaca", SuperCatalogID: 77, BasePrice: dec("85"), Percentage: dec("0")},
		},
		Relations: []relations.Relation{
			{VendorID: 10, PointOfSaleID: 1, Status: relations.Status{Code: relations.CodeActive, Defined: true}},
		},
		Fingerprint: "a1b2c3",
	}
}

func TestComputeClassifiesSnapshot(t *testing.T) {
	res, err := pipeline.Compute(sampleSnapshot())
	require.NoError(t, err)
	require.Equal(t, "a1b2c3", res.Fingerprint)
	require.Len(t, res.Offers, 4)

	byVendor := make(map[int64]pipeline.ClassifiedOffer)
	for _, o := range res.Offers {
		byVendor[o.VendorID] = o
	}

	require.Equal(t, pipeline.ClassVendorMinimum, byVendor[20].Classification)
	require.Equal(t, pipeline.ClassVendorNonMinimum, byVendor[21].Classification)
	require.Equal(t, pipeline.ClassIncumbentMinimum, byVendor[10].Classification)
	require.Equal(t, pipeline.ClassIncumbentMinimum, byVendor[11].Classification)

	require.NotNil(t, byVendor[10].Status)
	require.Equal(t, relations.CodeActive, byVendor[10].Status.Code)
	require.Nil(t, byVendor[20].Status)
}

func TestComputeIsDeterministic(t *testing.T) {
	first, err := pipeline.Compute(sampleSnapshot())
	require.NoError(t, err)
	second, err := pipeline.Compute(sampleSnapshot())
	require.NoError(t, err)

	require.Equal(t, first.Offers, second.Offers)
	require.Equal(t, first.Warnings, second.Warnings)
	require.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestComputeDegradedSnapshot(t *testing.T) {
	snap := sampleSnapshot()
	snap.Orders = nil
	snap.Warnings = []snapshot.Warning{{Table: snapshot.TableOrders, Missing: []string{"units_ordered"}}}

	res, err := pipeline.Compute(snap)
	require.NoError(t, err)
	require.Empty(t, res.Offers)
	require.Equal(t, snap.Warnings, res.Warnings)
}

func TestComputeNilSnapshot(t *testing.T) {
	_, err := pipeline.Compute(nil)
	require.ErrorIs(t, err, pipeline.ErrNilSnapshot)
}
