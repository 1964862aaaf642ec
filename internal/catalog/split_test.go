package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/abasto-labs/savings-api/internal/catalog"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSplitPartitionsOnNationalSentinel(t *testing.T) {
	entries := []snapshot.CatalogEntry{
		{VendorID: 10, Zone: "México", SuperCatalogID: 7, BasePrice: dec("100"), Percentage: dec("10")},
		{VendorID: 11, Zone: "Oaxaca", SuperCatalogID: 7, BasePrice: dec("90"), Percentage: dec("0")},
		{VendorID: 12, Zone: "Jalisco", SuperCatalogID: 8, BasePrice: dec("80"), Percentage: dec("5")},
	}

	pl := catalog.Split(entries)
	require.Len(t, pl.National, 1)
	require.Len(t, pl.Regional, 2)
	require.Equal(t, int64(10), pl.National[0].VendorID)
	require.True(t, pl.National[0].UnitPrice.Equal(dec("110")))
	require.True(t, pl.Regional[1].UnitPrice.Equal(dec("84")))
}

func TestSplitIndexes(t *testing.T) {
	pl := catalog.Split([]snapshot.CatalogEntry{
		{VendorID: 10, Zone: "México", SuperCatalogID: 7, BasePrice: dec("100")},
		{VendorID: 13, Zone: "México", SuperCatalogID: 7, BasePrice: dec("105")},
		{VendorID: 11, Zone: "Oaxaca", SuperCatalogID: 7, BasePrice: dec("90")},
		{VendorID: 11, Zone: "Oaxaca", SuperCatalogID: 8, BasePrice: dec("50")},
	})

	national := pl.NationalByProduct()
	require.Len(t, national[7], 2)
	require.Equal(t, int64(10), national[7][0].VendorID, "load order preserved")

	regional := pl.RegionalByProductZone()
	require.Len(t, regional[catalog.ProductZone{SuperCatalogID: 7, Zone: "Oaxaca"}], 1)
	require.Len(t, regional[catalog.ProductZone{SuperCatalogID: 8, Zone: "Oaxaca"}], 1)
	require.Empty(t, regional[catalog.ProductZone{SuperCatalogID: 7, Zone: "Jalisco"}])
}
