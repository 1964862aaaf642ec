package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/catalog"
	"github.com/abasto-labs/savings-api/internal/geo"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func oaxacaPriceList() catalog.PriceList {
	return catalog.Split([]snapshot.CatalogEntry{
		{VendorID: 10, Zone: "México", SuperCatalogID: 77, BasePrice: dec("100"), Percentage: dec("0")},
		{VendorID: 11, Zone: "México", SuperCatalogID: 77, BasePrice: dec("90"), Percentage: dec("10")},
		{VendorID: 20, Zone: "Oaxaca", SuperCatalogID: 77, BasePrice: dec("80"), Percentage: dec("0")},
		{VendorID: 21, Zone: "Jalisco", SuperCatalogID: 77, BasePrice: dec("70"), Percentage: dec("0")},
	})
}

func TestEnrichFanOut(t *testing.T) {
	// Product 77 ordered from an Oaxaca point of sale: both national
	// vendors and the Oaxaca vendor pair, the Jalisco vendor does not.
	zones := geo.ZoneIndex{1: "Oaxaca"}
	orders := []snapshot.OrderLine{
		{PointOfSaleID: 1, OrderID: 500, SuperCatalogID: 77, UnitsOrdered: dec("2"), IncumbentPrice: dec("95"), IncumbentVendorID: 9},
	}

	got := Enrich(orders, zones, oaxacaPriceList())
	if len(got) != 3 {
		t.Fatalf("candidates = %d, want 3", len(got))
	}
	if got[0].VendorID != 20 || got[0].National {
		t.Fatalf("first candidate = vendor %d national=%v, want regional vendor 20", got[0].VendorID, got[0].National)
	}
	for _, c := range got {
		if c.VendorID == 21 {
			t.Fatal("vendor 21 sells in Jalisco only, must not pair with an Oaxaca order")
		}
	}
}

func TestEnrichComputesTotals(t *testing.T) {
	zones := geo.ZoneIndex{1: "Oaxaca"}
	orders := []snapshot.OrderLine{
		{PointOfSaleID: 1, OrderID: 500, SuperCatalogID: 77, UnitsOrdered: dec("2"), IncumbentPrice: dec("95"), IncumbentVendorID: 9},
	}

	byVendor := make(map[int64]CandidateOffer)
	for _, c := range Enrich(orders, zones, oaxacaPriceList()) {
		byVendor[c.VendorID] = c
	}

	if got := byVendor[11].TotalVendorPrice; !got.Equal(dec("198")) {
		t.Fatalf("vendor 11 total = %s, want 198", got)
	}
	if got := byVendor[20].TotalVendorPrice; !got.Equal(dec("160")) {
		t.Fatalf("vendor 20 total = %s, want 160", got)
	}
	if got := byVendor[10].IncumbentTotal; !got.Equal(dec("190")) {
		t.Fatalf("incumbent total = %s, want 190", got)
	}
	if zone := byVendor[10].GeoZone; zone != "Oaxaca" {
		t.Fatalf("geo zone = %q, want Oaxaca", zone)
	}
}

func TestEnrichDropsNonPositiveUnits(t *testing.T) {
	zones := geo.ZoneIndex{1: "Oaxaca"}
	orders := []snapshot.OrderLine{
		{PointOfSaleID: 1, OrderID: 500, SuperCatalogID: 77, UnitsOrdered: dec("0"), IncumbentPrice: dec("95")},
		{PointOfSaleID: 1, OrderID: 501, SuperCatalogID: 77, UnitsOrdered: dec("-3"), IncumbentPrice: dec("95")},
	}

	if got := Enrich(orders, zones, oaxacaPriceList()); len(got) != 0 {
		t.Fatalf("candidates = %d, want 0 for returned or cancelled lines", len(got))
	}
}

func TestEnrichUnknownPosStillMatchesNational(t *testing.T) {
	// A point of sale without an address resolves to the empty zone:
	// national vendors still compete, regional ones cannot.
	orders := []snapshot.OrderLine{
		{PointOfSaleID: 99, OrderID: 500, SuperCatalogID: 77, UnitsOrdered: dec("1"), IncumbentPrice: dec("95")},
	}

	got := Enrich(orders, geo.ZoneIndex{}, oaxacaPriceList())
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want the 2 national vendors", len(got))
	}
	for _, c := range got {
		if !c.National {
			t.Fatalf("vendor %d paired regionally for a pos without a zone", c.VendorID)
		}
		if c.GeoZone != "" {
			t.Fatalf("geo zone = %q, want empty", c.GeoZone)
		}
	}
}
