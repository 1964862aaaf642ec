package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/abasto-labs/savings-api/internal/analytics"
	"github.com/abasto-labs/savings-api/internal/relations"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixtureSnapshot builds a one-pos snapshot whose four catalog offers
// classify as one vendor-minimum, one vendor-non-minimum and two
// incumbent-minimum rows.
func fixtureSnapshot(fingerprint string) *snapshot.Snapshot {
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
			{VendorID: 21, PointOfSaleID: 1, Status: relations.Status{Code: relations.CodePending, Defined: true}},
		},
		Vendors: []snapshot.VendorInfo{
			{VendorID: 20, Name: "Farmacia del Valle"},
		},
		Fingerprint: fingerprint,
	}
}

type stubLoader struct {
	calls int
	snap  *snapshot.Snapshot
	err   error
}

func (l *stubLoader) load(string) (*snapshot.Snapshot, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.snap, nil
}

func newService(loader *stubLoader) *analytics.Service {
	return &analytics.Service{
		Dir:  "testdata",
		Load: loader.load,
		Log:  zerolog.Nop(),
		Now:  func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestCurrentServesResidentAnalysis(t *testing.T) {
	loader := &stubLoader{snap: fixtureSnapshot("aaa")}
	svc := newService(loader)

	first, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Result.Offers, 4)
	require.Equal(t, "aaa", first.Result.Fingerprint)
	require.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), first.Result.ComputedAt)

	second, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, loader.calls)
}

func TestReloadReusesComputationForSameBytes(t *testing.T) {
	loader := &stubLoader{snap: fixtureSnapshot("aaa")}
	svc := newService(loader)

	first, err := svc.Current(context.Background())
	require.NoError(t, err)

	again, err := svc.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
	require.Same(t, first, again)

	loader.snap = fixtureSnapshot("bbb")
	changed, err := svc.Reload(context.Background())
	require.NoError(t, err)
	require.NotSame(t, first, changed)
	require.NotEqual(t, first.Result.RunID, changed.Result.RunID)
}

func TestCurrentRetriesAfterLoadError(t *testing.T) {
	boom := errors.New("parse orders_delivered_pos_vendor_geozone.csv: bad quoting")
	loader := &stubLoader{err: boom}
	svc := newService(loader)

	_, err := svc.Current(context.Background())
	require.ErrorIs(t, err, boom)

	loader.err = nil
	loader.snap = fixtureSnapshot("aaa")
	a, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, "aaa", a.Snapshot.Fingerprint)
	require.Equal(t, 2, loader.calls)
}

func TestReloadEvictsOldFingerprints(t *testing.T) {
	loader := &stubLoader{snap: fixtureSnapshot("aaa")}
	svc := newService(loader)
	svc.CacheSize = 1

	first, err := svc.Reload(context.Background())
	require.NoError(t, err)

	loader.snap = fixtureSnapshot("bbb")
	_, err = svc.Reload(context.Background())
	require.NoError(t, err)

	loader.snap = fixtureSnapshot("aaa")
	recomputed, err := svc.Reload(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first.Result.RunID, recomputed.Result.RunID)
}

func TestServiceNotConfigured(t *testing.T) {
	var nilSvc *analytics.Service
	_, err := nilSvc.Current(context.Background())
	require.Error(t, err)

	_, err = (&analytics.Service{}).Reload(context.Background())
	require.Error(t, err)
}
