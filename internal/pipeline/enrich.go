package pipeline

import (
	"github.com/abasto-labs/savings-api/internal/catalog"
	"github.com/abasto-labs/savings-api/internal/geo"
	"github.com/abasto-labs/savings-api/internal/pricing"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// Enrich produces every admissible (order line, vendor offer) pairing.
// Regional vendors compete only for orders placed from their own zone;
// national vendors compete for every order of their product. Order lines
// with non-positive units are dropped before pairing. Regional pairings
// come first, then national, and within each block rows keep order line
// load order crossed with offer load order, so output order is a pure
// function of input order.
func Enrich(orders []snapshot.OrderLine, zones geo.ZoneIndex, list catalog.PriceList) []CandidateOffer {
	national := list.NationalByProduct()
	regional := list.RegionalByProductZone()

	out := make([]CandidateOffer, 0, len(orders))
	for _, line := range orders {
		if !line.UnitsOrdered.IsPositive() {
			continue
		}
		zone := zones[line.PointOfSaleID]
		key := catalog.ProductZone{SuperCatalogID: line.SuperCatalogID, Zone: zone}
		for _, offer := range regional[key] {
			out = append(out, newCandidate(line, zone, offer, false))
		}
	}
	for _, line := range orders {
		if !line.UnitsOrdered.IsPositive() {
			continue
		}
		zone := zones[line.PointOfSaleID]
		for _, offer := range national[line.SuperCatalogID] {
			out = append(out, newCandidate(line, zone, offer, true))
		}
	}
	return out
}

func newCandidate(line snapshot.OrderLine, zone string, offer catalog.Offer, national bool) CandidateOffer {
	return CandidateOffer{
		PointOfSaleID:     line.PointOfSaleID,
		OrderID:           line.OrderID,
		SuperCatalogID:    line.SuperCatalogID,
		GeoZone:           zone,
		UnitsOrdered:      line.UnitsOrdered,
		IncumbentVendorID: line.IncumbentVendorID,
		IncumbentPrice:    line.IncumbentPrice,
		IncumbentTotal:    pricing.LineTotal(line.UnitsOrdered, line.IncumbentPrice),
		VendorID:          offer.VendorID,
		UnitVendorPrice:   offer.UnitPrice,
		TotalVendorPrice:  pricing.LineTotal(line.UnitsOrdered, offer.UnitPrice),
		National:          national,
	}
}
