package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/pricing"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// NationalZone is the catalog zone label marking a price list entry that
// applies in every geographic zone.
const NationalZone = "México"

// Offer is one priced catalog line with its computed unit sell price.
type Offer struct {
	VendorID       int64
	Zone           string
	SuperCatalogID int64
	UnitPrice      decimal.Decimal
}

// PriceList partitions the vendor catalog into national and regional
// price lists.
type PriceList struct {
	National []Offer
	Regional []Offer
}

// ProductZone keys regional offers by product and zone.
type ProductZone struct {
	SuperCatalogID int64
	Zone           string
}

// Split partitions catalog entries on the national sentinel and computes
// every entry's unit sell price. Entry order is preserved within each
// subset.
func Split(entries []snapshot.CatalogEntry) PriceList {
	var pl PriceList
	for _, e := range entries {
		offer := Offer{
			VendorID:       e.VendorID,
			Zone:           e.Zone,
			SuperCatalogID: e.SuperCatalogID,
			UnitPrice:      pricing.UnitSellPrice(e.BasePrice, e.Percentage),
		}
		if e.Zone == NationalZone {
			pl.National = append(pl.National, offer)
		} else {
			pl.Regional = append(pl.Regional, offer)
		}
	}
	return pl
}

// NationalByProduct indexes national offers by product id, preserving
// load order within each product.
func (pl PriceList) NationalByProduct() map[int64][]Offer {
	ix := make(map[int64][]Offer, len(pl.National))
	for _, o := range pl.National {
		ix[o.SuperCatalogID] = append(ix[o.SuperCatalogID], o)
	}
	return ix
}

// RegionalByProductZone indexes regional offers by (product id, zone),
// preserving load order within each key.
func (pl PriceList) RegionalByProductZone() map[ProductZone][]Offer {
	ix := make(map[ProductZone][]Offer, len(pl.Regional))
	for _, o := range pl.Regional {
		key := ProductZone{SuperCatalogID: o.SuperCatalogID, Zone: o.Zone}
		ix[key] = append(ix[key], o)
	}
	return ix
}
