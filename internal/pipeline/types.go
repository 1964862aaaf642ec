package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/relations"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// Classification labels one candidate offer within its
// (point of sale, order, product) group.
type Classification string

const (
	// ClassIncumbentMinimum marks rows where the group's minimum
	// incumbent price is strictly lower than this vendor offer.
	ClassIncumbentMinimum Classification = "incumbent-minimum"
	// ClassVendorMinimum marks the group's cheapest vendor offer.
	ClassVendorMinimum Classification = "vendor-minimum"
	// ClassVendorNonMinimum marks vendor offers beaten within their group.
	ClassVendorNonMinimum Classification = "vendor-non-minimum"
)

// Valid reports whether s is one of the three classification labels.
func (c Classification) Valid() bool {
	switch c {
	case ClassIncumbentMinimum, ClassVendorMinimum, ClassVendorNonMinimum:
		return true
	}
	return false
}

// CandidateOffer is one admissible (order line, vendor offer) pairing.
// Incumbent fields describe the distributor that actually fulfilled the
// line; vendor fields describe the competing catalog offer.
type CandidateOffer struct {
	PointOfSaleID     int64             `json:"point_of_sale_id"`
	OrderID           int64             `json:"order_id"`
	SuperCatalogID    int64             `json:"super_catalog_id"`
	GeoZone           string            `json:"geo_zone"`
	UnitsOrdered      decimal.Decimal   `json:"units_ordered"`
	IncumbentVendorID int64             `json:"incumbent_vendor_id"`
	IncumbentPrice    decimal.Decimal   `json:"incumbent_price"`
	IncumbentTotal    decimal.Decimal   `json:"incumbent_total"`
	VendorID          int64             `json:"vendor_id"`
	UnitVendorPrice   decimal.Decimal   `json:"unit_vendor_price"`
	TotalVendorPrice  decimal.Decimal   `json:"total_vendor_price"`
	National          bool              `json:"national"`
	Status            *relations.Status `json:"status"`
}

// ClassifiedOffer is a candidate offer with its price classification.
type ClassifiedOffer struct {
	CandidateOffer
	Classification Classification `json:"classification"`
}

// Result is the immutable output of one pipeline run. Offers and
// Warnings are pure functions of the snapshot bytes; RunID and
// ComputedAt are stamped by the caller that owns the run.
type Result struct {
	RunID       uuid.UUID          `json:"run_id"`
	Fingerprint string             `json:"fingerprint"`
	ComputedAt  time.Time          `json:"computed_at"`
	Offers      []ClassifiedOffer  `json:"offers"`
	Warnings    []snapshot.Warning `json:"warnings"`
}
