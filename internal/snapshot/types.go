package snapshot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/relations"
)

// Logical table names used in warnings, metrics and the snapshot endpoint.
const (
	TablePosAddresses = "pos_addresses"
	TableOrders       = "orders"
	TableCatalog      = "catalog"
	TableRelations    = "relations"
	TableVendors      = "vendors"
	TableMinPurchase  = "min_purchase"
)

// PosAddress is one row of the point-of-sale address table.
type PosAddress struct {
	PointOfSaleID int64
	Address       string
	Country       string
}

// OrderLine is one delivered purchase-order line. IncumbentPrice is the
// unit price actually paid to the incumbent distributor and
// IncumbentVendorID identifies that distributor. Both carry their own
// field from load time, so candidate vendor data can never collide with
// them in later joins.
type OrderLine struct {
	PointOfSaleID     int64
	OrderID           int64
	SuperCatalogID    int64
	UnitsOrdered      decimal.Decimal
	IncumbentPrice    decimal.Decimal
	IncumbentVendorID int64
}

// CatalogEntry is one vendor price-list row. Zone holds the raw zone
// label; the literal "México" marks a national price list entry.
type CatalogEntry struct {
	VendorID       int64
	Zone           string
	SuperCatalogID int64
	BasePrice      decimal.Decimal
	Percentage     decimal.Decimal
}

// VendorInfo is one row of the optional vendor directory.
type VendorInfo struct {
	VendorID           int64
	Name               string
	DrugManufacturerID int64
}

// MinPurchase is one row of the optional minimum-purchase threshold table.
type MinPurchase struct {
	VendorID    int64
	Name        string
	MinPurchase decimal.Decimal
}

// Warning reports an input table whose header lacks required columns. The
// table loads empty so downstream stages degrade to empty results instead
// of failing the run.
type Warning struct {
	Table   string   `json:"table"`
	Missing []string `json:"missing"`
}

func (w Warning) String() string {
	return fmt.Sprintf("table %s is missing columns: %s", w.Table, strings.Join(w.Missing, ", "))
}

// Snapshot bundles every input table of one analysis run. Tables are
// immutable once loaded; every derived result is a pure function of the
// snapshot contents.
type Snapshot struct {
	Addresses    []PosAddress
	Orders       []OrderLine
	Catalog      []CatalogEntry
	Relations    []relations.Relation
	Vendors      []VendorInfo
	MinPurchases []MinPurchase

	// Fingerprint is the hex SHA-256 over name and raw bytes of every
	// present input file, in fixed file order. Identical input bytes
	// always yield an identical fingerprint.
	Fingerprint string

	Warnings []Warning
}

// Counts reports the number of rows loaded per table.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		TablePosAddresses: len(s.Addresses),
		TableOrders:       len(s.Orders),
		TableCatalog:      len(s.Catalog),
		TableRelations:    len(s.Relations),
		TableVendors:      len(s.Vendors),
		TableMinPurchase:  len(s.MinPurchases),
	}
}
