package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/relations"
)

// Input file names inside the snapshot directory.
const (
	FilePosAddresses = "pos_address.csv"
	FileOrders       = "orders_delivered_pos_vendor_geozone.csv"
	FileCatalog      = "vendors_catalog.csv"
	FileRelations    = "vendor_pos_relations.csv"
	FileVendors      = "vendors_dm.csv"
	FileMinPurchase  = "minimum_purchase.csv"
)

// Load eagerly reads every input file under dir and returns the fully
// materialized snapshot. The vendor directory and minimum-purchase files
// are optional and load as empty tables when absent. A required file that
// is absent or not valid CSV fails the whole load. A file that is present
// but lacks required columns loads as an empty table plus a Warning, so
// the pipeline degrades instead of failing.
func Load(dir string) (*Snapshot, error) {
	snap := &Snapshot{}
	hasher := sha256.New()

	rows, _, err := readFile(filepath.Join(dir, FilePosAddresses), hasher, true)
	if err != nil {
		return nil, err
	}
	addresses, warn, err := parseAddresses(rows)
	if err != nil {
		return nil, err
	}
	snap.Addresses = addresses
	snap.Warnings = appendWarning(snap.Warnings, warn)

	rows, _, err = readFile(filepath.Join(dir, FileOrders), hasher, true)
	if err != nil {
		return nil, err
	}
	orders, warn, err := parseOrders(rows)
	if err != nil {
		return nil, err
	}
	snap.Orders = orders
	snap.Warnings = appendWarning(snap.Warnings, warn)

	rows, _, err = readFile(filepath.Join(dir, FileCatalog), hasher, true)
	if err != nil {
		return nil, err
	}
	catalog, warn, err := parseCatalog(rows)
	if err != nil {
		return nil, err
	}
	snap.Catalog = catalog
	snap.Warnings = appendWarning(snap.Warnings, warn)

	rows, _, err = readFile(filepath.Join(dir, FileRelations), hasher, true)
	if err != nil {
		return nil, err
	}
	rels, warn, err := parseRelations(rows)
	if err != nil {
		return nil, err
	}
	snap.Relations = rels
	snap.Warnings = appendWarning(snap.Warnings, warn)

	rows, present, err := readFile(filepath.Join(dir, FileVendors), hasher, false)
	if err != nil {
		return nil, err
	}
	if present {
		vendors, warn, err := parseVendors(rows)
		if err != nil {
			return nil, err
		}
		snap.Vendors = vendors
		snap.Warnings = appendWarning(snap.Warnings, warn)
	}

	rows, present, err = readFile(filepath.Join(dir, FileMinPurchase), hasher, false)
	if err != nil {
		return nil, err
	}
	if present {
		minPurchases, warn, err := parseMinPurchases(rows)
		if err != nil {
			return nil, err
		}
		snap.MinPurchases = minPurchases
		snap.Warnings = appendWarning(snap.Warnings, warn)
	}

	snap.Fingerprint = hex.EncodeToString(hasher.Sum(nil))
	return snap, nil
}

// readFile reads one input file, feeding its name and raw bytes to the
// fingerprint hasher, and parses it as CSV. Absent optional files report
// present=false with no error.
func readFile(path string, hasher io.Writer, required bool) ([][]string, bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return nil, false, fmt.Errorf("required input %s: %w", filepath.Base(path), err)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	name := filepath.Base(path)
	_, _ = hasher.Write([]byte(name))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write(raw)
	_, _ = hasher.Write([]byte{0})

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, true, fmt.Errorf("parse %s: %w", name, err)
	}
	return records, true, nil
}

// columns maps a header row to column indices so fields are addressed by
// name; column order and extra columns are free.
type columns map[string]int

func indexColumns(headerRow []string) columns {
	cols := make(columns, len(headerRow))
	for i, name := range headerRow {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// pick returns the index of the first name present in the header,
// allowing legacy column aliases.
func (c columns) pick(names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := c[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func parseAddresses(rows [][]string) ([]PosAddress, *Warning, error) {
	var cols columns
	if len(rows) > 0 {
		cols = indexColumns(rows[0])
	}
	pos, okPos := cols.pick("point_of_sale_id")
	addr, okAddr := cols.pick("address")
	country, okCountry := cols.pick("country")

	var missing []string
	if !okPos {
		missing = append(missing, "point_of_sale_id")
	}
	if !okAddr {
		missing = append(missing, "address")
	}
	if !okCountry {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return nil, &Warning{Table: TablePosAddresses, Missing: missing}, nil
	}

	out := make([]PosAddress, 0, len(rows)-1)
	for i, row := range rows[1:] {
		id, err := parseID(row[pos])
		if err != nil {
			return nil, nil, fmt.Errorf("%s row %d: point_of_sale_id: %w", FilePosAddresses, i+2, err)
		}
		out = append(out, PosAddress{
			PointOfSaleID: id,
			Address:       strings.TrimSpace(row[addr]),
			Country:       strings.TrimSpace(row[country]),
		})
	}
	return out, nil, nil
}

func parseOrders(rows [][]string) ([]OrderLine, *Warning, error) {
	var cols columns
	if len(rows) > 0 {
		cols = indexColumns(rows[0])
	}
	pos, okPos := cols.pick("point_of_sale_id")
	order, okOrder := cols.pick("order_id")
	product, okProduct := cols.pick("super_catalog_id")
	units, okUnits := cols.pick("units_ordered", "unidades_pedidas")
	price, okPrice := cols.pick("incumbent_price", "precio_minimo")
	vendor, okVendor := cols.pick("vendor_id")

	var missing []string
	if !okPos {
		missing = append(missing, "point_of_sale_id")
	}
	if !okOrder {
		missing = append(missing, "order_id")
	}
	if !okProduct {
		missing = append(missing, "super_catalog_id")
	}
	if !okUnits {
		missing = append(missing, "units_ordered")
	}
	if !okPrice {
		missing = append(missing, "incumbent_price")
	}
	if !okVendor {
		missing = append(missing, "vendor_id")
	}
	if len(missing) > 0 {
		return nil, &Warning{Table: TableOrders, Missing: missing}, nil
	}

	out := make([]OrderLine, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := OrderLine{}
		var err error
		if line.PointOfSaleID, err = parseID(row[pos]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: point_of_sale_id: %w", FileOrders, i+2, err)
		}
		if line.OrderID, err = parseID(row[order]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: order_id: %w", FileOrders, i+2, err)
		}
		if line.SuperCatalogID, err = parseID(row[product]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: super_catalog_id: %w", FileOrders, i+2, err)
		}
		if line.UnitsOrdered, err = parseDecimal(row[units]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: units_ordered: %w", FileOrders, i+2, err)
		}
		if line.IncumbentPrice, err = parseDecimal(row[price]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: incumbent_price: %w", FileOrders, i+2, err)
		}
		if line.IncumbentVendorID, err = parseID(row[vendor]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: vendor_id: %w", FileOrders, i+2, err)
		}
		out = append(out, line)
	}
	return out, nil, nil
}

func parseCatalog(rows [][]string) ([]CatalogEntry, *Warning, error) {
	var cols columns
	if len(rows) > 0 {
		cols = indexColumns(rows[0])
	}
	vendor, okVendor := cols.pick("vendor_id")
	zone, okZone := cols.pick("name")
	product, okProduct := cols.pick("super_catalog_id")
	base, okBase := cols.pick("base_price")
	pct, okPct := cols.pick("percentage")

	var missing []string
	if !okVendor {
		missing = append(missing, "vendor_id")
	}
	if !okZone {
		missing = append(missing, "name")
	}
	if !okProduct {
		missing = append(missing, "super_catalog_id")
	}
	if !okBase {
		missing = append(missing, "base_price")
	}
	if !okPct {
		missing = append(missing, "percentage")
	}
	if len(missing) > 0 {
		return nil, &Warning{Table: TableCatalog, Missing: missing}, nil
	}

	out := make([]CatalogEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		entry := CatalogEntry{Zone: strings.TrimSpace(row[zone])}
		var err error
		if entry.VendorID, err = parseID(row[vendor]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: vendor_id: %w", FileCatalog, i+2, err)
		}
		if entry.SuperCatalogID, err = parseID(row[product]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: super_catalog_id: %w", FileCatalog, i+2, err)
		}
		if entry.BasePrice, err = parseDecimal(row[base]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: base_price: %w", FileCatalog, i+2, err)
		}
		if entry.Percentage, err = parsePercentage(row[pct]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: percentage: %w", FileCatalog, i+2, err)
		}
		out = append(out, entry)
	}
	return out, nil, nil
}

func parseRelations(rows [][]string) ([]relations.Relation, *Warning, error) {
	var cols columns
	if len(rows) > 0 {
		cols = indexColumns(rows[0])
	}
	vendor, okVendor := cols.pick("vendor_id")
	pos, okPos := cols.pick("point_of_sale_id")
	status, okStatus := cols.pick("status")

	var missing []string
	if !okVendor {
		missing = append(missing, "vendor_id")
	}
	if !okPos {
		missing = append(missing, "point_of_sale_id")
	}
	if !okStatus {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return nil, &Warning{Table: TableRelations, Missing: missing}, nil
	}

	out := make([]relations.Relation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rel := relations.Relation{Status: parseStatus(row[status])}
		var err error
		if rel.VendorID, err = parseID(row[vendor]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: vendor_id: %w", FileRelations, i+2, err)
		}
		if rel.PointOfSaleID, err = parseID(row[pos]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: point_of_sale_id: %w", FileRelations, i+2, err)
		}
		out = append(out, rel)
	}
	return out, nil, nil
}

func parseVendors(rows [][]string) ([]VendorInfo, *Warning, error) {
	var cols columns
	if len(rows) > 0 {
		cols = indexColumns(rows[0])
	}
	vendor, okVendor := cols.pick("vendor_id", "client_id")
	name, okName := cols.pick("name")
	dm, okDM := cols.pick("drug_manufacturer_id")

	var missing []string
	if !okVendor {
		missing = append(missing, "vendor_id")
	}
	if !okName {
		missing = append(missing, "name")
	}
	if !okDM {
		missing = append(missing, "drug_manufacturer_id")
	}
	if len(missing) > 0 {
		return nil, &Warning{Table: TableVendors, Missing: missing}, nil
	}

	out := make([]VendorInfo, 0, len(rows)-1)
	for i, row := range rows[1:] {
		info := VendorInfo{Name: strings.TrimSpace(row[name])}
		var err error
		if info.VendorID, err = parseID(row[vendor]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: vendor_id: %w", FileVendors, i+2, err)
		}
		if info.DrugManufacturerID, err = parseOptionalID(row[dm]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: drug_manufacturer_id: %w", FileVendors, i+2, err)
		}
		out = append(out, info)
	}
	return out, nil, nil
}

func parseMinPurchases(rows [][]string) ([]MinPurchase, *Warning, error) {
	var cols columns
	if len(rows) > 0 {
		cols = indexColumns(rows[0])
	}
	vendor, okVendor := cols.pick("vendor_id")
	name, okName := cols.pick("name")
	minCol, okMin := cols.pick("min_purchase")

	var missing []string
	if !okVendor {
		missing = append(missing, "vendor_id")
	}
	if !okName {
		missing = append(missing, "name")
	}
	if !okMin {
		missing = append(missing, "min_purchase")
	}
	if len(missing) > 0 {
		return nil, &Warning{Table: TableMinPurchase, Missing: missing}, nil
	}

	out := make([]MinPurchase, 0, len(rows)-1)
	for i, row := range rows[1:] {
		mp := MinPurchase{Name: strings.TrimSpace(row[name])}
		var err error
		if mp.VendorID, err = parseID(row[vendor]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: vendor_id: %w", FileMinPurchase, i+2, err)
		}
		if mp.MinPurchase, err = parseOptionalDecimal(row[minCol]); err != nil {
			return nil, nil, fmt.Errorf("%s row %d: min_purchase: %w", FileMinPurchase, i+2, err)
		}
		out = append(out, mp)
	}
	return out, nil, nil
}

func appendWarning(warnings []Warning, w *Warning) []Warning {
	if w == nil {
		return warnings
	}
	return append(warnings, *w)
}

func parseID(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return id, nil
}

// parseOptionalID tolerates blanks in the optional tables; anything else
// must be an integer.
func parseOptionalID(raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return parseID(raw)
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, fmt.Errorf("empty numeric value")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number: %q", raw)
	}
	return d, nil
}

// parseOptionalDecimal tolerates blanks in the optional tables.
func parseOptionalDecimal(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(raw)
}

// parsePercentage treats a missing markup as zero. Blank and NaN both
// count as missing; any other non-numeric value is a data error.
func parsePercentage(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") {
		return decimal.Zero, nil
	}
	return parseDecimal(trimmed)
}

// parseStatus coerces a status value to an integer code, accepting
// integral floats. Non-coercible values yield an undefined status rather
// than an error.
func parseStatus(raw string) relations.Status {
	trimmed := strings.TrimSpace(raw)
	if code, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return relations.Status{Code: code, Defined: true}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return relations.Status{Code: int64(f), Defined: true}
	}
	return relations.Status{}
}
