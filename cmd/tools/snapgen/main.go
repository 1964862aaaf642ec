package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// snapgen writes a synthetic but coherent snapshot directory so the API can
// be exercised without a production export. The same seed always produces
// the same files, which keeps demo environments reproducible.
func main() {
	var (
		dir      = flag.String("dir", "snapshot", "output directory for the snapshot files")
		posCount = flag.Int("pos", 12, "points of sale to generate")
		vendors  = flag.Int("vendors", 8, "vendors to generate")
		products = flag.Int("products", 40, "distinct products to generate")
		orders   = flag.Int("orders", 300, "order lines to generate")
		seed     = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}
	log.Printf("Writing snapshot to %s", *dir)

	rng := rand.New(rand.NewSource(*seed))

	posIDs := make([]int64, 0, *posCount)
	for i := 0; i < *posCount; i++ {
		posIDs = append(posIDs, int64(i+1))
	}
	vendorIDs := make([]int64, 0, *vendors)
	for i := 0; i < *vendors; i++ {
		vendorIDs = append(vendorIDs, int64(101+i))
	}
	productIDs := make([]int64, 0, *products)
	listPrice := make(map[int64]float64, *products)
	for i := 0; i < *products; i++ {
		id := int64(1001 + i)
		productIDs = append(productIDs, id)
		listPrice[id] = 40 + rng.Float64()*860
	}

	writeCSV(*dir, snapshot.FilePosAddresses,
		[]string{"point_of_sale_id", "address", "country"},
		genAddresses(rng, posIDs))
	writeCSV(*dir, snapshot.FileOrders,
		[]string{"point_of_sale_id", "order_id", "super_catalog_id", "units_ordered", "incumbent_price", "vendor_id"},
		genOrders(rng, posIDs, productIDs, vendorIDs, listPrice, *orders))
	writeCSV(*dir, snapshot.FileCatalog,
		[]string{"vendor_id", "name", "super_catalog_id", "base_price", "percentage"},
		genCatalog(rng, vendorIDs, productIDs, listPrice))
	writeCSV(*dir, snapshot.FileRelations,
		[]string{"vendor_id", "point_of_sale_id", "status"},
		genRelations(rng, vendorIDs, posIDs))
	writeCSV(*dir, snapshot.FileVendors,
		[]string{"vendor_id", "name", "drug_manufacturer_id"},
		genVendors(rng, vendorIDs))
	writeCSV(*dir, snapshot.FileMinPurchase,
		[]string{"vendor_id", "name", "min_purchase"},
		genMinPurchases(rng, vendorIDs))

	log.Println("Snapshot generated successfully!")
}

// zones lists Mexican states the way they appear in point-of-sale
// addresses: the abbreviation goes in the address, the full name is what
// regional catalog coverage is keyed on.
var zones = []struct {
	Abbrev string
	Zone   string
	City   string
}{
	{"Oax.", "Oaxaca", "Oaxaca de Juárez"},
	{"Jal.", "Jalisco", "Guadalajara"},
	{"Pue.", "Puebla", "Puebla de Zaragoza"},
	{"Qro.", "Querétaro", "Santiago de Querétaro"},
	{"N.L.", "Nuevo León", "Monterrey"},
	{"Gto.", "Guanajuato", "León"},
	{"Méx.", "CDMX", "Ciudad de México"},
	{"Yuc.", "Yucatan", "Mérida"},
}

var streets = []string{
	"Av. Reforma",
	"Calle Hidalgo",
	"Av. Juárez",
	"Calle Morelos",
	"Blvd. Independencia",
	"Av. Universidad",
	"Calle Aldama",
	"Av. Madero",
}

var vendorNames = []string{
	"Farmacéutica del Bajío",
	"Droguería San Rafael",
	"Distribuidora La Central",
	"Abastos Médicos del Sur",
	"Farmacias Unidas de Occidente",
	"Comercial Santa Fe",
	"Proveedora del Golfo",
	"Distribuidora Zaragoza",
	"Droguería El Fénix",
	"Suministros Clínicos del Norte",
	"Farmacéutica Monte Albán",
	"Comercializadora del Pacífico",
}

func genAddresses(rng *rand.Rand, posIDs []int64) [][]string {
	rows := make([][]string, 0, len(posIDs))
	for i, id := range posIDs {
		zone := zones[i%len(zones)]
		street := streets[i%len(streets)]
		address := fmt.Sprintf("%s %d, %s, %s, MX", street, 1+rng.Intn(200), zone.City, zone.Abbrev)
		rows = append(rows, []string{formatID(id), address, "MX"})
	}
	return rows
}

func genOrders(rng *rand.Rand, posIDs, productIDs, vendorIDs []int64, listPrice map[int64]float64, total int) [][]string {
	rows := make([][]string, 0, total)
	orderID := int64(50000)
	for len(rows) < total {
		orderID++
		pos := posIDs[rng.Intn(len(posIDs))]
		lines := 1 + rng.Intn(4)
		for l := 0; l < lines && len(rows) < total; l++ {
			product := productIDs[rng.Intn(len(productIDs))]
			units := 1 + rng.Intn(20)
			// Incumbent unit price drifts around list so part of the book
			// is already cheap and part has savings headroom.
			price := listPrice[product] * (0.95 + rng.Float64()*0.15)
			vendor := vendorIDs[rng.Intn(len(vendorIDs))]
			rows = append(rows, []string{
				formatID(pos),
				formatID(orderID),
				formatID(product),
				strconv.Itoa(units),
				formatMoney(price),
				formatID(vendor),
			})
		}
	}
	return rows
}

func genCatalog(rng *rand.Rand, vendorIDs, productIDs []int64, listPrice map[int64]float64) [][]string {
	markups := []string{"0", "0", "0", "0", "5", "8", "10", "12"}
	rows := make([][]string, 0, len(vendorIDs)*len(productIDs))
	for i, vendor := range vendorIDs {
		zone := vendorZone(i)
		for _, product := range productIDs {
			if rng.Float64() >= 0.6 {
				continue
			}
			base := listPrice[product] * (0.72 + rng.Float64()*0.26)
			rows = append(rows, []string{
				formatID(vendor),
				zone,
				formatID(product),
				formatMoney(base),
				markups[rng.Intn(len(markups))],
			})
		}
	}
	return rows
}

func genRelations(rng *rand.Rand, vendorIDs, posIDs []int64) [][]string {
	statuses := []string{"0", "1", "1", "1", "2"}
	rows := make([][]string, 0, len(vendorIDs)*len(posIDs)/2)
	for _, vendor := range vendorIDs {
		for _, pos := range posIDs {
			// Pairs without a row stay unconnected, which is a state of
			// its own in the analysis.
			if rng.Float64() >= 0.55 {
				continue
			}
			rows = append(rows, []string{formatID(vendor), formatID(pos), statuses[rng.Intn(len(statuses))]})
		}
	}
	return rows
}

func genVendors(rng *rand.Rand, vendorIDs []int64) [][]string {
	rows := make([][]string, 0, len(vendorIDs))
	for i, vendor := range vendorIDs {
		dm := ""
		if rng.Float64() < 0.75 {
			dm = formatID(7000 + vendor)
		}
		rows = append(rows, []string{formatID(vendor), vendorName(i), dm})
	}
	return rows
}

func genMinPurchases(rng *rand.Rand, vendorIDs []int64) [][]string {
	rows := make([][]string, 0, len(vendorIDs))
	for i, vendor := range vendorIDs {
		min := ""
		if rng.Float64() < 0.5 {
			min = strconv.Itoa(1000 + rng.Intn(9)*500)
		}
		rows = append(rows, []string{formatID(vendor), vendorName(i), min})
	}
	return rows
}

// vendorZone makes the first two vendors national and spreads the rest over
// the regional zones.
func vendorZone(i int) string {
	if i < 2 {
		return "México"
	}
	return zones[(i-2)%len(zones)].Zone
}

func vendorName(i int) string {
	name := vendorNames[i%len(vendorNames)]
	if i >= len(vendorNames) {
		name = fmt.Sprintf("%s %d", name, i/len(vendorNames)+1)
	}
	return name
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeCSV(dir, name string, header []string, rows [][]string) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", name, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		log.Fatalf("write %s: %v", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		log.Fatalf("write %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close %s: %v", name, err)
	}
	fmt.Printf("Wrote %s (%d rows)\n", name, len(rows))
}
