package geo

import (
	"strings"

	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// abbreviations expands Mexican state abbreviations as they appear in
// point-of-sale addresses. Unmatched zones pass through unchanged.
var abbreviations = map[string]string{
	"B.C.S.": "Baja California Sur",
	"Qro.":   "Querétaro",
	"Jal.":   "Jalisco",
	"Pue.":   "Puebla",
	"Méx.":   "CDMX",
	"Oax.":   "Oaxaca",
	"Chih.":  "Chihuahua",
	"Coah.":  "Coahuila de Zaragoza",
	"Mich.":  "Michoacán de Ocampo",
	"Ver.":   "Veracruz de Ignacio de la Llave",
	"Chis.":  "Chiapas",
	"N.L.":   "Nuevo León",
	"Hgo.":   "Hidalgo",
	"Tlax.":  "Tlaxcala",
	"Tamps.": "Tamaulipas",
	"Yuc.":   "Yucatan",
	"Mor.":   "Morelos",
	"Sin.":   "Sinaloa",
	"S.L.P.": "San Luis Potosí",
	"Q.R.":   "Quintana Roo",
	"Dgo.":   "Durango",
	"B.C.":   "Baja California",
	"Gto.":   "Guanajuato",
	"Camp.":  "Campeche",
	"Tab.":   "Tabasco",
	"Son.":   "Sonora",
	"Gro.":   "Guerrero",
	"Zac.":   "Zacatecas",
	"Ags.":   "Aguascalientes",
	"Nay.":   "Nayarit",
}

// ZoneFromAddress extracts the raw zone from a comma-separated address:
// the trimmed second-to-last segment, or "" when fewer than two segments
// exist.
func ZoneFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-2])
}

// Normalize expands a known state abbreviation to its full name by exact
// match; anything else passes through unchanged.
func Normalize(zone string) string {
	if full, ok := abbreviations[zone]; ok {
		return full
	}
	return zone
}

// Resolve derives the normalized geographic zone for an address.
func Resolve(address string) string {
	return Normalize(ZoneFromAddress(address))
}

// ZoneIndex maps a point of sale to its resolved zone.
type ZoneIndex map[int64]string

// BuildZoneIndex resolves one zone per point of sale from the address
// table. A later row for the same point of sale replaces the earlier one.
func BuildZoneIndex(addresses []snapshot.PosAddress) ZoneIndex {
	ix := make(ZoneIndex, len(addresses))
	for _, a := range addresses {
		ix[a.PointOfSaleID] = Resolve(a.Address)
	}
	return ix
}
