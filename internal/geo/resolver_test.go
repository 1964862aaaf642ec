package geo

import (
	"testing"

	"github.com/abasto-labs/savings-api/internal/snapshot"
)

func TestZoneFromAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		want    string
	}{
		{name: "four segments", address: "123 Main St, Springfield, Jal., MX", want: "Jal."},
		{name: "two segments", address: "Springfield, MX", want: "Springfield"},
		{name: "single segment", address: "Downtown", want: ""},
		{name: "empty", address: "", want: ""},
		{name: "untrimmed segment", address: "Calle 5,  Oaxaca , MX", want: "Oaxaca"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ZoneFromAddress(tc.address); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("Jal."); got != "Jalisco" {
		t.Fatalf("expected Jalisco got %q", got)
	}
	if got := Normalize("Méx."); got != "CDMX" {
		t.Fatalf("expected CDMX got %q", got)
	}
	if got := Normalize("Oaxaca"); got != "Oaxaca" {
		t.Fatalf("unmatched zone should pass through, got %q", got)
	}
	if got := Normalize(""); got != "" {
		t.Fatalf("empty zone should pass through, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("123 Main St, Springfield, Jal., MX"); got != "Jalisco" {
		t.Fatalf("expected Jalisco got %q", got)
	}
	if got := Resolve("Downtown"); got != "" {
		t.Fatalf("expected empty zone got %q", got)
	}
}

func TestBuildZoneIndex(t *testing.T) {
	ix := BuildZoneIndex([]snapshot.PosAddress{
		{PointOfSaleID: 1, Address: "Av. Centro 1, Col. Sur, Oax., MX"},
		{PointOfSaleID: 2, Address: "Downtown"},
	})
	if got := ix[1]; got != "Oaxaca" {
		t.Fatalf("expected Oaxaca got %q", got)
	}
	if got := ix[2]; got != "" {
		t.Fatalf("expected empty zone got %q", got)
	}
	if _, ok := ix[3]; ok {
		t.Fatalf("unexpected entry for unknown point of sale")
	}
}
