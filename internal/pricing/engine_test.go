package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestUnitSellPrice(t *testing.T) {
	got := UnitSellPrice(dec("100"), dec("10"))
	if !got.Equal(dec("110")) {
		t.Fatalf("expected 110 got %s", got)
	}
}

func TestUnitSellPriceZeroMarkup(t *testing.T) {
	got := UnitSellPrice(dec("100"), decimal.Zero)
	if !got.Equal(dec("100")) {
		t.Fatalf("expected 100 got %s", got)
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(dec("3"), dec("5.50"))
	if !got.Equal(dec("16.50")) {
		t.Fatalf("expected 16.50 got %s", got)
	}
}

func TestSavingsPercent(t *testing.T) {
	got := SavingsPercent(dec("200"), dec("150"))
	if !got.Equal(dec("25")) {
		t.Fatalf("expected 25 got %s", got)
	}
	if !SavingsPercent(decimal.Zero, dec("10")).IsZero() {
		t.Fatal("expected zero percent for zero incumbent value")
	}
	neg := SavingsPercent(dec("100"), dec("120"))
	if !neg.Equal(dec("-20")) {
		t.Fatalf("expected -20 got %s", neg)
	}
}
