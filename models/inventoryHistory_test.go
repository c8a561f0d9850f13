package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeRemovedQuantity_FlooredAtZero(t *testing.T) {
	cases := []struct {
		previous, quantity, want string
	}{
		{"10", "3", "7"},
		{"5", "8", "0"},
		{"0", "1", "0"},
		{"2.5", "2.5", "0"},
		{"1.001", "1", "0.001"},
	}
	for _, tc := range cases {
		got := ComputeRemovedQuantity(dec(tc.previous), dec(tc.quantity))
		if !got.Equal(dec(tc.want)) {
			t.Fatalf("removed(prev=%s qty=%s): expected %s, got %s", tc.previous, tc.quantity, tc.want, got)
		}
	}
}

// The "added" variant stores a caller-supplied total verbatim, even when the
// caller's arithmetic is inconsistent.
func TestResultingQuantity_AddedTrustsCallerTotal(t *testing.T) {
	qty := dec("5")
	prev := dec("10")
	total := dec("999")
	item := NewInventoryItem{Quantity: &qty, PreviousQuantity: &prev, TotalQuantity: &total}

	if got := item.ResultingQuantity(MovementTypeAdded); !got.Equal(total) {
		t.Fatalf("expected caller total %s stored verbatim, got %s", total, got)
	}
}

func TestResultingQuantity_AddedFallsBackToSum(t *testing.T) {
	qty := dec("5")
	prev := dec("10")
	item := NewInventoryItem{Quantity: &qty, PreviousQuantity: &prev}

	if got := item.ResultingQuantity(MovementTypeAdded); !got.Equal(dec("15")) {
		t.Fatalf("expected 15, got %s", got)
	}
}

func TestResultingQuantity_RemovedIgnoresCallerTotal(t *testing.T) {
	qty := dec("8")
	prev := dec("5")
	total := dec("42")
	item := NewInventoryItem{Quantity: &qty, PreviousQuantity: &prev, TotalQuantity: &total}

	if got := item.ResultingQuantity(MovementTypeRemoved); !got.Equal(decimal.Zero) {
		t.Fatalf("expected 0 (floored), got %s", got)
	}
}

func TestNewInventoryItem_Validate(t *testing.T) {
	tiny := dec("0.0005")
	ok := dec("0.001")
	neg := dec("-1")

	item := NewInventoryItem{Quantity: &tiny, PreviousQuantity: &neg}
	fields := item.Validate("0", true)
	if _, found := fields["items[0].quantity"]; !found {
		t.Fatalf("expected quantity granularity error, got %v", fields)
	}
	if _, found := fields["items[0].previous_quantity"]; !found {
		t.Fatalf("expected previous_quantity error, got %v", fields)
	}
	if _, found := fields["items[0].total_quantity"]; !found {
		t.Fatalf("expected total_quantity required error, got %v", fields)
	}

	prev := dec("0")
	item = NewInventoryItem{Quantity: &ok, PreviousQuantity: &prev}
	if fields := item.Validate("0", false); len(fields) != 0 {
		t.Fatalf("expected clean validation, got %v", fields)
	}
}
