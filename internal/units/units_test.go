package units

import "testing"

func TestToGrams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		quantity float64
		unit     Unit
		want     float64
	}{
		{"kilogram scales by 1000", 1, Kilogram, 1000},
		{"gram passes through", 250, Gram, 250},
		{"liter assumes unit density", 1, Liter, 1000},
		{"milliliter assumes unit density", 330, Milliliter, 330},
		{"piece passes through", 3, Piece, 3},
		{"box passes through", 2, Box, 2},
		{"bag passes through", 5, Bag, 5},
		{"unknown unit passes through", 7, Unit("crate"), 7},
		{"zero quantity", 0, Kilogram, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ToGrams(tt.quantity, tt.unit); got != tt.want {
				t.Fatalf("ToGrams(%v, %q) = %v, want %v", tt.quantity, tt.unit, got, tt.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	for _, unit := range All {
		if !Valid(unit) {
			t.Fatalf("Valid(%q) = false, want true", unit)
		}
	}
	if Valid(Unit("stone")) {
		t.Fatal("Valid(\"stone\") = true, want false")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  Unit
	}{
		{"trims and lowers", "  KG  ", Kilogram},
		{"keeps valid unit", "piece", Piece},
		{"empty falls back to grams", "", Gram},
		{"unknown falls back to grams", "barrel", Gram},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.value); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
