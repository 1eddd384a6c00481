package units

import "strings"

// Unit identifies how an ingredient quantity was measured when it was
// purchased or added to a recipe.
type Unit string

const (
	Kilogram   Unit = "kg"
	Gram       Unit = "g"
	Liter      Unit = "l"
	Milliliter Unit = "ml"
	Piece      Unit = "piece"
	Box        Unit = "box"
	Bag        Unit = "bag"
)

// All lists every supported unit in display order.
var All = []Unit{Kilogram, Gram, Liter, Milliliter, Piece, Box, Bag}

// Valid reports whether the value names a supported unit.
func Valid(value Unit) bool {
	switch value {
	case Kilogram, Gram, Liter, Milliliter, Piece, Box, Bag:
		return true
	default:
		return false
	}
}

// Normalize trims and lower-cases the raw value and falls back to grams when
// it does not name a supported unit.
func Normalize(value string) Unit {
	unit := Unit(strings.ToLower(strings.TrimSpace(value)))
	if !Valid(unit) {
		return Gram
	}
	return unit
}

// ToGrams converts a measured quantity to grams, the canonical mass unit all
// batch sizing is expressed in. Volumes assume a density of ~1 g/ml. Count
// units (piece, box, bag) have no mass conversion and pass through unchanged,
// as does any unrecognized unit; the function is total and never fails.
func ToGrams(quantity float64, unit Unit) float64 {
	switch unit {
	case Kilogram:
		return quantity * 1000.0
	case Gram:
		return quantity
	case Liter:
		return quantity * 1000.0
	case Milliliter:
		return quantity
	default:
		return quantity
	}
}
