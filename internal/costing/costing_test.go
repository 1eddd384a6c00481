package costing

import (
	"errors"
	"math"
	"testing"

	"recipecost/internal/units"
	"recipecost/models"
)

func TestDeriveCostPerUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cost     float64
		quantity float64
		want     float64
		wantErr  bool
	}{
		{"whole units", 50, 1000, 0.05, false},
		{"fractional quantity", 12, 0.5, 24, false},
		{"free ingredient", 0, 10, 0, false},
		{"zero quantity rejected", 10, 0, 0, true},
		{"negative quantity rejected", 10, -2, 0, true},
		{"negative cost rejected", -5, 2, 0, true},
		{"nan cost rejected", math.NaN(), 2, 0, true},
		{"infinite quantity rejected", 10, math.Inf(1), 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DeriveCostPerUnit(tt.cost, tt.quantity)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DeriveCostPerUnit(%v, %v) expected error", tt.cost, tt.quantity)
				}
				if !IsInvalidInput(err) {
					t.Fatalf("expected invalid input error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveCostPerUnit returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("DeriveCostPerUnit(%v, %v) = %v, want %v", tt.cost, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestLineCostForIngredient(t *testing.T) {
	t.Parallel()

	if got := LineCostForIngredient(0.05, 200); got != 10.0 {
		t.Fatalf("LineCostForIngredient(0.05, 200) = %v, want 10", got)
	}
	// The engine does not convert between the purchase unit and the line
	// unit; the raw quantity is priced as-is.
	if got := LineCostForIngredient(2, 3); got != 6.0 {
		t.Fatalf("LineCostForIngredient(2, 3) = %v, want 6", got)
	}
}

func TestLineCostForRecipe(t *testing.T) {
	t.Parallel()

	referenced := models.Recipe{
		Name:             "Base Sauce",
		CostPerPortion:   4.0,
		BatchSizeInGrams: 1000,
		NumberOfPortions: 10,
	}

	got, err := LineCostForRecipe(referenced, 300, units.Gram)
	if err != nil {
		t.Fatalf("LineCostForRecipe returned error: %v", err)
	}
	// 100 g per portion, 300 g requested => 3 portions at 4.0 each.
	if got != 12.0 {
		t.Fatalf("LineCostForRecipe = %v, want 12", got)
	}

	halfKilo, err := LineCostForRecipe(referenced, 0.5, units.Kilogram)
	if err != nil {
		t.Fatalf("LineCostForRecipe returned error: %v", err)
	}
	if halfKilo != 20.0 {
		t.Fatalf("LineCostForRecipe with kg = %v, want 20", halfKilo)
	}
}

func TestLineCostForRecipeRejectsDegenerateReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		referenced models.Recipe
	}{
		{"zero portions", models.Recipe{Name: "Empty", BatchSizeInGrams: 500}},
		{"zero batch size", models.Recipe{Name: "Weightless", NumberOfPortions: 4}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := LineCostForRecipe(tt.referenced, 100, units.Gram); !IsInvalidInput(err) {
				t.Fatalf("expected invalid input error, got %v", err)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	recipe := models.Recipe{
		Name:             "Kofta Platter",
		NumberOfPortions: 4,
		LineItems: []models.RecipeLineItem{
			{IngredientName: "Minced Beef", Quantity: 1, Unit: units.Kilogram, Cost: 8},
			{IngredientName: "Onion", Quantity: 200, Unit: units.Gram, Cost: 1},
			{IngredientName: "Sauce (recipe)", Quantity: 250, Unit: units.Milliliter, Cost: 1, IsRecipe: true},
		},
	}

	if err := Aggregate(&recipe); err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if recipe.TotalCost != 10 {
		t.Fatalf("TotalCost = %v, want 10", recipe.TotalCost)
	}
	if recipe.BatchSizeInGrams != 1450 {
		t.Fatalf("BatchSizeInGrams = %v, want 1450", recipe.BatchSizeInGrams)
	}
	if recipe.CostPerPortion != 2.5 {
		t.Fatalf("CostPerPortion = %v, want 2.5", recipe.CostPerPortion)
	}
}

func TestAggregateEmptyRecipe(t *testing.T) {
	t.Parallel()

	recipe := models.Recipe{Name: "Blank", NumberOfPortions: 2}
	if err := Aggregate(&recipe); err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if recipe.TotalCost != 0 || recipe.BatchSizeInGrams != 0 || recipe.CostPerPortion != 0 {
		t.Fatalf("expected zeroed aggregates, got %+v", recipe)
	}
}

func TestAggregateRejectsNonPositivePortions(t *testing.T) {
	t.Parallel()

	for _, portions := range []float64{0, -1} {
		recipe := models.Recipe{Name: "Bad", NumberOfPortions: portions}
		if err := Aggregate(&recipe); !IsInvalidInput(err) {
			t.Fatalf("Aggregate with portions=%v: expected invalid input error, got %v", portions, err)
		}
	}
}

func TestDetectCycle(t *testing.T) {
	t.Parallel()

	sauce := models.Recipe{Name: "Sauce"}
	sauce.ID = 1
	stew := models.Recipe{
		Name: "Stew",
		LineItems: []models.RecipeLineItem{
			{IngredientID: 1, IsRecipe: true},
		},
	}
	stew.ID = 2
	platter := models.Recipe{
		Name: "Platter",
		LineItems: []models.RecipeLineItem{
			{IngredientID: 2, IsRecipe: true},
		},
	}
	platter.ID = 3
	recipes := []models.Recipe{sauce, stew, platter}

	if err := DetectCycle(3, 3, recipes); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("self reference: expected ErrCircularReference, got %v", err)
	}
	// Platter -> Stew -> Sauce, so folding Platter back under Sauce closes a
	// transitive loop.
	if err := DetectCycle(1, 3, recipes); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("transitive cycle: expected ErrCircularReference, got %v", err)
	}
	if err := DetectCycle(2, 3, recipes); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("direct cycle: expected ErrCircularReference, got %v", err)
	}
	// Sauce has no recipe lines, so it can be folded into anything.
	if err := DetectCycle(3, 1, recipes); err != nil {
		t.Fatalf("leaf link rejected: %v", err)
	}
	if err := DetectCycle(2, 1, recipes); err != nil {
		t.Fatalf("existing leaf link rejected: %v", err)
	}
}
