// Package costing implements the cost arithmetic behind the recipe
// calculator: unit-cost derivation for ingredients, line-item pricing,
// nested-recipe resolution and recipe aggregation.
package costing

import (
	"math"

	"recipecost/internal/units"
	"recipecost/models"
)

// DeriveCostPerUnit computes the price of one purchase unit from the total
// price paid and the quantity bought. The result is the only source for an
// ingredient's CostPerUnit field.
func DeriveCostPerUnit(cost, quantity float64) (float64, error) {
	if !isFinite(cost) || !isFinite(quantity) {
		return 0, InvalidInput("cost and quantity must be finite numbers")
	}
	if quantity <= 0 {
		return 0, InvalidInput("quantity must be greater than zero")
	}
	if cost < 0 {
		return 0, InvalidInput("cost must not be negative")
	}
	return cost / quantity, nil
}

// LineCostForIngredient prices an ingredient-type line item. The requested
// quantity is taken in whatever unit the line was entered in; no conversion
// against the ingredient's purchase unit is applied, so unit compatibility is
// the caller's responsibility.
func LineCostForIngredient(costPerUnit, quantity float64) float64 {
	return costPerUnit * quantity
}

// LineCostForRecipe prices a line item that consumes another recipe. The
// requested quantity is converted to grams, mapped onto the referenced
// recipe's grams-per-portion, and charged at its stored cost per portion.
// Resolution is one level deep: the referenced recipe's aggregates are
// trusted as current, never re-walked.
func LineCostForRecipe(referenced models.Recipe, quantity float64, unit units.Unit) (float64, error) {
	if referenced.NumberOfPortions <= 0 || referenced.BatchSizeInGrams <= 0 {
		return 0, InvalidInput("recipe %q has no batch size or portions to scale against", referenced.Name)
	}

	gramsRequested := units.ToGrams(quantity, unit)
	gramsPerPortion := referenced.BatchSizeInGrams / referenced.NumberOfPortions
	portionsConsumed := gramsRequested / gramsPerPortion

	return referenced.CostPerPortion * portionsConsumed, nil
}

// Aggregate recomputes a recipe's derived snapshot from its current line
// items and portion count. All three outputs are written together; no code
// path may patch one of them individually.
func Aggregate(recipe *models.Recipe) error {
	if recipe.NumberOfPortions <= 0 {
		return InvalidInput("number of portions must be greater than zero")
	}

	totalCost := 0.0
	batchGrams := 0.0
	for _, line := range recipe.LineItems {
		totalCost += line.Cost
		batchGrams += units.ToGrams(line.Quantity, line.Unit)
	}

	recipe.TotalCost = totalCost
	recipe.BatchSizeInGrams = batchGrams
	recipe.CostPerPortion = totalCost / recipe.NumberOfPortions
	return nil
}

// DetectCycle reports whether linking candidateID into parentID would make
// the parent reachable from itself through recipe-type line items. The walk
// covers the supplied recipe set only; missing references terminate a path.
func DetectCycle(parentID, candidateID uint, recipes []models.Recipe) error {
	if parentID == candidateID {
		return ErrCircularReference
	}

	byID := make(map[uint]models.Recipe, len(recipes))
	for _, recipe := range recipes {
		byID[recipe.ID] = recipe
	}

	visited := make(map[uint]bool)
	var reaches func(fromID uint) bool
	reaches = func(fromID uint) bool {
		if fromID == parentID {
			return true
		}
		if visited[fromID] {
			return false
		}
		visited[fromID] = true

		recipe, ok := byID[fromID]
		if !ok {
			return false
		}
		for _, line := range recipe.LineItems {
			if !line.IsRecipe {
				continue
			}
			if reaches(line.IngredientID) {
				return true
			}
		}
		return false
	}

	if reaches(candidateID) {
		return ErrCircularReference
	}
	return nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
