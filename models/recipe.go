package models

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"recipecost/internal/units"
)

// RecipeLineItem is one entry in a recipe's composition. It references either
// an Ingredient or another Recipe, discriminated by IsRecipe, and carries the
// monetary contribution computed when the line was added. The name is a
// snapshot taken at add time and is not kept in sync with renames.
type RecipeLineItem struct {
	IngredientID   uint       `json:"ingredient_id"`
	IngredientName string     `json:"ingredient_name"`
	Quantity       float64    `json:"quantity"`
	Unit           units.Unit `json:"unit"`
	Cost           float64    `json:"cost"`
	IsRecipe       bool       `json:"is_recipe"`
}

// Recipe composes ingredients and other recipes into a costed batch divided
// into portions. Only Name, TotalCost and the serialized Body are stored as
// columns; the structured content lives in the body blob and is hydrated on
// load. TotalCost, BatchSizeInGrams and CostPerPortion are derived together
// and replace the previous snapshot atomically.
type Recipe struct {
	gorm.Model
	Name      string  `gorm:"not null" json:"name"`
	TotalCost float64 `gorm:"not null" json:"total_cost"`
	Body      string  `gorm:"type:text" json:"-"`
	OwnerID   uint    `gorm:"not null;index" json:"owner_id"`
	Owner     *User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	LineItems        []RecipeLineItem `gorm:"-" json:"ingredients"`
	BatchSizeInGrams float64          `gorm:"-" json:"batch_size_in_grams"`
	NumberOfPortions float64          `gorm:"-" json:"number_of_portions"`
	CostPerPortion   float64          `gorm:"-" json:"cost_per_portion"`
}

// recipeBody is the persisted representation of a recipe's structured
// content. Every field of the in-memory Recipe that is not a dedicated
// column round-trips through it.
type recipeBody struct {
	Name             string           `json:"name"`
	LineItems        []RecipeLineItem `json:"ingredients"`
	TotalCost        float64          `json:"total_cost"`
	BatchSizeInGrams float64          `json:"batch_size_in_grams"`
	NumberOfPortions float64          `json:"number_of_portions"`
	CostPerPortion   float64          `json:"cost_per_portion"`
}

// EncodeBody serializes the recipe's structured content into the Body column
// and refreshes the denormalized TotalCost used for querying.
func (r *Recipe) EncodeBody() error {
	body := recipeBody{
		Name:             r.Name,
		LineItems:        r.LineItems,
		TotalCost:        r.TotalCost,
		BatchSizeInGrams: r.BatchSizeInGrams,
		NumberOfPortions: r.NumberOfPortions,
		CostPerPortion:   r.CostPerPortion,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	r.Body = string(raw)
	return nil
}

// DecodeBody hydrates the structured fields from the Body column. A missing
// or unparseable blob degrades to a minimal single-portion recipe built from
// the denormalized columns so the row stays addressable for edits and
// deletes.
func (r *Recipe) DecodeBody() {
	if strings.TrimSpace(r.Body) != "" {
		var body recipeBody
		if err := json.Unmarshal([]byte(r.Body), &body); err == nil {
			r.LineItems = body.LineItems
			r.TotalCost = body.TotalCost
			r.BatchSizeInGrams = body.BatchSizeInGrams
			r.NumberOfPortions = body.NumberOfPortions
			r.CostPerPortion = body.CostPerPortion
			if strings.TrimSpace(body.Name) != "" {
				r.Name = body.Name
			}
			return
		}
	}

	r.LineItems = []RecipeLineItem{}
	r.BatchSizeInGrams = 0
	r.NumberOfPortions = 1
	r.CostPerPortion = r.TotalCost
}
