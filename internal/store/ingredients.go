package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recipecost/models"
)

// LoadIngredients returns every ingredient owned by the user, sorted by name.
func (s *Gorm) LoadIngredients(ctx context.Context, ownerID uint) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name asc").
		Find(&ingredients).Error
	if err != nil {
		return nil, wrap("load ingredients", err)
	}
	return ingredients, nil
}

// SaveIngredient creates or updates an ingredient. A zero ID creates a new
// row and the returned value carries the assigned identifier; a non-zero ID
// updates the existing row, which must belong to the owner.
func (s *Gorm) SaveIngredient(ctx context.Context, ownerID uint, ingredient models.Ingredient) (models.Ingredient, error) {
	ingredient.OwnerID = ownerID

	if ingredient.ID == 0 {
		if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
			return models.Ingredient{}, wrap("create ingredient", err)
		}
		return ingredient, nil
	}

	var existing models.Ingredient
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&existing, ingredient.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ingredient{}, &ReferenceNotFoundError{Kind: "ingredient", ID: ingredient.ID}
		}
		return models.Ingredient{}, wrap("load ingredient for update", err)
	}

	updates := map[string]any{
		"name":          ingredient.Name,
		"cost":          ingredient.Cost,
		"quantity":      ingredient.Quantity,
		"unit":          ingredient.Unit,
		"cost_per_unit": ingredient.CostPerUnit,
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return models.Ingredient{}, wrap("update ingredient", err)
	}

	ingredient.CreatedAt = existing.CreatedAt
	ingredient.UpdatedAt = existing.UpdatedAt
	return ingredient, nil
}

// DeleteIngredient removes the ingredient. Recipes referencing it are left
// untouched and keep their last-computed costs; deleting a referenced
// ingredient is not an error.
func (s *Gorm) DeleteIngredient(ctx context.Context, ownerID, id uint) error {
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.Ingredient{}, id).Error
	return wrap("delete ingredient", err)
}
