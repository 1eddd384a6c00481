package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recipecost/models"
)

// LoadRecipes returns every recipe owned by the user, newest first, with the
// structured body hydrated. Rows whose blob fails to parse are degraded to a
// minimal recipe rather than dropped, so they stay editable.
func (s *Gorm) LoadRecipes(ctx context.Context, ownerID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&recipes).Error
	if err != nil {
		return nil, wrap("load recipes", err)
	}

	for idx := range recipes {
		recipes[idx].DecodeBody()
	}
	return recipes, nil
}

// SaveRecipe creates or updates a recipe. The structured content is
// serialized into the body blob beside the denormalized name and total cost
// columns; the stored row always reflects one consistent derived snapshot.
func (s *Gorm) SaveRecipe(ctx context.Context, ownerID uint, recipe models.Recipe) (models.Recipe, error) {
	recipe.OwnerID = ownerID
	if err := recipe.EncodeBody(); err != nil {
		return models.Recipe{}, wrap("encode recipe body", err)
	}

	if recipe.ID == 0 {
		if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
			return models.Recipe{}, wrap("create recipe", err)
		}
		return recipe, nil
	}

	var existing models.Recipe
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&existing, recipe.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Recipe{}, &ReferenceNotFoundError{Kind: "recipe", ID: recipe.ID}
		}
		return models.Recipe{}, wrap("load recipe for update", err)
	}

	updates := map[string]any{
		"name":       recipe.Name,
		"total_cost": recipe.TotalCost,
		"body":       recipe.Body,
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return models.Recipe{}, wrap("update recipe", err)
	}

	recipe.CreatedAt = existing.CreatedAt
	recipe.UpdatedAt = existing.UpdatedAt
	return recipe, nil
}

// DeleteRecipe removes the recipe. Line items in other recipes referencing
// it are left untouched.
func (s *Gorm) DeleteRecipe(ctx context.Context, ownerID, id uint) error {
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.Recipe{}, id).Error
	return wrap("delete recipe", err)
}
