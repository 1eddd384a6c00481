// Package store defines the persistence collaborators the costing core
// talks to, and a GORM-backed implementation of them. The core never
// touches the database directly; everything flows through these six
// operations.
package store

import (
	"context"
	"errors"
	"fmt"

	"recipecost/models"
)

// IngredientStore loads and persists a user's ingredients.
type IngredientStore interface {
	LoadIngredients(ctx context.Context, ownerID uint) ([]models.Ingredient, error)
	SaveIngredient(ctx context.Context, ownerID uint, ingredient models.Ingredient) (models.Ingredient, error)
	DeleteIngredient(ctx context.Context, ownerID, id uint) error
}

// RecipeStore loads and persists a user's recipes.
type RecipeStore interface {
	LoadRecipes(ctx context.Context, ownerID uint) ([]models.Recipe, error)
	SaveRecipe(ctx context.Context, ownerID uint, recipe models.Recipe) (models.Recipe, error)
	DeleteRecipe(ctx context.Context, ownerID, id uint) error
}

// Store combines both collaborators.
type Store interface {
	IngredientStore
	RecipeStore
}

// PersistenceError wraps a storage collaborator failure. Primary operations
// surface it to the caller; cascade recomputation recovers from it
// per-recipe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ReferenceNotFoundError reports a line-item reference that no longer
// resolves to a stored ingredient or recipe.
type ReferenceNotFoundError struct {
	Kind string
	ID   uint
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("store: no %s with id %d", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a ReferenceNotFoundError.
func IsNotFound(err error) bool {
	var target *ReferenceNotFoundError
	return errors.As(err, &target)
}
