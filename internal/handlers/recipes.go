package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipecost/internal/costing"
	applog "recipecost/internal/log"
	"recipecost/internal/store"
	"recipecost/internal/units"
	"recipecost/models"
)

type recipeLineRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	IsRecipe     bool    `json:"is_recipe"`
}

type recipeRequest struct {
	Name             string              `json:"name"`
	NumberOfPortions float64             `json:"number_of_portions"`
	Ingredients      []recipeLineRequest `json:"ingredients"`
}

type recipeResponse struct {
	ID               uint                    `json:"id"`
	Name             string                  `json:"name"`
	Ingredients      []models.RecipeLineItem `json:"ingredients"`
	TotalCost        float64                 `json:"total_cost"`
	BatchSizeInGrams float64                 `json:"batch_size_in_grams"`
	NumberOfPortions float64                 `json:"number_of_portions"`
	CostPerPortion   float64                 `json:"cost_per_portion"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// RecipeResource handles CRUD interactions for recipe records. Creation and
// edits reprice every line item server-side and replace the derived snapshot
// in one write.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if dataStore == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r, userID)
		case http.MethodPost:
			saveRecipe(w, r, userID, 0)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	switch r.Method {
	case http.MethodPut:
		saveRecipe(w, r, userID, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, userID, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	recipes, err := dataStore.LoadRecipes(ctx, userID)
	if err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		responses = append(responses, projectRecipe(recipe))
	}
	writeJSON(w, http.StatusOK, responses)
}

func saveRecipe(w http.ResponseWriter, r *http.Request, userID, recipeID uint) {
	ctx := r.Context()

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(payload.Ingredients) == 0 {
		writeJSONError(w, http.StatusBadRequest, "at least one line item is required")
		return
	}
	if payload.NumberOfPortions <= 0 {
		writeJSONError(w, http.StatusBadRequest, "number of portions must be greater than zero")
		return
	}

	recipe, err := buildRecipe(r, userID, recipeID, name, payload)
	if err != nil {
		switch {
		case errors.Is(err, costing.ErrCircularReference):
			writeJSONError(w, http.StatusConflict, "a recipe cannot contain itself, directly or through another recipe")
		case store.IsNotFound(err):
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		case costing.IsInvalidInput(err):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			applog.Error(ctx, "failed to build recipe", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to save recipe")
		}
		return
	}

	saved, err := dataStore.SaveRecipe(ctx, userID, recipe)
	if err != nil {
		if store.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to save recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to save recipe")
		return
	}

	status := http.StatusOK
	if recipeID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, projectRecipe(saved))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, userID, recipeID uint) {
	ctx := r.Context()
	if err := dataStore.DeleteRecipe(ctx, userID, recipeID); err != nil {
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildRecipe resolves every requested line item against the owner's stored
// ingredients and recipes, prices each line, and aggregates the derived
// snapshot. Nothing is persisted until the whole recipe resolves.
func buildRecipe(r *http.Request, userID, recipeID uint, name string, payload recipeRequest) (models.Recipe, error) {
	ctx := r.Context()

	ingredients, err := dataStore.LoadIngredients(ctx, userID)
	if err != nil {
		return models.Recipe{}, err
	}
	recipes, err := dataStore.LoadRecipes(ctx, userID)
	if err != nil {
		return models.Recipe{}, err
	}

	ingredientsByID := make(map[uint]models.Ingredient, len(ingredients))
	for _, ingredient := range ingredients {
		ingredientsByID[ingredient.ID] = ingredient
	}
	recipesByID := make(map[uint]models.Recipe, len(recipes))
	for _, recipe := range recipes {
		recipesByID[recipe.ID] = recipe
	}

	lines := make([]models.RecipeLineItem, 0, len(payload.Ingredients))
	for _, request := range payload.Ingredients {
		if request.Quantity <= 0 {
			return models.Recipe{}, costing.InvalidInput("line item quantity must be greater than zero")
		}
		unit := units.Normalize(request.Unit)

		if request.IsRecipe {
			referenced, ok := recipesByID[request.IngredientID]
			if !ok {
				return models.Recipe{}, &store.ReferenceNotFoundError{Kind: "recipe", ID: request.IngredientID}
			}
			if err := costing.DetectCycle(recipeID, referenced.ID, recipes); err != nil {
				return models.Recipe{}, err
			}
			lineCost, err := costing.LineCostForRecipe(referenced, request.Quantity, unit)
			if err != nil {
				return models.Recipe{}, err
			}
			lines = append(lines, models.RecipeLineItem{
				IngredientID:   referenced.ID,
				IngredientName: fmt.Sprintf("%s (recipe)", referenced.Name),
				Quantity:       request.Quantity,
				Unit:           unit,
				Cost:           lineCost,
				IsRecipe:       true,
			})
			continue
		}

		ingredient, ok := ingredientsByID[request.IngredientID]
		if !ok {
			return models.Recipe{}, &store.ReferenceNotFoundError{Kind: "ingredient", ID: request.IngredientID}
		}
		lines = append(lines, models.RecipeLineItem{
			IngredientID:   ingredient.ID,
			IngredientName: ingredient.Name,
			Quantity:       request.Quantity,
			Unit:           unit,
			Cost:           costing.LineCostForIngredient(ingredient.CostPerUnit, request.Quantity),
		})
	}

	recipe := models.Recipe{
		Name:             name,
		NumberOfPortions: payload.NumberOfPortions,
		LineItems:        lines,
	}
	recipe.ID = recipeID

	if err := costing.Aggregate(&recipe); err != nil {
		return models.Recipe{}, err
	}
	return recipe, nil
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	return recipeResponse{
		ID:               recipe.ID,
		Name:             recipe.Name,
		Ingredients:      recipe.LineItems,
		TotalCost:        recipe.TotalCost,
		BatchSizeInGrams: recipe.BatchSizeInGrams,
		NumberOfPortions: recipe.NumberOfPortions,
		CostPerPortion:   recipe.CostPerPortion,
		CreatedAt:        recipe.CreatedAt,
		UpdatedAt:        recipe.UpdatedAt,
	}
}
