package handlers

import (
	"encoding/json"
	"errors"
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

type ingredientRequest struct {
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type ingredientResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Cost        float64    `json:"cost"`
	Quantity    float64    `json:"quantity"`
	Unit        units.Unit `json:"unit"`
	CostPerUnit float64    `json:"cost_per_unit"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IngredientResource handles CRUD interactions for ingredient records.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if dataStore == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r, userID)
		case http.MethodPost:
			createIngredient(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodPut:
		updateIngredient(w, r, userID, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, userID, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	ingredients, err := dataStore.LoadIngredients(ctx, userID)
	if err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createIngredient(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()

	ingredient, err := ingredientFromRequest(r)
	if err != nil {
		applog.Debug(ctx, "ingredient validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := dataStore.SaveIngredient(ctx, userID, ingredient)
	if err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to save ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(created))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, userID, ingredientID uint) {
	ctx := r.Context()

	ingredient, err := ingredientFromRequest(r)
	if err != nil {
		applog.Debug(ctx, "ingredient update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ingredient.ID = ingredientID

	updated, err := dataStore.SaveIngredient(ctx, userID, ingredient)
	if err != nil {
		if store.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to update ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to save ingredient")
		return
	}

	// The caller is done once the ingredient row is saved; dependent recipes
	// are repriced in the background.
	if propagator != nil {
		propagator.IngredientChanged(ctx, userID, updated)
	}

	writeJSON(w, http.StatusOK, projectIngredient(updated))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, userID, ingredientID uint) {
	ctx := r.Context()
	if err := dataStore.DeleteIngredient(ctx, userID, ingredientID); err != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ingredientFromRequest decodes and validates the payload and derives the
// unit cost. No persistence happens before this step succeeds.
func ingredientFromRequest(r *http.Request) (models.Ingredient, error) {
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return models.Ingredient{}, errors.New("invalid request payload")
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return models.Ingredient{}, errors.New("name is required")
	}

	costPerUnit, err := costing.DeriveCostPerUnit(payload.Cost, payload.Quantity)
	if err != nil {
		return models.Ingredient{}, err
	}

	return models.Ingredient{
		Name:        name,
		Cost:        payload.Cost,
		Quantity:    payload.Quantity,
		Unit:        units.Normalize(payload.Unit),
		CostPerUnit: costPerUnit,
	}, nil
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:          ingredient.ID,
		Name:        ingredient.Name,
		Cost:        ingredient.Cost,
		Quantity:    ingredient.Quantity,
		Unit:        ingredient.Unit,
		CostPerUnit: ingredient.CostPerUnit,
		CreatedAt:   ingredient.CreatedAt,
		UpdatedAt:   ingredient.UpdatedAt,
	}
}
