// Package cascade recomputes recipes that depend on an ingredient after its
// price changes. The work runs decoupled from the edit that triggered it:
// the caller gets its response as soon as the ingredient itself is saved,
// and dependent recipes catch up in the background.
package cascade

import (
	"context"
	"sync"

	"recipecost/internal/costing"
	applog "recipecost/internal/log"
	"recipecost/internal/store"
	"recipecost/models"
)

// Scheduler decides how recompute work is executed. It is the seam that
// makes the fire-and-forget behavior testable.
type Scheduler interface {
	Schedule(task func())
}

// Detached runs each task on its own goroutine and tracks them so a
// graceful shutdown can wait for in-flight cascades.
type Detached struct {
	wg sync.WaitGroup
}

func (d *Detached) Schedule(task func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		task()
	}()
}

// Wait blocks until all scheduled tasks have finished.
func (d *Detached) Wait() {
	d.wg.Wait()
}

// Synchronous runs tasks inline. Used by tests and the import tooling,
// where deterministic completion matters more than request latency.
type Synchronous struct{}

func (Synchronous) Schedule(task func()) {
	task()
}

// Propagator finds the recipes an ingredient edit invalidates and rewrites
// their derived cost snapshots.
type Propagator struct {
	recipes   store.RecipeStore
	scheduler Scheduler
}

// New builds a Propagator on top of the recipe collaborator.
func New(recipes store.RecipeStore, scheduler Scheduler) *Propagator {
	if scheduler == nil {
		scheduler = &Detached{}
	}
	return &Propagator{recipes: recipes, scheduler: scheduler}
}

// IngredientChanged schedules recomputation of every recipe that directly
// references the ingredient. It returns immediately; failures inside the
// cascade are logged, never surfaced to the caller that edited the
// ingredient.
func (p *Propagator) IngredientChanged(ctx context.Context, ownerID uint, ingredient models.Ingredient) {
	// The triggering request may complete (and cancel its context) before
	// the cascade runs.
	detached := context.WithoutCancel(ctx)
	p.scheduler.Schedule(func() {
		p.run(detached, ownerID, ingredient)
	})
}

func (p *Propagator) run(ctx context.Context, ownerID uint, ingredient models.Ingredient) {
	recipes, err := p.recipes.LoadRecipes(ctx, ownerID)
	if err != nil {
		applog.Error(ctx, "cascade aborted: unable to load recipes",
			"error", err, "ownerID", ownerID, "ingredientID", ingredient.ID)
		return
	}

	updated := 0
	for _, recipe := range recipes {
		if !repriceLineItems(&recipe, ingredient) {
			continue
		}

		if err := costing.Aggregate(&recipe); err != nil {
			applog.Error(ctx, "cascade skipped recipe: aggregation failed",
				"error", err, "recipeID", recipe.ID)
			continue
		}

		if _, err := p.recipes.SaveRecipe(ctx, ownerID, recipe); err != nil {
			// Best effort: this recipe stays stale, the rest still update.
			applog.Error(ctx, "cascade skipped recipe: persist failed",
				"error", err, "recipeID", recipe.ID)
			continue
		}
		updated++
	}

	applog.Info(ctx, "cascade finished",
		"ownerID", ownerID, "ingredientID", ingredient.ID, "recipesUpdated", updated)
}

// repriceLineItems rewrites the cost of every ingredient-type line matching
// the edited ingredient, keeping the line's own quantity. It reports whether
// anything changed. Recipe-type lines are never touched here; the cascade
// does not propagate transitively into recipes that reference an affected
// recipe.
func repriceLineItems(recipe *models.Recipe, ingredient models.Ingredient) bool {
	changed := false
	for idx := range recipe.LineItems {
		line := &recipe.LineItems[idx]
		if line.IsRecipe || line.IngredientID != ingredient.ID {
			continue
		}
		line.Cost = costing.LineCostForIngredient(ingredient.CostPerUnit, line.Quantity)
		changed = true
	}
	return changed
}
