package repository

import (
	"fmt"
	"sync"

	"github.com/windoze95/chefremy-api/internal/models"
)

// MemoryRecipeRepository keeps recipes in process memory. It is used when no
// database is configured and by the CLI.
type MemoryRecipeRepository struct {
	mu      sync.RWMutex
	order   []string
	recipes map[string]models.Recipe
}

// NewMemoryRecipeRepository returns a repository holding the given recipes in
// insertion order.
func NewMemoryRecipeRepository(seed []models.Recipe) *MemoryRecipeRepository {
	r := &MemoryRecipeRepository{recipes: make(map[string]models.Recipe, len(seed))}
	for i := range seed {
		_ = r.CreateRecipe(&seed[i])
	}
	return r
}

// ListRecipes returns copies of all recipes in insertion order.
func (r *MemoryRecipeRepository) ListRecipes() ([]models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Recipe, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneRecipe(r.recipes[id]))
	}
	return out, nil
}

// GetRecipeByID returns a copy of the recipe with the given ID.
func (r *MemoryRecipeRepository) GetRecipeByID(recipeID string) (*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipe, ok := r.recipes[recipeID]
	if !ok {
		return nil, NotFoundError{message: "Recipe not found"}
	}
	c := cloneRecipe(recipe)
	return &c, nil
}

// CreateRecipe stores a recipe. IDs must be unique.
func (r *MemoryRecipeRepository) CreateRecipe(recipe *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recipes[recipe.ID]; exists {
		return fmt.Errorf("recipe %q already exists", recipe.ID)
	}
	r.recipes[recipe.ID] = cloneRecipe(*recipe)
	r.order = append(r.order, recipe.ID)
	return nil
}

// UpdateRecipeImage sets the image URL of a recipe.
func (r *MemoryRecipeRepository) UpdateRecipeImage(recipeID string, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipe, ok := r.recipes[recipeID]
	if !ok {
		return NotFoundError{message: "Recipe not found"}
	}
	recipe.Image = imageURL
	r.recipes[recipeID] = recipe
	return nil
}

// CountRecipes returns the number of stored recipes.
func (r *MemoryRecipeRepository) CountRecipes() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.recipes)), nil
}

func cloneRecipe(in models.Recipe) models.Recipe {
	out := in
	out.Ingredients = append(models.Ingredients(nil), in.Ingredients...)
	out.Steps = make([]models.Step, len(in.Steps))
	for i, s := range in.Steps {
		s.IngredientIDs = append([]string(nil), s.IngredientIDs...)
		out.Steps[i] = s
	}
	return out
}
