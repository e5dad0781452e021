package repository

import "github.com/windoze95/chefremy-api/internal/models"

// RecipeRepo is the interface for recipe repository operations.
type RecipeRepo interface {
	ListRecipes() ([]models.Recipe, error)
	GetRecipeByID(recipeID string) (*models.Recipe, error)
	CreateRecipe(recipe *models.Recipe) error
	UpdateRecipeImage(recipeID string, imageURL string) error
	CountRecipes() (int64, error)
}
