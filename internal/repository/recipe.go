package repository

import (
	"errors"

	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecipeRepository is a repository for interacting with recipes in Postgres.
type RecipeRepository struct {
	DB *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{DB: db}
}

func orderedSteps(db *gorm.DB) *gorm.DB {
	return db.Order(`"order" ASC`)
}

// ListRecipes returns every recipe with its steps, oldest first.
func (r *RecipeRepository) ListRecipes() ([]models.Recipe, error) {
	var recipes []models.Recipe

	err := r.DB.Preload("Steps", orderedSteps).
		Order("created_at ASC, id ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	return recipes, nil
}

// GetRecipeByID retrieves a recipe by its ID.
func (r *RecipeRepository) GetRecipeByID(recipeID string) (*models.Recipe, error) {
	var recipe models.Recipe

	err := r.DB.Preload("Steps", orderedSteps).
		Where("id = ?", recipeID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{message: "Recipe not found"}
		}
		logger.Get().Error("error retrieving recipe", zap.String("recipe_id", recipeID), zap.Error(err))
		return nil, err
	}

	return &recipe, nil
}

// CreateRecipe creates a new recipe and its steps in one transaction.
func (r *RecipeRepository) CreateRecipe(recipe *models.Recipe) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		return nil
	})
}

// UpdateRecipeImage sets the image URL of a recipe.
func (r *RecipeRepository) UpdateRecipeImage(recipeID string, imageURL string) error {
	result := r.DB.Model(&models.Recipe{}).Where("id = ?", recipeID).Update("image", imageURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NotFoundError{message: "Recipe not found"}
	}
	return nil
}

// CountRecipes returns the number of stored recipes.
func (r *RecipeRepository) CountRecipes() (int64, error) {
	var count int64
	if err := r.DB.Model(&models.Recipe{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
