package service

import (
	"fmt"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/models"
	"github.com/windoze95/chefremy-api/internal/repository"
)

// RecipeService is the business logic layer for browsing and creating recipes.
type RecipeService struct {
	Cfg  *config.Config
	Repo repository.RecipeRepo
}

// NewRecipeService is the constructor function for initializing a new RecipeService
func NewRecipeService(cfg *config.Config, repo repository.RecipeRepo) *RecipeService {
	return &RecipeService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// FilterRecipes keeps the recipes whose title or description contains query
// (case-insensitive) and whose category equals category. An empty query or
// an empty/"All" category matches everything. Order is preserved.
func FilterRecipes(recipes []models.Recipe, query, category string) []models.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		matchesSearch := q == "" ||
			strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Description), q)
		matchesCategory := category == "" || category == models.CategoryAll || r.Category == category
		if matchesSearch && matchesCategory {
			out = append(out, r)
		}
	}
	return out
}

// ListRecipes returns the catalog filtered by query and category.
func (s *RecipeService) ListRecipes(query, category string) ([]models.Recipe, error) {
	recipes, err := s.Repo.ListRecipes()
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return FilterRecipes(recipes, query, category), nil
}

// GetRecipe returns one recipe. A missing recipe is a repository.NotFoundError.
func (s *RecipeService) GetRecipe(recipeID string) (*models.Recipe, error) {
	return s.Repo.GetRecipeByID(recipeID)
}

// Categories returns the fixed category list.
func (s *RecipeService) Categories() []string {
	return append([]string(nil), models.Categories...)
}

// ValidateRecipe checks user supplied recipe fields.
func (s *RecipeService) ValidateRecipe(recipe *models.Recipe) error {
	recipe.Title = strings.TrimSpace(recipe.Title)
	if recipe.Title == "" {
		return NewValidationError("title is required")
	}

	profanityDetector := goaway.NewProfanityDetector().WithSanitizeLeetSpeak(true).WithSanitizeSpecialCharacters(true).WithSanitizeAccents(false)
	if profanityDetector.IsProfane(recipe.Title) || profanityDetector.IsProfane(recipe.Description) {
		return NewValidationError("recipe contains inappropriate language")
	}

	if !govalidator.IsIn(string(recipe.Difficulty),
		string(models.DifficultyEasy), string(models.DifficultyMedium), string(models.DifficultyHard)) {
		return NewValidationError("difficulty must be Easy, Medium or Hard")
	}

	if recipe.Category != "" && !govalidator.IsIn(recipe.Category, models.Categories...) {
		return NewValidationError(fmt.Sprintf("unknown category %q", recipe.Category))
	}

	if recipe.Image != "" && !strings.HasPrefix(recipe.Image, "/") && !govalidator.IsURL(recipe.Image) {
		return NewValidationError("image must be a URL")
	}

	if recipe.Servings <= 0 {
		return NewValidationError("servings must be positive")
	}
	if recipe.TotalTime < 0 {
		return NewValidationError("total time cannot be negative")
	}

	if err := recipe.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// CreateRecipe validates and stores a new recipe, assigning an ID when none
// is given.
func (s *RecipeService) CreateRecipe(recipe *models.Recipe) error {
	recipe.SortSteps()
	if err := s.ValidateRecipe(recipe); err != nil {
		return err
	}
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	if err := s.Repo.CreateRecipe(recipe); err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// UpdateRecipeImage points a recipe at a newly uploaded image.
func (s *RecipeService) UpdateRecipeImage(recipeID, imageURL string) error {
	return s.Repo.UpdateRecipeImage(recipeID, imageURL)
}
