package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/models"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/service"
	"go.uber.org/zap"
)

// RecipeHandler is the handler for recipe-related requests.
type RecipeHandler struct {
	Service *service.RecipeService
}

// NewRecipeHandler is the constructor function for initializing a new RecipeHandler.
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{Service: recipeService}
}

// ListRecipes returns the catalog filtered by ?q= and ?category=.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.Service.ListRecipes(c.Query("q"), c.Query("category"))
	if err != nil {
		logger.FromGin(c).Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"total":   len(recipes),
	})
}

// ListCategories returns the fixed category list.
func (h *RecipeHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.Service.Categories()})
}

// GetRecipe returns a recipe by ID.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID := c.Param("recipe_id")

	recipe, err := h.Service.GetRecipe(recipeID)
	if err != nil {
		switch e := err.(type) {
		case repository.NotFoundError:
			c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
		default:
			logger.FromGin(c).Error("failed to get recipe", zap.String("recipe_id", recipeID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": e.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// CreateRecipe stores a manually entered recipe.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.Service.CreateRecipe(&recipe); err != nil {
		if _, ok := err.(service.ValidationError); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.FromGin(c).Error("failed to create recipe", zap.String("title", recipe.Title), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}
