package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/s3"
	"github.com/windoze95/chefremy-api/internal/service"
	"go.uber.org/zap"
)

// ImageUploader stores image bytes and returns their public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// ImageHandler handles image upload requests.
type ImageHandler struct {
	Uploader ImageUploader
	Recipes  *service.RecipeService
}

// NewImageHandler creates a new ImageHandler. A nil uploader disables uploads.
func NewImageHandler(uploader ImageUploader, recipes *service.RecipeService) *ImageHandler {
	return &ImageHandler{Uploader: uploader, Recipes: recipes}
}

// allowedImageTypes maps accepted image file extensions to content types.
var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

const maxImageSize = 10 << 20

// UploadImage handles POST /v1/images/upload
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": service.ErrStorageDisabled.Error()})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type. Allowed: jpg, png, webp"})
		return
	}

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds maximum size of 10MB"})
		return
	}

	recipeID := c.PostForm("recipe_id")
	if recipeID != "" && h.Recipes != nil {
		if _, err := h.Recipes.GetRecipe(recipeID); err != nil {
			if _, ok := err.(repository.NotFoundError); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up recipe"})
			return
		}
	}

	imgBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	imageURL, err := h.Uploader.UploadImage(c.Request.Context(), s3.ImageKey(recipeID, ext), contentType, imgBytes)
	if err != nil {
		logger.FromGin(c).Error("failed to upload image to S3", zap.String("recipe_id", recipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	if recipeID != "" && h.Recipes != nil {
		if err := h.Recipes.UpdateRecipeImage(recipeID, imageURL); err != nil {
			logger.FromGin(c).Error("failed to attach image to recipe", zap.String("recipe_id", recipeID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach image to recipe"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}
