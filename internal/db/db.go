package db

import (
	"fmt"
	"time"

	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/models"
	"github.com/windoze95/chefremy-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New creates a new database connection and migrates the recipe tables.
func New(cfg *config.Config) (*gorm.DB, error) {
	database, err := connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl, time.Minute)
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(&models.Recipe{}, &models.Step{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

// connectToDatabaseWithRetry connects to the database and retries until
// the deadline passes.
func connectToDatabaseWithRetry(databaseURL string, deadline time.Duration) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Since(start) > deadline {
			return nil, fmt.Errorf("could not connect to database after %s: %w", deadline, err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(5 * time.Second)
	}

	return database, nil
}

// SeedDemoRecipes stores the demo catalog when the repository is empty.
func SeedDemoRecipes(repo repository.RecipeRepo) error {
	count, err := repo.CountRecipes()
	if err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}
	if count > 0 {
		return nil
	}

	recipes := repository.DemoRecipes()
	for i := range recipes {
		if err := repo.CreateRecipe(&recipes[i]); err != nil {
			return fmt.Errorf("seed recipe %s: %w", recipes[i].ID, err)
		}
	}
	logger.Get().Info("seeded demo recipes", zap.Int("count", len(recipes)))
	return nil
}
