package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/db"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/router"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	// Load prompts from YAML
	prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
	if err != nil {
		logger.Get().Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	// Connect to the database when one is configured; otherwise the demo
	// catalog is served from memory.
	var database *gorm.DB
	if cfg.EnvVars.DatabaseUrl != "" {
		database, err = db.New(cfg)
		if err != nil {
			logger.Get().Fatal("failed to connect to database", zap.Error(err))
		}
		sqlDB, err := database.DB()
		if err != nil {
			logger.Get().Fatal("failed to get underlying sql.DB", zap.Error(err))
		}
		defer sqlDB.Close()
	} else {
		logger.Get().Info("DATABASE_URL not set, using in-memory recipe catalog")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	app := router.Setup(ctx, cfg, database)
	defer app.Close()

	srv := &http.Server{
		Addr:    ":" + cfg.EnvVars.Port,
		Handler: app.Engine,
	}

	// Run the server
	go func() {
		logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Get().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error("graceful shutdown failed", zap.Error(err))
	}
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
