package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/cooking"
	"github.com/windoze95/chefremy-api/internal/db"
	"github.com/windoze95/chefremy-api/internal/handlers"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/metrics"
	"github.com/windoze95/chefremy-api/internal/middleware"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/service"
	"github.com/windoze95/chefremy-api/internal/voice"
	"github.com/windoze95/chefremy-api/internal/ws"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sessionSweepInterval is how often expired cooking sessions are dropped.
const sessionSweepInterval = 10 * time.Minute

// App is the assembled HTTP server and the long-lived state behind it.
type App struct {
	Engine  *gin.Engine
	Manager *cooking.Manager
	Metrics *metrics.Collector
}

// Close stops every running timer.
func (a *App) Close() {
	a.Manager.Close()
}

// NewRecipeRepo picks the Postgres catalog when a database is given and the
// in-memory demo catalog otherwise.
func NewRecipeRepo(database *gorm.DB) repository.RecipeRepo {
	if database == nil {
		return repository.NewMemoryRecipeRepository(repository.DemoRecipes())
	}
	repo := repository.NewRecipeRepository(database)
	if err := db.SeedDemoRecipes(repo); err != nil {
		logger.Get().Error("failed to seed demo recipes", zap.Error(err))
	}
	return repo
}

// SetupRouter sets up the Gin router. database may be nil.
func SetupRouter(cfg *config.Config, database *gorm.DB, providers Providers) *App {
	r := gin.New()
	r.Use(gin.Recovery())

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.AccessLogMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins()
	corsConfig.AddAllowHeaders("Authorization", "X-Request-ID")
	corsConfig.AddExposeHeaders("X-Request-ID")
	r.Use(cors.New(corsConfig))

	m := metrics.New()

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Recipe-related routes setup
	recipeRepo := NewRecipeRepo(database)
	recipeService := service.NewRecipeService(cfg, recipeRepo)
	recipeHandler := handlers.NewRecipeHandler(recipeService)

	// Voice-related routes setup
	commandRouter := voice.NewRouter(voice.Deps{
		Text:      providers.Text,
		Recipes:   providers.Recipes,
		Nutrition: providers.Nutrition,
		Prompts:   cfg.Prompts,
		Metrics:   m,
	})
	voiceService := service.NewVoiceService(cfg, commandRouter, providers.Speech, providers.Voice, providers.Text, providers.Signer, m)
	voiceHandler := handlers.NewVoiceHandler(voiceService)

	imageHandler := handlers.NewImageHandler(providers.Images, recipeService)

	// Cooking sessions
	manager := cooking.NewManager(cooking.NewClock())
	cookingService := service.NewCookingService(cfg, recipeRepo, manager, commandRouter, m)

	hub := ws.NewHub()
	go hub.Run()
	wsHandler := ws.NewCookingHandler(hub, cfg, cookingService, voiceService, providers.Conversation)
	cookingHandler := handlers.NewCookingHandler(cookingService, wsHandler)
	// Session tokens cannot outlive their sessions.
	cookingService.ExpireSessions(sessionSweepInterval, middleware.SessionTokenTTL, wsHandler.SessionEnded)

	limitCommands := middleware.RateLimitByIP(cfg.EnvVars.CommandRateLimit, time.Minute, 3*time.Minute)

	api := r.Group("/v1")
	{
		// Recipe catalog
		api.GET("/recipes", recipeHandler.ListRecipes)
		api.GET("/recipes/categories", recipeHandler.ListCategories)
		api.GET("/recipes/:recipe_id", recipeHandler.GetRecipe)
		api.POST("/recipes", recipeHandler.CreateRecipe)

		// Voice commands and speech
		api.POST("/voice-chat", limitCommands, voiceHandler.VoiceChat)
		api.GET("/voice-chat", limitCommands, voiceHandler.VoiceChatQuery)
		api.POST("/voice/transcribe", limitCommands, voiceHandler.Transcribe)
		api.POST("/tts", limitCommands, voiceHandler.TextToSpeech)
		api.GET("/voice/signed-url", voiceHandler.SignedURL)

		// Image upload
		api.POST("/images/upload", imageHandler.UploadImage)

		// Start a cooking session; the response carries the session token
		api.POST("/cook/:recipe_id/sessions", limitCommands, cookingHandler.StartSession)
	}

	// Group for cooking routes that require a session token
	session := r.Group("/v1/cook/sessions/:session_id")
	{
		session.Use(middleware.VerifySessionTokenMiddleware(cfg))

		session.GET("", cookingHandler.GetSession)
		session.DELETE("", cookingHandler.EndSession)
		session.POST("/finish", cookingHandler.FinishSession)

		session.POST("/next", cookingHandler.NextStep)
		session.POST("/previous", cookingHandler.PreviousStep)
		session.POST("/steps/:index", cookingHandler.GoToStep)
		session.POST("/steps/:index/toggle", cookingHandler.ToggleStep)
		session.POST("/steps/:index/complete", cookingHandler.CompleteStep)
		session.POST("/ingredients/:ingredient_id/toggle", cookingHandler.ToggleIngredient)

		session.POST("/timers", cookingHandler.AddTimer)
		session.POST("/timers/:timer_id/start", cookingHandler.ControlTimer(service.TimerStart))
		session.POST("/timers/:timer_id/pause", cookingHandler.ControlTimer(service.TimerPause))
		session.POST("/timers/:timer_id/reset", cookingHandler.ControlTimer(service.TimerReset))
		session.DELETE("/timers/:timer_id", cookingHandler.RemoveTimer)
	}

	// WebSocket route (authenticated via query param token)
	r.GET("/v1/ws/cook/:session_id", wsHandler.HandleCookingSession)

	return &App{Engine: r, Manager: manager, Metrics: m}
}

// Setup builds providers from cfg and assembles the router.
func Setup(ctx context.Context, cfg *config.Config, database *gorm.DB) *App {
	return SetupRouter(cfg, database, NewProviders(ctx, cfg))
}
