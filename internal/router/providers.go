package router

import (
	"context"

	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/handlers"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/s3"
	"github.com/windoze95/chefremy-api/internal/service"
	"go.uber.org/zap"
)

// Providers holds the external clients the config enables. Every field may be
// nil, which turns the matching feature off.
type Providers struct {
	Text         ai.TextProvider
	Speech       ai.SpeechProvider
	Voice        ai.VoiceProvider
	Recipes      ai.RecipeSearchProvider
	Nutrition    ai.NutritionProvider
	Conversation ai.ConversationClient
	Signer       service.SignedURLProvider
	Images       handlers.ImageUploader
}

// NewProviders builds the clients for every configured credential.
func NewProviders(ctx context.Context, cfg *config.Config) Providers {
	log := logger.Get()
	var p Providers
	retries := cfg.EnvVars.AIMaxRetries

	if cfg.HasLLM() {
		if cfg.EnvVars.LLMProvider == "anthropic" {
			p.Text = ai.NewAnthropicProvider(cfg.EnvVars.AnthropicAPIKey, retries)
		} else {
			p.Text = ai.NewOpenAIProvider(cfg.EnvVars.OpenAIAPIKey, cfg.EnvVars.OpenAIModel, retries)
		}
	}

	if cfg.HasOpenAI() {
		p.Speech = ai.NewWhisperProvider(cfg.EnvVars.OpenAIAPIKey, retries)
		p.Voice = ai.NewOpenAIProvider(cfg.EnvVars.OpenAIAPIKey, cfg.EnvVars.OpenAIModel, retries)
	}

	if cfg.HasEdamamRecipes() || cfg.HasEdamamNutrition() {
		edamam := ai.NewEdamamClient(
			cfg.EnvVars.EdamamRecipeAppID, cfg.EnvVars.EdamamRecipeAppKey,
			cfg.EnvVars.EdamamNutritionAppID, cfg.EnvVars.EdamamNutritionAppKey,
		)
		if cfg.HasEdamamRecipes() {
			p.Recipes = edamam
		}
		if cfg.HasEdamamNutrition() {
			p.Nutrition = edamam
		}
	}

	if cfg.EnvVars.ElevenLabsAgentID != "" {
		elevenLabs := ai.NewElevenLabsClient(cfg.EnvVars.ElevenLabsAPIKey)
		p.Conversation = elevenLabs
		if cfg.EnvVars.ElevenLabsAPIKey != "" {
			p.Signer = elevenLabs
		}
	}

	if cfg.HasS3() {
		store, err := s3.NewImageStore(ctx, cfg)
		if err != nil {
			log.Warn("image uploads disabled", zap.Error(err))
		} else {
			p.Images = store
		}
	}

	log.Info("providers configured",
		zap.Bool("llm", p.Text != nil),
		zap.String("llm_provider", cfg.EnvVars.LLMProvider),
		zap.Bool("speech", p.Speech != nil),
		zap.Bool("tts", p.Voice != nil),
		zap.Bool("recipe_search", p.Recipes != nil),
		zap.Bool("nutrition", p.Nutrition != nil),
		zap.Bool("voice_agent", p.Conversation != nil),
		zap.Bool("images", p.Images != nil),
	)
	return p
}
