package config

import (
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars  `json:"env"`
	Prompts *Prompts `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port             string   `env:"PORT" envDefault:"8080"`
	SessionSecret    string   `env:"SESSION_SECRET"`
	PromptsPath      string   `env:"PROMPTS_PATH" envDefault:"configs/prompts.yaml"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	CommandRateLimit int      `env:"COMMAND_RATE_LIMIT" envDefault:"5"`
	AIMaxRetries     int      `env:"AI_MAX_RETRIES" envDefault:"1"`

	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY" optional:"true"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	TTSVoice        string `env:"TTS_VOICE" envDefault:"alloy"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" optional:"true"`

	EdamamRecipeAppID     string `env:"EDAMAM_RECIPE_APP_ID" optional:"true"`
	EdamamRecipeAppKey    string `env:"EDAMAM_RECIPE_APP_KEY" optional:"true"`
	EdamamNutritionAppID  string `env:"EDAMAM_NUTRITION_APP_ID" optional:"true"`
	EdamamNutritionAppKey string `env:"EDAMAM_NUTRITION_APP_KEY" optional:"true"`

	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY" optional:"true"`
	ElevenLabsAgentID string `env:"ELEVENLABS_AGENT_ID" optional:"true"`

	DatabaseUrl        string `env:"DATABASE_URL" optional:"true"`
	AWSRegion          string `env:"AWS_REGION" optional:"true"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" optional:"true"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" optional:"true"`
	S3Bucket           string `env:"S3_BUCKET" optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if isZeroValue(field) {
			return fmt.Errorf("$%s must be set", fieldType.Tag.Get("env"))
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}

func isZeroValue(v reflect.Value) bool {
	return v.IsZero()
}

// HasOpenAI reports whether an OpenAI key is configured.
func (c *Config) HasOpenAI() bool {
	return c.EnvVars.OpenAIAPIKey != ""
}

// HasLLM reports whether the configured LLM provider has a key.
func (c *Config) HasLLM() bool {
	if c.EnvVars.LLMProvider == "anthropic" {
		return c.EnvVars.AnthropicAPIKey != ""
	}
	return c.HasOpenAI()
}

// HasEdamamRecipes reports whether Edamam recipe search credentials are set.
func (c *Config) HasEdamamRecipes() bool {
	return c.EnvVars.EdamamRecipeAppID != "" && c.EnvVars.EdamamRecipeAppKey != ""
}

// HasEdamamNutrition reports whether Edamam nutrition credentials are set.
func (c *Config) HasEdamamNutrition() bool {
	return c.EnvVars.EdamamNutritionAppID != "" && c.EnvVars.EdamamNutritionAppKey != ""
}

// HasS3 reports whether image uploads can be stored.
func (c *Config) HasS3() bool {
	return c.EnvVars.S3Bucket != "" && c.EnvVars.AWSRegion != ""
}

// DefaultAllowedOrigins are the browser origins used when ALLOWED_ORIGINS is
// set but empty.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// CORSOrigins returns the configured origins, or DefaultAllowedOrigins when
// none are set.
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, o := range c.EnvVars.AllowedOrigins {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return DefaultAllowedOrigins
	}
	return origins
}
