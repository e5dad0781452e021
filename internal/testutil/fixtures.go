package testutil

import (
	"github.com/lib/pq"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/models"
)

// TestRecipe creates a small valid three-step recipe.
func TestRecipe() models.Recipe {
	return models.Recipe{
		ID:          "test-1",
		Title:       "Garlic Chicken",
		Description: "Pan seared chicken with garlic butter",
		Image:       "/images/garlic-chicken.jpg",
		TotalTime:   20,
		Difficulty:  models.DifficultyEasy,
		Category:    "Dinner",
		Servings:    2,
		Ingredients: models.Ingredients{
			{ID: "i1", Name: "chicken breast", Amount: "2", Unit: "pieces"},
			{ID: "i2", Name: "garlic", Amount: "3", Unit: "cloves"},
			{ID: "i3", Name: "butter", Amount: "2", Unit: "tbsp"},
		},
		Steps: []models.Step{
			{ID: "s1", Order: 1, Text: "Season the chicken.", IngredientIDs: pq.StringArray{"i1"}},
			{ID: "s2", Order: 2, Text: "Sear the chicken for 6 minutes.", Duration: 360, IngredientIDs: pq.StringArray{"i1", "i3"}},
			{ID: "s3", Order: 3, Text: "Add garlic and baste.", Duration: 60, IngredientIDs: pq.StringArray{"i2", "i3"}},
		},
	}
}

const testPromptsYAML = `
voice:
  general:
    system: "General. Context: {{.Context}} {{.CookingHint}}"
  cooking_hint: "Cooking step {{.Step}}."
  recipe_suggestion:
    system: "Suggest one recipe."
    user: "{{.Command}}"
  nutrition_extract:
    system: "Extract ingredient."
cooking_qa:
  system: "QA.{{if .RecipeContext}} Recipe: {{.RecipeContext}}{{end}}"
conversation:
  agent:
    system: "Guide the user through {{.RecipeTitle}}."
  first_message: "Hi, I'm Chef Remy!"
`

// TestPrompts returns a compact prompt set with every template populated.
func TestPrompts() *config.Prompts {
	p, err := config.ParsePrompts([]byte(testPromptsYAML))
	if err != nil {
		panic(err)
	}
	return p
}

// TestConfig returns a config with defaults filled and no providers configured.
func TestConfig() *config.Config {
	return &config.Config{
		EnvVars: config.EnvVars{
			Port:             "8080",
			SessionSecret:    "test-session-secret",
			AllowedOrigins:   []string{"http://localhost:5173"},
			CommandRateLimit: 100,
			AIMaxRetries:     1,
			LLMProvider:      "openai",
			OpenAIModel:      "gpt-4o-mini",
			TTSVoice:         "alloy",
		},
		Prompts: TestPrompts(),
	}
}
