package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by providers whose credentials are missing.
var ErrNotConfigured = errors.New("provider not configured")

// TextProvider handles short text completions (OpenAI chat or Claude).
type TextProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// SpeechProvider handles speech-to-text (Whisper).
type SpeechProvider interface {
	TranscribeAudio(ctx context.Context, audioData []byte) (string, error)
}

// VoiceProvider handles text-to-speech.
type VoiceProvider interface {
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)
}

// RecipeSearchProvider handles third-party recipe search (Edamam).
type RecipeSearchProvider interface {
	SearchRecipes(ctx context.Context, query string, count int) ([]RecipeHit, error)
}

// NutritionProvider handles ingredient nutrition analysis (Edamam).
type NutritionProvider interface {
	AnalyzeNutrition(ctx context.Context, ingredient string) (*NutritionFacts, error)
}

// ConversationClient opens realtime sessions with a hosted voice agent.
type ConversationClient interface {
	StartSession(ctx context.Context, cfg ConversationConfig, handlers ConversationHandlers) (ConversationSession, error)
}

// ConversationSession is a live agent conversation.
type ConversationSession interface {
	SendContextualUpdate(text string) error
	SendUserMessage(text string) error
	SendUserAudio(chunk []byte) error
	End() error
}

// CompletionRequest is a single-turn or short multi-turn completion.
type CompletionRequest struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string // "user", "assistant"
	Content string
}

// RecipeHit is a single recipe returned by recipe search.
type RecipeHit struct {
	Label       string   `json:"label"`
	Source      string   `json:"source,omitempty"`
	URL         string   `json:"url,omitempty"`
	Image       string   `json:"image,omitempty"`
	CuisineType []string `json:"cuisineType,omitempty"`
	TotalTime   float64  `json:"totalTime,omitempty"`
	Calories    float64  `json:"calories"`
	Servings    float64  `json:"servings,omitempty"`
}

// NutritionFacts is the nutrition breakdown of one ingredient line.
type NutritionFacts struct {
	Ingredient string  `json:"ingredient"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Fat        float64 `json:"fat"`
	Carbs      float64 `json:"carbs"`
	Fiber      float64 `json:"fiber"`
}

// ConversationConfig configures a new agent conversation.
type ConversationConfig struct {
	AgentID      string
	Prompt       string
	FirstMessage string
	Variables    map[string]string
}

// ConversationHandlers receive agent events. Any handler may be nil.
// OnToolCall returns the result sent back to the agent.
type ConversationHandlers struct {
	OnConnect     func(conversationID string)
	OnUserText    func(text string)
	OnAgentText   func(text string)
	OnAudio       func(chunk []byte)
	OnInterrupt   func()
	OnToolCall    func(name string, params map[string]interface{}) (string, error)
	OnError       func(err error)
	OnDisconnect  func()
	OnModeChanged func(speaking bool)
}
