package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/models"
	"github.com/windoze95/chefremy-api/internal/repository"
)

// --- MockTextProvider ---

// MockTextProvider is a mock implementation of ai.TextProvider that records
// every request it receives.
type MockTextProvider struct {
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	mu    sync.Mutex
	calls []ai.CompletionRequest
}

func (m *MockTextProvider) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", fmt.Errorf("Complete not configured")
}

// Calls returns the requests seen so far.
func (m *MockTextProvider) Calls() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.CompletionRequest(nil), m.calls...)
}

// --- MockSpeechProvider ---

type MockSpeechProvider struct {
	TranscribeAudioFunc func(ctx context.Context, audioData []byte) (string, error)
}

func (m *MockSpeechProvider) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	if m.TranscribeAudioFunc != nil {
		return m.TranscribeAudioFunc(ctx, audioData)
	}
	return "", fmt.Errorf("TranscribeAudio not configured")
}

// --- MockVoiceProvider ---

type MockVoiceProvider struct {
	SynthesizeFunc func(ctx context.Context, text string, voice string) ([]byte, error)
}

func (m *MockVoiceProvider) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, voice)
	}
	return nil, fmt.Errorf("Synthesize not configured")
}

// --- MockRecipeSearch ---

type MockRecipeSearch struct {
	SearchRecipesFunc func(ctx context.Context, query string, count int) ([]ai.RecipeHit, error)
}

func (m *MockRecipeSearch) SearchRecipes(ctx context.Context, query string, count int) ([]ai.RecipeHit, error) {
	if m.SearchRecipesFunc != nil {
		return m.SearchRecipesFunc(ctx, query, count)
	}
	return nil, fmt.Errorf("SearchRecipes not configured")
}

// --- MockNutrition ---

type MockNutrition struct {
	AnalyzeNutritionFunc func(ctx context.Context, ingredient string) (*ai.NutritionFacts, error)
}

func (m *MockNutrition) AnalyzeNutrition(ctx context.Context, ingredient string) (*ai.NutritionFacts, error) {
	if m.AnalyzeNutritionFunc != nil {
		return m.AnalyzeNutritionFunc(ctx, ingredient)
	}
	return nil, fmt.Errorf("AnalyzeNutrition not configured")
}

// --- MockConversationClient ---

// MockConversationClient hands out MockConversationSessions and keeps the
// handlers so tests can play agent events.
type MockConversationClient struct {
	StartErr error

	mu       sync.Mutex
	Config   ai.ConversationConfig
	Handlers ai.ConversationHandlers
	Session  *MockConversationSession
	Starts   int
}

func (m *MockConversationClient) StartSession(ctx context.Context, cfg ai.ConversationConfig, handlers ai.ConversationHandlers) (ai.ConversationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Starts++
	if m.StartErr != nil {
		return nil, m.StartErr
	}
	m.Config = cfg
	m.Handlers = handlers
	m.Session = &MockConversationSession{}
	return m.Session, nil
}

// CurrentHandlers returns the handlers passed to the last StartSession.
func (m *MockConversationClient) CurrentHandlers() ai.ConversationHandlers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Handlers
}

// StartCount returns how many sessions were requested.
func (m *MockConversationClient) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Starts
}

// MockConversationSession records everything sent to the agent.
type MockConversationSession struct {
	mu       sync.Mutex
	Contexts []string
	Messages []string
	Audio    [][]byte
	Ended    bool
}

func (s *MockConversationSession) SendContextualUpdate(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Contexts = append(s.Contexts, text)
	return nil
}

func (s *MockConversationSession) SendUserMessage(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, text)
	return nil
}

func (s *MockConversationSession) SendUserAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Audio = append(s.Audio, chunk)
	return nil
}

func (s *MockConversationSession) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ended = true
	return nil
}

// Snapshot returns copies of the recorded traffic.
func (s *MockConversationSession) Snapshot() (contexts, messages []string, ended bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Contexts...), append([]string(nil), s.Messages...), s.Ended
}

// --- MockRecipeRepo ---

// MockRecipeRepo is a map-backed repository.RecipeRepo with error injection.
type MockRecipeRepo struct {
	mu      sync.Mutex
	Recipes map[string]*models.Recipe
	order   []string

	ListErr   error
	CreateErr error
	UpdateErr error
}

func NewMockRecipeRepo(recipes ...models.Recipe) *MockRecipeRepo {
	m := &MockRecipeRepo{Recipes: make(map[string]*models.Recipe)}
	for i := range recipes {
		r := recipes[i]
		m.Recipes[r.ID] = &r
		m.order = append(m.order, r.ID)
	}
	return m
}

func (m *MockRecipeRepo) ListRecipes() ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Recipe, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.Recipes[id])
	}
	return out, nil
}

func (m *MockRecipeRepo) GetRecipeByID(recipeID string) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Recipes[recipeID]
	if !ok {
		return nil, repository.NewNotFoundError("recipe not found")
	}
	cp := *r
	return &cp, nil
}

func (m *MockRecipeRepo) CreateRecipe(recipe *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *recipe
	m.Recipes[recipe.ID] = &cp
	m.order = append(m.order, recipe.ID)
	return nil
}

func (m *MockRecipeRepo) UpdateRecipeImage(recipeID string, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	r, ok := m.Recipes[recipeID]
	if !ok {
		return repository.NewNotFoundError("recipe not found")
	}
	r.Image = imageURL
	return nil
}

func (m *MockRecipeRepo) CountRecipes() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.Recipes)), nil
}
