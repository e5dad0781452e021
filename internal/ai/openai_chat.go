package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
)

// DefaultOpenAIModel is the chat model used by the command router.
const DefaultOpenAIModel = "gpt-4o-mini"

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIProvider implements TextProvider and VoiceProvider using OpenAI.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// NewOpenAIProvider creates a provider for the given key and chat model.
// maxRetries counts total attempts; 1 means a single call.
func NewOpenAIProvider(apiKey, model string, maxRetries int) *OpenAIProvider {
	return NewOpenAIProviderWithBaseURL(apiKey, "", model, maxRetries)
}

// NewOpenAIProviderWithBaseURL is NewOpenAIProvider against a custom API
// base URL, such as a proxy or a test server.
func NewOpenAIProviderWithBaseURL(apiKey, baseURL, model string, maxRetries int) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client:     newOpenAIClient(apiKey, baseURL),
		model:      model,
		maxRetries: attempts(maxRetries),
	}
}

// Complete runs a chat completion and returns the first choice's text.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: 0.7,
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		resp, err := p.client.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("OpenAI returned no choices")
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err
		shouldRetry, waitTime := classifyOpenAIError(err)
		if !shouldRetry {
			return "", fmt.Errorf("OpenAI chat error: %w", err)
		}

		logger.Get().Warn("OpenAI chat error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		if i < p.maxRetries-1 {
			if err := retryWait(ctx, waitTime, i); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("OpenAI chat: exhausted %d attempts: %w", p.maxRetries, lastErr)
}
