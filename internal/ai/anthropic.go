package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
)

// AnthropicProvider implements TextProvider using Claude.
type AnthropicProvider struct {
	client     anthropic.Client
	model      anthropic.Model
	maxRetries int
}

// NewAnthropicProvider creates a Claude provider using the fast Haiku model,
// which suits short spoken replies.
func NewAnthropicProvider(apiKey string, maxRetries int) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		client:     client,
		model:      anthropic.Model("claude-haiku-4-5-20251001"),
		maxRetries: attempts(maxRetries),
	}
}

func newUserMessage(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{
		Role:    anthropic.MessageParamRoleUser,
		Content: blocks,
	}
}

func newAssistantMessage(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{
		Role:    anthropic.MessageParamRoleAssistant,
		Content: blocks,
	}
}

// createMessageWithRetry wraps the Claude API call with linear backoff.
func (p *AnthropicProvider) createMessageWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error

	for i := 0; i < p.maxRetries; i++ {
		resp, err := p.client.Messages.New(ctx, params)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		shouldRetry, waitTime := classifyAnthropicError(err)
		if !shouldRetry {
			return nil, fmt.Errorf("claude API error: %w", err)
		}

		logger.Get().Warn("claude API error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		if i < p.maxRetries-1 {
			if err := retryWait(ctx, waitTime, i); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("claude API: exhausted %d attempts: %w", p.maxRetries, lastErr)
}

// extractTextContent concatenates the text blocks of a Claude response.
func extractTextContent(msg *anthropic.Message) (string, error) {
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.New("no text content in Claude response")
	}
	return strings.TrimSpace(text), nil
}

// Complete sends the request to Claude and returns the reply text.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	msgs := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "assistant" {
			msgs = append(msgs, newAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			msgs = append(msgs, newUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	resp, err := p.createMessageWithRetry(ctx, params)
	if err != nil {
		return "", err
	}

	return extractTextContent(resp)
}
