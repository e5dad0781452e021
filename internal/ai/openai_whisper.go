package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
)

// WhisperProvider implements SpeechProvider using OpenAI Whisper.
type WhisperProvider struct {
	client     *openai.Client
	maxRetries int
}

// NewWhisperProvider creates a new Whisper speech-to-text provider.
func NewWhisperProvider(apiKey string, maxRetries int) *WhisperProvider {
	return &WhisperProvider{
		client:     newOpenAIClient(apiKey, ""),
		maxRetries: attempts(maxRetries),
	}
}

// TranscribeAudio transcribes audio data to text using Whisper.
func (p *WhisperProvider) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	if len(audioData) == 0 {
		return "", errors.New("audio data is empty")
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    openai.Whisper1,
			Reader:   bytes.NewReader(audioData),
			FilePath: "audio.webm",
		})
		if err == nil {
			if resp.Text == "" {
				return "", errors.New("Whisper returned empty transcription")
			}
			return resp.Text, nil
		}

		lastErr = err
		shouldRetry, waitTime := classifyOpenAIError(err)
		if !shouldRetry {
			return "", fmt.Errorf("Whisper API error: %w", err)
		}

		logger.Get().Warn("Whisper API error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		if i < p.maxRetries-1 {
			if err := retryWait(ctx, waitTime, i); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("Whisper API: exhausted %d attempts: %w", p.maxRetries, lastErr)
}
