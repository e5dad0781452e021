package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultVoice is the OpenAI TTS voice used when none is requested.
const DefaultVoice = "alloy"

// Synthesize renders text to MP3 audio with OpenAI text-to-speech.
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("text is empty")
	}
	if voice == "" {
		voice = DefaultVoice
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI TTS error: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read TTS audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("OpenAI TTS returned no audio")
	}
	return audio, nil
}
