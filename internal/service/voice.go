package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/metrics"
	"github.com/windoze95/chefremy-api/internal/voice"
	"go.uber.org/zap"
)

// SignedURLProvider issues short-lived URLs for browser clients to join the
// hosted voice agent directly.
type SignedURLProvider interface {
	SignedURL(ctx context.Context, agentID string) (string, error)
}

// VoiceService handles voice commands, speech I/O and quick cooking answers.
type VoiceService struct {
	Cfg     *config.Config
	Router  *voice.Router
	Speech  ai.SpeechProvider
	Voice   ai.VoiceProvider
	Text    ai.TextProvider
	Signer  SignedURLProvider
	Metrics *metrics.Collector

	censor *voice.ReplyFilter
}

// NewVoiceService creates a new VoiceService. Nil providers leave their
// capability switched off.
func NewVoiceService(cfg *config.Config, router *voice.Router, speech ai.SpeechProvider, tts ai.VoiceProvider, text ai.TextProvider, signer SignedURLProvider, m *metrics.Collector) *VoiceService {
	return &VoiceService{
		Cfg:     cfg,
		Router:  router,
		Speech:  speech,
		Voice:   tts,
		Text:    text,
		Signer:  signer,
		Metrics: m,
		censor:  voice.NewReplyFilter(),
	}
}

// ProcessCommand routes a typed or transcribed command.
func (s *VoiceService) ProcessCommand(ctx context.Context, req voice.Request) (*voice.Response, error) {
	return s.Router.Route(ctx, req)
}

// Transcribe turns recorded audio into text.
func (s *VoiceService) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	if s.Speech == nil {
		return "", ErrSpeechDisabled
	}
	if len(audioData) == 0 {
		return "", NewValidationError("audio is required")
	}
	transcript, err := s.Speech.TranscribeAudio(ctx, audioData)
	if err != nil {
		s.Metrics.ExternalError("whisper")
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return strings.TrimSpace(transcript), nil
}

// ProcessAudioCommand transcribes audio and routes the transcript.
func (s *VoiceService) ProcessAudioCommand(ctx context.Context, audioData []byte, cc *voice.CommandContext) (string, *voice.Response, error) {
	transcript, err := s.Transcribe(ctx, audioData)
	if err != nil {
		return "", nil, err
	}
	resp, err := s.Router.Route(ctx, voice.Request{Command: transcript, Context: cc})
	if err != nil {
		return transcript, nil, err
	}
	return transcript, resp, nil
}

// Speak synthesizes text. An empty voiceID uses the configured voice.
func (s *VoiceService) Speak(ctx context.Context, text, voiceID string) ([]byte, error) {
	if s.Voice == nil {
		return nil, ErrTTSDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text is required")
	}
	if voiceID == "" {
		voiceID = s.Cfg.EnvVars.TTSVoice
	}
	audio, err := s.Voice.Synthesize(ctx, text, voiceID)
	if err != nil {
		s.Metrics.ExternalError("tts")
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return audio, nil
}

// AnswerCookingQuestion answers a free-form question asked while cooking.
func (s *VoiceService) AnswerCookingQuestion(ctx context.Context, question string, recipeContext string) (string, error) {
	if s.Text == nil {
		return "", ErrLLMDisabled
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", NewValidationError("question is required")
	}

	var tmpl string
	if s.Cfg.Prompts != nil {
		tmpl = s.Cfg.Prompts.CookingQA.System
	}
	system, err := config.RenderPrompt(tmpl, map[string]interface{}{"RecipeContext": recipeContext})
	if err != nil {
		return "", err
	}

	answer, err := s.Text.Complete(ctx, ai.CompletionRequest{
		System:    system,
		Messages:  []ai.Message{{Role: "user", Content: question}},
		MaxTokens: 200,
	})
	if err != nil {
		s.Metrics.ExternalError("llm")
		logger.Get().Error("cooking question failed", zap.Error(err))
		return "", fmt.Errorf("answer cooking question: %w", err)
	}
	return s.censor.Clean(strings.TrimSpace(answer)), nil
}

// SignedURL returns a signed conversation URL for the configured agent.
func (s *VoiceService) SignedURL(ctx context.Context) (string, error) {
	if s.Signer == nil || s.Cfg.EnvVars.ElevenLabsAgentID == "" {
		return "", ErrAssistantDisabled
	}
	url, err := s.Signer.SignedURL(ctx, s.Cfg.EnvVars.ElevenLabsAgentID)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return "", ErrAssistantDisabled
		}
		s.Metrics.ExternalError("elevenlabs")
		return "", fmt.Errorf("get signed url: %w", err)
	}
	return url, nil
}
