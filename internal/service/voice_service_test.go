package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/testutil"
	"github.com/windoze95/chefremy-api/internal/voice"
)

type fakeSigner struct {
	url     string
	err     error
	agentID string
}

func (f *fakeSigner) SignedURL(ctx context.Context, agentID string) (string, error) {
	f.agentID = agentID
	return f.url, f.err
}

func newTestVoiceService() *VoiceService {
	cfg := testutil.TestConfig()
	router := voice.NewRouter(voice.Deps{Prompts: cfg.Prompts})
	return NewVoiceService(cfg, router, nil, nil, nil, nil, nil)
}

func TestVoiceService_CapabilitiesDisabled(t *testing.T) {
	svc := newTestVoiceService()
	ctx := context.Background()

	if _, err := svc.Transcribe(ctx, []byte("x")); !errors.Is(err, ErrSpeechDisabled) {
		t.Errorf("Transcribe error = %v, want ErrSpeechDisabled", err)
	}
	if _, err := svc.Speak(ctx, "hello", ""); !errors.Is(err, ErrTTSDisabled) {
		t.Errorf("Speak error = %v, want ErrTTSDisabled", err)
	}
	if _, err := svc.AnswerCookingQuestion(ctx, "how long?", ""); !errors.Is(err, ErrLLMDisabled) {
		t.Errorf("AnswerCookingQuestion error = %v, want ErrLLMDisabled", err)
	}
	if _, err := svc.SignedURL(ctx); !errors.Is(err, ErrAssistantDisabled) {
		t.Errorf("SignedURL error = %v, want ErrAssistantDisabled", err)
	}
}

func TestVoiceService_ProcessCommand(t *testing.T) {
	svc := newTestVoiceService()

	resp, err := svc.ProcessCommand(context.Background(), voice.Request{Command: "set timer for 5 minutes"})
	if err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if resp.Action == nil || resp.Action.Type != voice.ActionTimer || resp.Action.Data["minutes"] != 5 {
		t.Errorf("action = %+v, want timer{minutes:5}", resp.Action)
	}

	if _, err := svc.ProcessCommand(context.Background(), voice.Request{}); !errors.Is(err, voice.ErrEmptyCommand) {
		t.Errorf("empty command error = %v, want ErrEmptyCommand", err)
	}
}

func TestVoiceService_ProcessAudioCommand(t *testing.T) {
	svc := newTestVoiceService()
	svc.Speech = &testutil.MockSpeechProvider{
		TranscribeAudioFunc: func(ctx context.Context, audioData []byte) (string, error) {
			return "  next step \n", nil
		},
	}

	transcript, resp, err := svc.ProcessAudioCommand(context.Background(), []byte{1, 2}, nil)
	if err != nil {
		t.Fatalf("ProcessAudioCommand: %v", err)
	}
	if transcript != "next step" {
		t.Errorf("transcript = %q", transcript)
	}
	if resp.Action == nil || resp.Action.Data["direction"] != "next" {
		t.Errorf("action = %+v, want navigate next", resp.Action)
	}

	if _, err := svc.Transcribe(context.Background(), nil); err == nil {
		t.Error("expected validation error for empty audio")
	}
}

func TestVoiceService_TranscribeFailure(t *testing.T) {
	svc := newTestVoiceService()
	svc.Speech = &testutil.MockSpeechProvider{
		TranscribeAudioFunc: func(ctx context.Context, audioData []byte) (string, error) {
			return "", errors.New("whisper down")
		},
	}
	_, err := svc.Transcribe(context.Background(), []byte{1})
	if err == nil || !strings.Contains(err.Error(), "whisper down") {
		t.Errorf("error = %v, want wrapped whisper failure", err)
	}
}

func TestVoiceService_SpeakUsesDefaultVoice(t *testing.T) {
	svc := newTestVoiceService()
	var gotVoice string
	svc.Voice = &testutil.MockVoiceProvider{
		SynthesizeFunc: func(ctx context.Context, text string, v string) ([]byte, error) {
			gotVoice = v
			return []byte("mp3"), nil
		},
	}

	audio, err := svc.Speak(context.Background(), "Preheat the oven.", "")
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if string(audio) != "mp3" || gotVoice != "alloy" {
		t.Errorf("audio=%q voice=%q", audio, gotVoice)
	}

	if _, err := svc.Speak(context.Background(), "hi", "nova"); err != nil || gotVoice != "nova" {
		t.Errorf("explicit voice = %q, err = %v", gotVoice, err)
	}

	var verr ValidationError
	if _, err := svc.Speak(context.Background(), "  ", ""); !errors.As(err, &verr) {
		t.Errorf("blank text error = %v, want ValidationError", err)
	}
}

func TestVoiceService_AnswerCookingQuestion(t *testing.T) {
	svc := newTestVoiceService()
	text := &testutil.MockTextProvider{
		CompleteFunc: func(ctx context.Context, req ai.CompletionRequest) (string, error) {
			return " About 6 minutes per side. ", nil
		},
	}
	svc.Text = text

	answer, err := svc.AnswerCookingQuestion(context.Background(), "how long do I sear?", "Garlic Chicken step 2")
	if err != nil {
		t.Fatalf("AnswerCookingQuestion: %v", err)
	}
	if answer != "About 6 minutes per side." {
		t.Errorf("answer = %q", answer)
	}

	calls := text.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].System != "QA. Recipe: Garlic Chicken step 2" {
		t.Errorf("system prompt = %q", calls[0].System)
	}
	if calls[0].Messages[0].Content != "how long do I sear?" {
		t.Errorf("question = %q", calls[0].Messages[0].Content)
	}
}

func TestVoiceService_SignedURL(t *testing.T) {
	svc := newTestVoiceService()
	svc.Cfg.EnvVars.ElevenLabsAgentID = "agent-7"
	signer := &fakeSigner{url: "wss://example.test/signed"}
	svc.Signer = signer

	url, err := svc.SignedURL(context.Background())
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if url != "wss://example.test/signed" || signer.agentID != "agent-7" {
		t.Errorf("url=%q agent=%q", url, signer.agentID)
	}

	signer.err = ai.ErrNotConfigured
	if _, err := svc.SignedURL(context.Background()); !errors.Is(err, ErrAssistantDisabled) {
		t.Errorf("error = %v, want ErrAssistantDisabled", err)
	}
}
