package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsWSURL   = "wss://api.elevenlabs.io"

	convaiWriteWait = 10 * time.Second
)

// ElevenLabsClient implements ConversationClient against the ElevenLabs
// conversational AI websocket API.
type ElevenLabsClient struct {
	apiKey     string
	baseURL    string
	wsURL      string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// NewElevenLabsClient creates a client. An empty apiKey is allowed for
// public agents, which are reached without a signed URL.
func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:     apiKey,
		baseURL:    elevenLabsBaseURL,
		wsURL:      elevenLabsWSURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

// WithBaseURLs points the client at other hosts, such as a test server.
func (c *ElevenLabsClient) WithBaseURLs(httpBase, wsBase string) *ElevenLabsClient {
	c.baseURL = httpBase
	c.wsURL = wsBase
	return c
}

// SignedURL fetches a short-lived websocket URL for a private agent.
func (c *ElevenLabsClient) SignedURL(ctx context.Context, agentID string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if agentID == "" {
		return "", errors.New("agent id is required")
	}

	reqURL := fmt.Sprintf("%s/v1/convai/conversation/get-signed-url?agent_id=%s",
		c.baseURL, url.QueryEscape(agentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create signed url request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("signed url request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read signed url response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ElevenLabs API returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		SignedURL string `json:"signed_url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse signed url response: %w", err)
	}
	if out.SignedURL == "" {
		return "", errors.New("ElevenLabs returned an empty signed url")
	}
	return out.SignedURL, nil
}

// StartSession connects to the agent, sends the conversation overrides and
// starts dispatching events to handlers until End is called or the
// connection drops.
func (c *ElevenLabsClient) StartSession(ctx context.Context, cfg ConversationConfig, handlers ConversationHandlers) (ConversationSession, error) {
	if cfg.AgentID == "" {
		return nil, errors.New("agent id is required")
	}

	wsURL := fmt.Sprintf("%s/v1/convai/conversation?agent_id=%s", c.wsURL, url.QueryEscape(cfg.AgentID))
	if c.apiKey != "" {
		signed, err := c.SignedURL(ctx, cfg.AgentID)
		if err != nil {
			return nil, err
		}
		wsURL = signed
	}

	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to voice agent: %w", err)
	}

	s := &elevenLabsSession{
		conn:     conn,
		handlers: handlers,
		done:     make(chan struct{}),
	}

	init := map[string]interface{}{
		"type": "conversation_initiation_client_data",
	}
	override := map[string]interface{}{}
	agent := map[string]interface{}{}
	if cfg.Prompt != "" {
		agent["prompt"] = map[string]string{"prompt": cfg.Prompt}
	}
	if cfg.FirstMessage != "" {
		agent["first_message"] = cfg.FirstMessage
	}
	if len(agent) > 0 {
		override["agent"] = agent
		init["conversation_config_override"] = override
	}
	if len(cfg.Variables) > 0 {
		init["dynamic_variables"] = cfg.Variables
	}

	if err := s.writeJSON(init); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start conversation: %w", err)
	}

	go s.readLoop()
	return s, nil
}

type elevenLabsEvent struct {
	Type string `json:"type"`

	ConversationInitiationMetadataEvent *struct {
		ConversationID string `json:"conversation_id"`
	} `json:"conversation_initiation_metadata_event"`

	UserTranscriptionEvent *struct {
		UserTranscript string `json:"user_transcript"`
	} `json:"user_transcription_event"`

	AgentResponseEvent *struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event"`

	AudioEvent *struct {
		AudioBase64 string `json:"audio_base_64"`
	} `json:"audio_event"`

	PingEvent *struct {
		EventID int64 `json:"event_id"`
	} `json:"ping_event"`

	ClientToolCall *struct {
		ToolName   string                 `json:"tool_name"`
		ToolCallID string                 `json:"tool_call_id"`
		Parameters map[string]interface{} `json:"parameters"`
	} `json:"client_tool_call"`
}

type elevenLabsSession struct {
	conn     *websocket.Conn
	handlers ConversationHandlers
	writeMu  sync.Mutex

	speaking bool
	ended    bool
	endMu    sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

func (s *elevenLabsSession) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(convaiWriteWait)); err != nil {
		logger.Get().Debug("voice agent write deadline failed", zap.Error(err))
		return err
	}
	return s.conn.WriteJSON(v)
}

// SendContextualUpdate tells the agent about app state without prompting a reply.
func (s *elevenLabsSession) SendContextualUpdate(text string) error {
	return s.writeJSON(map[string]string{"type": "contextual_update", "text": text})
}

// SendUserMessage sends a typed user turn.
func (s *elevenLabsSession) SendUserMessage(text string) error {
	return s.writeJSON(map[string]string{"type": "user_message", "text": text})
}

// SendUserAudio streams one chunk of 16 kHz PCM microphone audio.
func (s *elevenLabsSession) SendUserAudio(chunk []byte) error {
	return s.writeJSON(map[string]string{"user_audio_chunk": base64.StdEncoding.EncodeToString(chunk)})
}

// End closes the conversation. It is safe to call more than once.
func (s *elevenLabsSession) End() error {
	s.endMu.Lock()
	s.ended = true
	s.endMu.Unlock()

	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		if werr := s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(convaiWriteWait)); werr != nil {
			logger.Get().Debug("voice agent close frame not sent", zap.Error(werr))
		}
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

// Done is closed once the read loop has exited and OnDisconnect has run.
func (s *elevenLabsSession) Done() <-chan struct{} {
	return s.done
}

func (s *elevenLabsSession) wasEnded() bool {
	s.endMu.Lock()
	defer s.endMu.Unlock()
	return s.ended
}

func (s *elevenLabsSession) setSpeaking(speaking bool) {
	if s.speaking == speaking {
		return
	}
	s.speaking = speaking
	if s.handlers.OnModeChanged != nil {
		s.handlers.OnModeChanged(speaking)
	}
}

func (s *elevenLabsSession) readLoop() {
	defer func() {
		s.closeOnce.Do(func() { s.conn.Close() })
		if s.handlers.OnDisconnect != nil {
			s.handlers.OnDisconnect()
		}
		close(s.done)
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.wasEnded() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if s.handlers.OnError != nil {
					s.handlers.OnError(fmt.Errorf("voice agent connection lost: %w", err))
				}
			}
			return
		}

		var ev elevenLabsEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			logger.Get().Warn("unparseable voice agent event", zap.Error(err))
			continue
		}
		s.dispatch(ev)
	}
}

func (s *elevenLabsSession) dispatch(ev elevenLabsEvent) {
	h := s.handlers

	switch ev.Type {
	case "conversation_initiation_metadata":
		if h.OnConnect != nil && ev.ConversationInitiationMetadataEvent != nil {
			h.OnConnect(ev.ConversationInitiationMetadataEvent.ConversationID)
		}

	case "user_transcript":
		s.setSpeaking(false)
		if h.OnUserText != nil && ev.UserTranscriptionEvent != nil {
			h.OnUserText(ev.UserTranscriptionEvent.UserTranscript)
		}

	case "agent_response":
		if h.OnAgentText != nil && ev.AgentResponseEvent != nil {
			h.OnAgentText(ev.AgentResponseEvent.AgentResponse)
		}

	case "audio":
		if ev.AudioEvent == nil {
			return
		}
		s.setSpeaking(true)
		if h.OnAudio != nil {
			chunk, err := base64.StdEncoding.DecodeString(ev.AudioEvent.AudioBase64)
			if err != nil {
				logger.Get().Warn("bad voice agent audio chunk", zap.Error(err))
				return
			}
			h.OnAudio(chunk)
		}

	case "interruption":
		s.setSpeaking(false)
		if h.OnInterrupt != nil {
			h.OnInterrupt()
		}

	case "ping":
		if ev.PingEvent != nil {
			if err := s.writeJSON(map[string]interface{}{"type": "pong", "event_id": ev.PingEvent.EventID}); err != nil {
				logger.Get().Warn("failed to answer voice agent ping", zap.Error(err))
			}
		}

	case "client_tool_call":
		if ev.ClientToolCall == nil {
			return
		}
		result := "Tool not supported"
		isError := true
		if h.OnToolCall != nil {
			out, err := h.OnToolCall(ev.ClientToolCall.ToolName, ev.ClientToolCall.Parameters)
			if err != nil {
				result = err.Error()
			} else {
				result = out
				isError = false
			}
		}
		if err := s.writeJSON(map[string]interface{}{
			"type":         "client_tool_result",
			"tool_call_id": ev.ClientToolCall.ToolCallID,
			"result":       result,
			"is_error":     isError,
		}); err != nil {
			logger.Get().Warn("failed to send tool result", zap.Error(err))
		}
	}
}
