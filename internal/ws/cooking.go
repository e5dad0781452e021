package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/cooking"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/middleware"
	"github.com/windoze95/chefremy-api/internal/service"
	"github.com/windoze95/chefremy-api/internal/voice"
	"go.uber.org/zap"
)

// WebSocket message types for the cooking protocol.
const (
	// client -> server
	MsgTypeVoiceCommand        = "voice_command"
	MsgTypeVoiceTranscript     = "voice_transcript"
	MsgTypeChatMessage         = "chat_message"
	MsgTypeAssistantConnect    = "assistant_connect"
	MsgTypeAssistantDisconnect = "assistant_disconnect"
	MsgTypeAssistantText       = "assistant_text"
	MsgTypePingState           = "ping_state"

	// both directions
	MsgTypeAssistantAudio = "assistant_audio"

	// server -> client
	MsgTypeConnected        = "connected"
	MsgTypeSessionState     = "session_state"
	MsgTypeVoiceResponse    = "voice_response"
	MsgTypeTimerTick        = "timer_tick"
	MsgTypeTimerCompleted   = "timer_completed"
	MsgTypeWakeWord         = "wake_word"
	MsgTypeAssistantMessage = "assistant_message"
	MsgTypeAssistantStatus  = "assistant_status"
	MsgTypeAssistantError   = "assistant_error"
	MsgTypeChatResponse     = "chat_response"
	MsgTypeError            = "error"
)

// Transcript modes.
const (
	ModeCommand    = "command"
	ModeContinuous = "continuous"
)

const requestTimeout = 30 * time.Second

// WSMessage is the envelope for all messages sent over the cooking WebSocket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// VoiceCommandPayload is a typed command.
type VoiceCommandPayload struct {
	Command string `json:"command"`
}

// VoiceTranscriptPayload carries recognised speech or raw audio. In
// continuous mode transcripts pass through the wake word detector first.
type VoiceTranscriptPayload struct {
	Transcript string `json:"transcript"`
	AudioData  []byte `json:"audio_data,omitempty"` // base64-encoded
	Mode       string `json:"mode,omitempty"`
}

// VoiceResponsePayload is the routed answer to a command.
type VoiceResponsePayload struct {
	Transcript string        `json:"transcript,omitempty"`
	Response   string        `json:"response"`
	Action     *voice.Action `json:"action,omitempty"`
	TTS        bool          `json:"tts"`
}

// ChatMessagePayload is sent by the client to ask a cooking question.
type ChatMessagePayload struct {
	Message       string `json:"message"`
	RecipeContext string `json:"recipe_context,omitempty"`
}

// ChatResponsePayload is sent by the server with an AI answer.
type ChatResponsePayload struct {
	Message string `json:"message"`
}

// WakeWordPayload reports detector progress.
type WakeWordPayload struct {
	State   string `json:"state"` // listening, command
	Command string `json:"command,omitempty"`
}

// AssistantTextPayload is a typed turn for the voice agent.
type AssistantTextPayload struct {
	Text string `json:"text"`
}

// AssistantAudioPayload carries microphone or agent audio.
type AssistantAudioPayload struct {
	Audio []byte `json:"audio"` // base64-encoded
}

// AssistantMessagePayload is a new conversation line plus recent history.
type AssistantMessagePayload struct {
	Message string   `json:"message"`
	History []string `json:"history"`
}

// TimerPayload carries timer progress.
type TimerPayload struct {
	Timer   cooking.Timer `json:"timer"`
	Message string        `json:"message,omitempty"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ConnectedPayload confirms a successful connection.
type ConnectedPayload struct {
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
}

// room is the per-session state shared by every client watching it.
type room struct {
	assistant *voice.Assistant
	wake      *voice.WakeWordDetector
}

// CookingHandler manages WebSocket connections for cooking mode.
type CookingHandler struct {
	Hub          *Hub
	Cfg          *config.Config
	Cooking      *service.CookingService
	Voice        *service.VoiceService
	Conversation ai.ConversationClient

	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]*room
}

// NewCookingHandler returns a new CookingHandler and subscribes it to timer
// events. A nil conversation client leaves the voice assistant disabled.
func NewCookingHandler(hub *Hub, cfg *config.Config, cookingService *service.CookingService, voiceService *service.VoiceService, conversation ai.ConversationClient) *CookingHandler {
	ch := &CookingHandler{
		Hub:          hub,
		Cfg:          cfg,
		Cooking:      cookingService,
		Voice:        voiceService,
		Conversation: conversation,
		rooms:        make(map[string]*room),
	}
	ch.upgrader = websocket.Upgrader{
		CheckOrigin:     ch.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	cookingService.Manager.OnTimerEvent(ch.onTimerEvent)
	hub.OnRoomEmpty(ch.releaseRoom)
	return ch
}

func (ch *CookingHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin.
		return true
	}
	for _, allowed := range ch.Cfg.CORSOrigins() {
		if origin == allowed {
			return true
		}
	}
	// Allow localhost for development
	return strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost"
}

// HandleCookingSession upgrades an HTTP request to a WebSocket connection
// for a cooking session. Authentication is done via a "token" query parameter
// because WebSocket connections cannot easily use Authorization headers.
func (ch *CookingHandler) HandleCookingSession(c *gin.Context) {
	log := logger.FromGin(c)

	sessionID := c.Param("session_id")
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	tokenSessionID, err := middleware.ParseSessionToken(ch.Cfg.EnvVars.SessionSecret, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if tokenSessionID != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "token does not grant access to this session"})
		return
	}

	session, err := ch.Cooking.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := ch.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	client := &Client{
		Hub:      ch.Hub,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		RoomID:   sessionID,
		ClientID: uuid.New().String(),
	}

	// Queued before registering so nothing can overtake it.
	client.Send <- encode(MsgTypeConnected, ConnectedPayload{SessionID: sessionID, ClientID: client.ClientID})
	client.Send <- encode(MsgTypeSessionState, session.Snapshot())
	ch.Hub.Register <- client

	log.Info("cooking client connected",
		zap.String("session_id", sessionID),
		zap.String("client_id", client.ClientID),
	)

	go client.WritePump()
	go client.ReadPump(ch.handleMessage)
}

func encode(msgType string, payload interface{}) []byte {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			logger.Get().Error("failed to encode ws payload", zap.String("type", msgType), zap.Error(err))
			b, _ = json.Marshal(ErrorPayload{Message: "internal error"})
			msgType = MsgTypeError
		}
		raw = b
	}
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: raw})
	return msg
}

func (ch *CookingHandler) send(client *Client, msgType string, payload interface{}) {
	if !ch.Hub.SendTo(client, encode(msgType, payload)) {
		logger.Get().Debug("dropped ws message",
			zap.String("type", msgType),
			zap.String("session_id", client.RoomID),
			zap.String("client_id", client.ClientID),
		)
	}
}

func (ch *CookingHandler) broadcast(sessionID, msgType string, payload interface{}) {
	ch.Hub.BroadcastTo(sessionID, encode(msgType, payload))
}

// sendError sends an error message to a single client.
func (ch *CookingHandler) sendError(client *Client, message string) {
	ch.send(client, MsgTypeError, ErrorPayload{Message: message})
}

// handleMessage parses an incoming WebSocket message and routes it to the
// appropriate handler.
func (ch *CookingHandler) handleMessage(client *Client, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		ch.sendError(client, "invalid message format")
		return
	}

	logger.Get().Debug("received ws message",
		zap.String("type", msg.Type),
		zap.String("session_id", client.RoomID),
		zap.String("client_id", client.ClientID),
	)

	switch msg.Type {
	case MsgTypeVoiceCommand:
		ch.handleVoiceCommand(client, msg.Payload)
	case MsgTypeVoiceTranscript:
		ch.handleVoiceTranscript(client, msg.Payload)
	case MsgTypeChatMessage:
		ch.handleChatMessage(client, msg.Payload)
	case MsgTypeAssistantConnect:
		ch.handleAssistantConnect(client)
	case MsgTypeAssistantDisconnect:
		ch.handleAssistantDisconnect(client)
	case MsgTypeAssistantText:
		ch.handleAssistantText(client, msg.Payload)
	case MsgTypeAssistantAudio:
		ch.handleAssistantAudio(client, msg.Payload)
	case MsgTypePingState:
		ch.handlePingState(client)
	default:
		ch.sendError(client, "unknown message type: "+msg.Type)
	}
}

func (ch *CookingHandler) handleVoiceCommand(client *Client, payload json.RawMessage) {
	var cmd VoiceCommandPayload
	if err := json.Unmarshal(payload, &cmd); err != nil {
		ch.sendError(client, "invalid voice command payload")
		return
	}
	ch.runCommand(client, cmd.Command, "")
}

// runCommand routes a command against the session, answers the sender and
// pushes the new state to the room.
func (ch *CookingHandler) runCommand(client *Client, command, transcript string) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := ch.Cooking.HandleVoiceCommand(ctx, client.RoomID, command)
	if err != nil {
		if errors.Is(err, voice.ErrEmptyCommand) {
			ch.sendError(client, "Command is required")
			return
		}
		logger.Get().Error("failed to handle voice command",
			zap.String("session_id", client.RoomID),
			zap.Error(err),
		)
		ch.send(client, MsgTypeVoiceResponse, VoiceResponsePayload{
			Transcript: transcript,
			Response:   voice.ErrorReply,
			TTS:        true,
		})
		return
	}

	ch.send(client, MsgTypeVoiceResponse, VoiceResponsePayload{
		Transcript: transcript,
		Response:   resp.Response,
		Action:     resp.Action,
		TTS:        resp.TTS,
	})
	if resp.Action != nil {
		ch.SessionChanged(client.RoomID)
	}
}

// handleVoiceTranscript processes recognised speech or raw audio.
func (ch *CookingHandler) handleVoiceTranscript(client *Client, payload json.RawMessage) {
	var vt VoiceTranscriptPayload
	if err := json.Unmarshal(payload, &vt); err != nil {
		ch.sendError(client, "invalid voice transcript payload")
		return
	}

	if vt.Transcript == "" && len(vt.AudioData) == 0 {
		ch.sendError(client, "transcript or audio_data is required")
		return
	}

	transcript := vt.Transcript
	if len(vt.AudioData) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		text, err := ch.Voice.Transcribe(ctx, vt.AudioData)
		cancel()
		if err != nil {
			if errors.Is(err, service.ErrSpeechDisabled) {
				ch.sendError(client, "Speech recognition is not configured")
				return
			}
			logger.Get().Error("failed to transcribe audio",
				zap.String("session_id", client.RoomID),
				zap.Error(err),
			)
			ch.sendError(client, "failed to transcribe audio")
			return
		}
		transcript = text
	}

	if vt.Mode != ModeContinuous {
		ch.runCommand(client, transcript, transcript)
		return
	}

	event, command := ch.room(client.RoomID).wake.Process(transcript)
	switch event {
	case voice.WakeDetected:
		ch.send(client, MsgTypeWakeWord, WakeWordPayload{State: "listening"})
	case voice.WakeCommand:
		ch.send(client, MsgTypeWakeWord, WakeWordPayload{State: "command", Command: command})
		ch.runCommand(client, command, transcript)
	}
}

// handleChatMessage processes a cooking Q&A question.
func (ch *CookingHandler) handleChatMessage(client *Client, payload json.RawMessage) {
	log := logger.Get()

	var chatMsg ChatMessagePayload
	if err := json.Unmarshal(payload, &chatMsg); err != nil {
		ch.sendError(client, "invalid chat message payload")
		return
	}

	if strings.TrimSpace(chatMsg.Message) == "" {
		ch.sendError(client, "message cannot be empty")
		return
	}

	recipeContext := chatMsg.RecipeContext
	if recipeContext == "" {
		if session, err := ch.Cooking.GetSession(client.RoomID); err == nil {
			if b, err := json.Marshal(service.AgentContext(session)); err == nil {
				recipeContext = string(b)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	answer, err := ch.Voice.AnswerCookingQuestion(ctx, chatMsg.Message, recipeContext)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLLMDisabled):
			answer = voice.NoLLMReply
		default:
			log.Error("failed to get cooking answer",
				zap.String("session_id", client.RoomID),
				zap.Error(err),
			)
			answer = voice.ThinkingFailReply
		}
	}

	ch.send(client, MsgTypeChatResponse, ChatResponsePayload{Message: answer})
}

func (ch *CookingHandler) handlePingState(client *Client) {
	session, err := ch.Cooking.GetSession(client.RoomID)
	if err != nil {
		ch.sendError(client, err.Error())
		return
	}
	ch.send(client, MsgTypeSessionState, session.Snapshot())
}

func (ch *CookingHandler) handleAssistantConnect(client *Client) {
	session, err := ch.Cooking.GetSession(client.RoomID)
	if err != nil {
		ch.sendError(client, err.Error())
		return
	}

	assistant := ch.room(client.RoomID).assistant
	if !assistant.Available() {
		ch.send(client, MsgTypeAssistantError, ErrorPayload{Message: service.ErrAssistantDisabled.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := assistant.Connect(ctx, service.AgentContext(session)); err != nil {
		// The assistant already reported the failure to the room.
		logger.Get().Warn("voice assistant connect failed",
			zap.String("session_id", client.RoomID),
			zap.Error(err),
		)
	}
}

func (ch *CookingHandler) handleAssistantDisconnect(client *Client) {
	if err := ch.room(client.RoomID).assistant.Disconnect(); err != nil {
		logger.Get().Warn("voice assistant disconnect failed",
			zap.String("session_id", client.RoomID),
			zap.Error(err),
		)
	}
}

func (ch *CookingHandler) handleAssistantText(client *Client, payload json.RawMessage) {
	var p AssistantTextPayload
	if err := json.Unmarshal(payload, &p); err != nil || strings.TrimSpace(p.Text) == "" {
		ch.sendError(client, "invalid assistant text payload")
		return
	}
	if err := ch.room(client.RoomID).assistant.SendText(p.Text); err != nil {
		ch.send(client, MsgTypeAssistantError, ErrorPayload{Message: err.Error()})
	}
}

func (ch *CookingHandler) handleAssistantAudio(client *Client, payload json.RawMessage) {
	var p AssistantAudioPayload
	if err := json.Unmarshal(payload, &p); err != nil || len(p.Audio) == 0 {
		ch.sendError(client, "invalid assistant audio payload")
		return
	}
	if err := ch.room(client.RoomID).assistant.SendAudio(p.Audio); err != nil {
		ch.send(client, MsgTypeAssistantError, ErrorPayload{Message: err.Error()})
	}
}

// room returns the shared state of a session, creating it on first use.
func (ch *CookingHandler) room(sessionID string) *room {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if r, ok := ch.rooms[sessionID]; ok {
		return r
	}

	var agentID string
	var prompts *config.Prompts
	if ch.Cfg != nil {
		agentID = ch.Cfg.EnvVars.ElevenLabsAgentID
		prompts = ch.Cfg.Prompts
	}
	r := &room{
		assistant: voice.NewAssistant(ch.Conversation, agentID, prompts, ch.assistantEvents(sessionID)),
		wake:      voice.NewWakeWordDetector(),
	}
	ch.rooms[sessionID] = r
	return r
}

func (ch *CookingHandler) assistantEvents(sessionID string) voice.AssistantEvents {
	return voice.AssistantEvents{
		OnMessage: func(line string, history []string) {
			ch.broadcast(sessionID, MsgTypeAssistantMessage, AssistantMessagePayload{Message: line, History: history})
		},
		OnStatus: func(status voice.AssistantStatus) {
			ch.broadcast(sessionID, MsgTypeAssistantStatus, status)
		},
		OnAudio: func(chunk []byte) {
			ch.broadcast(sessionID, MsgTypeAssistantAudio, AssistantAudioPayload{Audio: chunk})
		},
		OnError: func(msg string) {
			ch.broadcast(sessionID, MsgTypeAssistantError, ErrorPayload{Message: msg})
		},
		OnAction: func(action *voice.Action) (string, error) {
			text, err := ch.Cooking.ApplyAction(sessionID, action)
			if err != nil {
				return "", err
			}
			ch.SessionChanged(sessionID)
			return text, nil
		},
	}
}

// SessionChanged pushes the current snapshot to the room and refreshes the
// agent's view of the session.
func (ch *CookingHandler) SessionChanged(sessionID string) {
	session, err := ch.Cooking.GetSession(sessionID)
	if err != nil {
		return
	}
	ch.broadcast(sessionID, MsgTypeSessionState, session.Snapshot())

	ch.mu.Lock()
	r, ok := ch.rooms[sessionID]
	ch.mu.Unlock()
	if ok && r.assistant.Status().Connected {
		if err := r.assistant.UpdateContext(service.AgentContext(session)); err != nil {
			logger.Get().Warn("failed to update assistant context",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}
}

// SessionEnded hangs up the session's voice assistant and forgets the room.
func (ch *CookingHandler) SessionEnded(sessionID string) {
	ch.mu.Lock()
	r, ok := ch.rooms[sessionID]
	delete(ch.rooms, sessionID)
	ch.mu.Unlock()

	if ok {
		_ = r.assistant.Disconnect()
	}
	ch.broadcast(sessionID, MsgTypeError, ErrorPayload{Message: "cooking session ended"})
}

// releaseRoom hangs up the voice assistant once nobody is watching the
// session. The cooking session itself stays open for REST clients.
func (ch *CookingHandler) releaseRoom(sessionID string) {
	ch.mu.Lock()
	if ch.Hub.RoomSize(sessionID) > 0 {
		ch.mu.Unlock()
		return
	}
	r, ok := ch.rooms[sessionID]
	delete(ch.rooms, sessionID)
	ch.mu.Unlock()

	if !ok {
		return
	}
	if err := r.assistant.Disconnect(); err != nil {
		logger.Get().Warn("voice assistant disconnect failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func (ch *CookingHandler) onTimerEvent(ev cooking.TimerEvent) {
	if ch.Hub.RoomSize(ev.SessionID) == 0 {
		return
	}
	if !ev.Completed {
		ch.broadcast(ev.SessionID, MsgTypeTimerTick, TimerPayload{Timer: ev.Timer})
		return
	}
	ch.broadcast(ev.SessionID, MsgTypeTimerCompleted, TimerPayload{
		Timer:   ev.Timer,
		Message: fmt.Sprintf("⏰ %s is done!", ev.Timer.Label),
	})
	ch.SessionChanged(ev.SessionID)
}
