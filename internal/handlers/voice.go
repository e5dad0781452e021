package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/service"
	"github.com/windoze95/chefremy-api/internal/voice"
	"go.uber.org/zap"
)

const (
	maxAudioSize = 25 << 20

	ttsFailReply = "Sorry, I couldn't read that out loud right now."
)

// VoiceHandler serves the command router and speech endpoints.
type VoiceHandler struct {
	Service *service.VoiceService
}

// NewVoiceHandler is the constructor function for initializing a new VoiceHandler.
func NewVoiceHandler(voiceService *service.VoiceService) *VoiceHandler {
	return &VoiceHandler{Service: voiceService}
}

type voiceChatRequest struct {
	Command string                `json:"command"`
	Context *voice.CommandContext `json:"context"`

	// Older clients sent the command as "ingredients".
	Ingredients string `json:"ingredients"`
}

func commandRequired(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":    "Command is required",
		"response": voice.ErrorReply,
	})
}

// VoiceChat handles POST /v1/voice-chat
func (h *VoiceHandler) VoiceChat(c *gin.Context) {
	var req voiceChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "response": voice.ErrorReply})
		return
	}

	command := req.Command
	if command == "" {
		command = req.Ingredients
	}
	h.route(c, voice.Request{Command: command, Context: req.Context})
}

// VoiceChatQuery handles GET /v1/voice-chat?command=&context=
func (h *VoiceHandler) VoiceChatQuery(c *gin.Context) {
	req := voice.Request{Command: c.Query("command")}
	if raw := c.Query("context"); raw != "" {
		var cc voice.CommandContext
		if err := json.Unmarshal([]byte(raw), &cc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid context", "response": voice.ErrorReply})
			return
		}
		req.Context = &cc
	}
	h.route(c, req)
}

func (h *VoiceHandler) route(c *gin.Context, req voice.Request) {
	resp, err := h.Service.ProcessCommand(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, voice.ErrEmptyCommand) {
			commandRequired(c)
			return
		}
		logger.FromGin(c).Error("voice command failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "response": voice.ErrorReply})
		return
	}

	logger.FromGin(c).Debug("voice command routed",
		zap.String("intent", resp.Intent),
		zap.String("source", resp.Source))
	c.JSON(http.StatusOK, resp)
}

// Transcribe handles POST /v1/voice/transcribe
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxAudioSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio exceeds maximum size of 25MB"})
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audio"})
		return
	}

	transcript, err := h.Service.Transcribe(c.Request.Context(), audio)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.FromGin(c).Error("transcription failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Transcription failed", "response": voice.ErrorReply})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}

type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// TextToSpeech handles POST /v1/tts
func (h *VoiceHandler) TextToSpeech(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	audio, err := h.Service.Speak(c.Request.Context(), req.Text, req.VoiceID)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.FromGin(c).Error("text to speech failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Speech synthesis failed", "response": ttsFailReply})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audioContent": base64.StdEncoding.EncodeToString(audio)})
}

// SignedURL handles GET /v1/voice/signed-url
func (h *VoiceHandler) SignedURL(c *gin.Context) {
	url, err := h.Service.SignedURL(c.Request.Context())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.FromGin(c).Error("failed to get signed url", zap.Error(err))
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signed_url": url})
}
