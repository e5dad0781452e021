package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/cooking"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/service"
	"github.com/windoze95/chefremy-api/internal/util"
	"go.uber.org/zap"
)

// SessionNotifier is told about session changes made over REST so live
// WebSocket clients stay in sync.
type SessionNotifier interface {
	SessionChanged(sessionID string)
	SessionEnded(sessionID string)
}

// CookingHandler is the handler for cooking session requests.
type CookingHandler struct {
	Service  *service.CookingService
	Notifier SessionNotifier
}

// NewCookingHandler is the constructor function for initializing a new CookingHandler.
// notifier may be nil.
func NewCookingHandler(cookingService *service.CookingService, notifier SessionNotifier) *CookingHandler {
	return &CookingHandler{Service: cookingService, Notifier: notifier}
}

// AddTimerRequest is the body of POST /timers.
type AddTimerRequest struct {
	Duration  int    `json:"duration"`
	Label     string `json:"label"`
	StepOrder int    `json:"step_order"`
	Start     bool   `json:"start"`
}

// sessionParam returns the session the token middleware authenticated,
// falling back to the path for unauthenticated routes.
func sessionParam(c *gin.Context) string {
	if id, err := util.GetSessionIDFromContext(c); err == nil {
		return id
	}
	return c.Param("session_id")
}

func (h *CookingHandler) changed(sessionID string) {
	if h.Notifier != nil {
		h.Notifier.SessionChanged(sessionID)
	}
}

// respondSnapshot answers with the session state or the error that
// prevented the change, and notifies live clients on success.
func (h *CookingHandler) respondSnapshot(c *gin.Context, snap cooking.Snapshot, err error) {
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			logger.FromGin(c).Error("cooking session request failed",
				zap.String("session_id", sessionParam(c)),
				zap.Error(err))
		}
		respondError(c, err)
		return
	}
	h.changed(snap.ID)
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// StartSession opens a session on a recipe and returns its token.
func (h *CookingHandler) StartSession(c *gin.Context) {
	recipeID := c.Param("recipe_id")

	session, token, err := h.Service.StartSession(recipeID)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			logger.FromGin(c).Error("failed to start cooking session", zap.String("recipe_id", recipeID), zap.Error(err))
		}
		respondError(c, err)
		return
	}

	logger.FromGin(c).Info("cooking session started",
		zap.String("session_id", session.ID()),
		zap.String("recipe_id", recipeID))

	c.JSON(http.StatusCreated, gin.H{
		"session": session.Snapshot(),
		"token":   token,
	})
}

// GetSession returns the session state.
func (h *CookingHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(sessionParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// EndSession stops the session and its timers.
func (h *CookingHandler) EndSession(c *gin.Context) {
	sessionID := sessionParam(c)
	if err := h.Service.EndSession(sessionID); err != nil {
		respondError(c, err)
		return
	}
	if h.Notifier != nil {
		h.Notifier.SessionEnded(sessionID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cooking session ended"})
}

func (h *CookingHandler) FinishSession(c *gin.Context) {
	snap, err := h.Service.FinishSession(sessionParam(c))
	h.respondSnapshot(c, snap, err)
}

func (h *CookingHandler) NextStep(c *gin.Context) {
	snap, err := h.Service.Navigate(sessionParam(c), "next")
	h.respondSnapshot(c, snap, err)
}

func (h *CookingHandler) PreviousStep(c *gin.Context) {
	snap, err := h.Service.Navigate(sessionParam(c), "previous")
	h.respondSnapshot(c, snap, err)
}

// GoToStep jumps to the step at :index.
func (h *CookingHandler) GoToStep(c *gin.Context) {
	index, err := parseIndexParam(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step index"})
		return
	}
	snap, err := h.Service.GoToStep(sessionParam(c), index)
	h.respondSnapshot(c, snap, err)
}

// ToggleStep flips the completed mark of the step at :index.
func (h *CookingHandler) ToggleStep(c *gin.Context) {
	index, err := parseIndexParam(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step index"})
		return
	}
	snap, err := h.Service.ToggleStep(sessionParam(c), index)
	h.respondSnapshot(c, snap, err)
}

// CompleteStep marks the step at :index done. ?auto_advance=true moves to
// the next step when :index is the current one.
func (h *CookingHandler) CompleteStep(c *gin.Context) {
	index, err := parseIndexParam(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step index"})
		return
	}
	autoAdvance, _ := strconv.ParseBool(c.DefaultQuery("auto_advance", "false"))

	snap, err := h.Service.CompleteStep(sessionParam(c), index, autoAdvance)
	h.respondSnapshot(c, snap, err)
}

func (h *CookingHandler) ToggleIngredient(c *gin.Context) {
	snap, err := h.Service.ToggleIngredient(sessionParam(c), c.Param("ingredient_id"))
	h.respondSnapshot(c, snap, err)
}

// AddTimer creates a step or manual timer.
func (h *CookingHandler) AddTimer(c *gin.Context) {
	sessionID := sessionParam(c)

	var req AddTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a positive number of seconds"})
		return
	}

	timer, err := h.Service.AddTimer(sessionID, req.Duration, req.Label, req.StepOrder, req.Start)
	if err != nil {
		respondError(c, err)
		return
	}
	h.changed(sessionID)
	c.JSON(http.StatusCreated, gin.H{"timer": timer})
}

// ControlTimer returns a handler applying op (start, pause or reset).
func (h *CookingHandler) ControlTimer(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionParam(c)
		timer, err := h.Service.ControlTimer(sessionID, c.Param("timer_id"), op)
		if err != nil {
			respondError(c, err)
			return
		}
		h.changed(sessionID)
		c.JSON(http.StatusOK, gin.H{"timer": timer})
	}
}

func (h *CookingHandler) RemoveTimer(c *gin.Context) {
	sessionID := sessionParam(c)
	if err := h.Service.RemoveTimer(sessionID, c.Param("timer_id")); err != nil {
		respondError(c, err)
		return
	}
	h.changed(sessionID)
	c.Status(http.StatusNoContent)
}
