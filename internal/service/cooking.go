package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/cooking"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/metrics"
	"github.com/windoze95/chefremy-api/internal/middleware"
	"github.com/windoze95/chefremy-api/internal/models"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/voice"
	"go.uber.org/zap"
)

// Timer controls accepted by ControlTimer.
const (
	TimerStart = "start"
	TimerPause = "pause"
	TimerReset = "reset"
)

// CookingService runs cooking sessions: it owns the session manager, issues
// session tokens, and applies voice actions to sessions.
type CookingService struct {
	Cfg     *config.Config
	Repo    repository.RecipeRepo
	Manager *cooking.Manager
	Router  *voice.Router
	Metrics *metrics.Collector
}

// NewCookingService is the constructor function for initializing a new CookingService
func NewCookingService(cfg *config.Config, repo repository.RecipeRepo, manager *cooking.Manager, router *voice.Router, m *metrics.Collector) *CookingService {
	s := &CookingService{
		Cfg:     cfg,
		Repo:    repo,
		Manager: manager,
		Router:  router,
		Metrics: m,
	}
	manager.OnTimerEvent(func(ev cooking.TimerEvent) {
		if ev.Completed {
			s.Metrics.TimerCompleted()
		}
	})
	return s
}

// StartSession opens a cooking session on a recipe and returns it with a
// token scoped to it.
func (s *CookingService) StartSession(recipeID string) (*cooking.Session, string, error) {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return nil, "", err
	}

	session, err := s.Manager.Start(*recipe)
	if err != nil {
		return nil, "", err
	}

	token, err := middleware.GenerateSessionToken(s.Cfg.EnvVars.SessionSecret, session.ID(), middleware.SessionTokenTTL)
	if err != nil {
		_ = s.Manager.End(session.ID())
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	s.Metrics.SetActiveSessions(s.Manager.Count())
	return session, token, nil
}

// GetSession returns a live session.
func (s *CookingService) GetSession(sessionID string) (*cooking.Session, error) {
	return s.Manager.Get(sessionID)
}

// EndSession stops a session's timers and forgets it.
func (s *CookingService) EndSession(sessionID string) error {
	if err := s.Manager.End(sessionID); err != nil {
		return err
	}
	s.Metrics.SetActiveSessions(s.Manager.Count())
	return nil
}

// ExpireSessions ends, every interval, the sessions opened more than maxAge
// ago. onEnded is called for each of them.
func (s *CookingService) ExpireSessions(interval, maxAge time.Duration, onEnded func(sessionID string)) {
	s.Manager.ExpireEvery(interval, maxAge, func(ids []string) {
		s.Metrics.SetActiveSessions(s.Manager.Count())
		if onEnded == nil {
			return
		}
		for _, id := range ids {
			onEnded(id)
		}
	})
}

// Navigate moves one step in direction ("next" or "previous"). Moving past
// either end leaves the session where it is.
func (s *CookingService) Navigate(sessionID, direction string) (cooking.Snapshot, error) {
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return cooking.Snapshot{}, err
	}
	switch direction {
	case "next":
		_, err = session.Next()
	case "previous":
		_, err = session.Previous()
	default:
		return cooking.Snapshot{}, NewValidationError(fmt.Sprintf("unknown direction %q", direction))
	}
	if err != nil {
		return cooking.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// GoToStep jumps to a zero-based step index.
func (s *CookingService) GoToStep(sessionID string, index int) (cooking.Snapshot, error) {
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return cooking.Snapshot{}, err
	}
	if err := session.GoTo(index); err != nil {
		return cooking.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *CookingService) ToggleStep(sessionID string, index int) (cooking.Snapshot, error) {
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return cooking.Snapshot{}, err
	}
	if _, err := session.ToggleStep(index); err != nil {
		return cooking.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *CookingService) CompleteStep(sessionID string, index int, autoAdvance bool) (cooking.Snapshot, error) {
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return cooking.Snapshot{}, err
	}
	if err := session.CompleteStep(index, autoAdvance); err != nil {
		return cooking.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *CookingService) ToggleIngredient(sessionID, ingredientID string) (cooking.Snapshot, error) {
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return cooking.Snapshot{}, err
	}
	if _, err := session.ToggleIngredient(ingredientID); err != nil {
		return cooking.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// FinishSession marks the session completed.
func (s *CookingService) FinishSession(sessionID string) (cooking.Snapshot, error) {
	if err := s.Manager.Finish(sessionID); err != nil {
		return cooking.Snapshot{}, err
	}
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return cooking.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// AddTimer creates a timer. A timer tied to a step with no label is named
// after the step. Manual timers are left idle until started.
func (s *CookingService) AddTimer(sessionID string, duration int, label string, stepOrder int, start bool) (cooking.Timer, error) {
	kind := cooking.TimerKindManual
	label = strings.TrimSpace(label)
	if stepOrder > 0 {
		kind = cooking.TimerKindStep
		if label == "" {
			label = fmt.Sprintf("Step %d", stepOrder)
		}
	}
	if label == "" {
		label = cooking.FormatTime(duration) + " timer"
	}
	return s.Manager.AddTimer(sessionID, label, kind, duration, stepOrder, start)
}

// ControlTimer starts, pauses or resets a timer.
func (s *CookingService) ControlTimer(sessionID, timerID, op string) (cooking.Timer, error) {
	switch op {
	case TimerStart:
		return s.Manager.StartTimer(sessionID, timerID)
	case TimerPause:
		return s.Manager.PauseTimer(sessionID, timerID)
	case TimerReset:
		return s.Manager.ResetTimer(sessionID, timerID)
	}
	return cooking.Timer{}, NewValidationError(fmt.Sprintf("unknown timer control %q", op))
}

func (s *CookingService) RemoveTimer(sessionID, timerID string) error {
	return s.Manager.RemoveTimer(sessionID, timerID)
}

// CommandContext describes a session the way the command router expects.
func CommandContext(session *cooking.Session) *voice.CommandContext {
	snap := session.Snapshot()
	recipe := session.Recipe()

	step := snap.CurrentStep + 1
	cc := &voice.CommandContext{
		CurrentPage:   voice.PageCookingMode,
		CurrentRecipe: recipe.Title,
		CurrentStep:   &step,
	}
	checked := make(map[string]bool, len(snap.CheckedIngredients))
	for _, id := range snap.CheckedIngredients {
		checked[id] = true
	}
	for _, ing := range recipe.Ingredients {
		cc.AvailableIngredients = append(cc.AvailableIngredients, ing.Name)
		if checked[ing.ID] {
			cc.CheckedIngredients = append(cc.CheckedIngredients, ing.Name)
		}
	}
	return cc
}

// AgentContext describes a session for the conversational agent.
func AgentContext(session *cooking.Session) voice.AgentContext {
	snap := session.Snapshot()
	ac := voice.AgentContext{
		RecipeTitle: snap.RecipeTitle,
		StepNumber:  snap.CurrentStep + 1,
		TotalSteps:  snap.TotalSteps,
		StepText:    snap.Step.Text,
	}
	for _, ing := range session.CurrentStepIngredients() {
		ac.Ingredients = append(ac.Ingredients, describeIngredient(ing))
	}
	for _, t := range snap.Timers {
		ac.Timers = append(ac.Timers, fmt.Sprintf("%s: %s %s", t.Label, cooking.FormatTime(t.Remaining), t.State))
	}
	return ac
}

func describeIngredient(ing models.Ingredient) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ing.Amount, ing.Unit, ing.Name} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// HandleVoiceCommand routes a command spoken in cooking mode and applies the
// resulting action to the session.
func (s *CookingService) HandleVoiceCommand(ctx context.Context, sessionID, command string) (*voice.Response, error) {
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := s.Router.Route(ctx, voice.Request{Command: command, Context: CommandContext(session)})
	if err != nil {
		return nil, err
	}
	if resp.Action == nil {
		return resp, nil
	}

	text, err := s.ApplyAction(sessionID, resp.Action)
	if err != nil {
		logger.Get().Warn("failed to apply voice action",
			zap.String("session_id", sessionID),
			zap.String("action", resp.Action.Type),
			zap.Error(err))
		if errors.Is(err, cooking.ErrSessionCompleted) {
			resp.Response = "This cooking session is already finished."
			return resp, nil
		}
		return nil, err
	}
	if text != "" {
		resp.Response = text
	}
	return resp, nil
}

// ApplyAction performs a router or agent action on a session. The returned
// text, when not empty, replaces the reply to the user.
func (s *CookingService) ApplyAction(sessionID string, action *voice.Action) (string, error) {
	session, err := s.Manager.Get(sessionID)
	if err != nil {
		return "", err
	}
	if action == nil {
		return "", nil
	}

	switch action.Type {
	case voice.ActionNavigate:
		switch stringData(action, "direction") {
		case "next":
			_, err = session.Next()
		case "previous":
			_, err = session.Previous()
		}
		return "", err

	case voice.ActionTimer:
		minutes, ok := intData(action, "minutes")
		if !ok || minutes <= 0 {
			return voice.TimerClarifyReply, nil
		}
		step := session.CurrentStep()
		_, err := s.Manager.AddTimer(sessionID, fmt.Sprintf("%d minute timer", minutes),
			cooking.TimerKindVoice, minutes*60, step.Order, true)
		return "", err

	case voice.ActionIngredient:
		switch stringData(action, "action") {
		case "check":
			name := stringData(action, "ingredient")
			if _, err := session.CheckIngredientByName(name); err != nil {
				if errors.Is(err, cooking.ErrIngredientNotFound) {
					return fmt.Sprintf("I couldn't find %s in this recipe.", name), nil
				}
				return "", err
			}
			return "", nil
		case "next":
			ing, ok := session.NextNeededIngredient()
			if !ok {
				return "You have everything you need!", nil
			}
			return fmt.Sprintf("You still need %s.", describeIngredient(ing)), nil
		}

	case voice.ActionRead:
		switch stringData(action, "content") {
		case "ingredients":
			ingredients := session.CurrentStepIngredients()
			if len(ingredients) == 0 {
				return "No specific ingredients for this step", nil
			}
			names := make([]string, 0, len(ingredients))
			for _, ing := range ingredients {
				names = append(names, describeIngredient(ing))
			}
			return "You need: " + strings.Join(names, ", "), nil
		case "current-step":
			return session.CurrentStep().Text, nil
		}
	}
	return "", nil
}

func stringData(action *voice.Action, key string) string {
	v, _ := action.Data[key].(string)
	return v
}

// intData reads a number that may have come from Go code or from JSON.
func intData(action *voice.Action, key string) (int, bool) {
	switch v := action.Data[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
