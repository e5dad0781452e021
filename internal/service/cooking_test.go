package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/chefremy-api/internal/cooking"
	"github.com/windoze95/chefremy-api/internal/metrics"
	"github.com/windoze95/chefremy-api/internal/middleware"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/testutil"
	"github.com/windoze95/chefremy-api/internal/voice"
)

func newTestCookingService(t *testing.T) (*CookingService, *metrics.Collector) {
	t.Helper()
	m := metrics.New()
	manager := cooking.NewManager(cooking.NewClock(cooking.WithTickInterval(2 * time.Millisecond)))
	t.Cleanup(manager.Close)
	router := voice.NewRouter(voice.Deps{Prompts: testutil.TestPrompts(), Metrics: m})
	repo := testutil.NewMockRecipeRepo(testutil.TestRecipe())
	return NewCookingService(testutil.TestConfig(), repo, manager, router, m), m
}

func startTestSession(t *testing.T, svc *CookingService) *cooking.Session {
	t.Helper()
	session, _, err := svc.StartSession("test-1")
	require.NoError(t, err)
	return session
}

func TestCookingService_StartSessionIssuesToken(t *testing.T) {
	svc, _ := newTestCookingService(t)

	session, token, err := svc.StartSession("test-1")
	require.NoError(t, err)

	id, err := middleware.ParseSessionToken(testutil.TestConfig().EnvVars.SessionSecret, token)
	require.NoError(t, err)
	assert.Equal(t, session.ID(), id)
	assert.Equal(t, 1, svc.Manager.Count())

	require.NoError(t, svc.EndSession(session.ID()))
	assert.Equal(t, 0, svc.Manager.Count())
	assert.ErrorIs(t, svc.EndSession(session.ID()), cooking.ErrSessionNotFound)
}

func TestCookingService_ExpireSessions(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session, _, err := svc.StartSession("test-1")
	require.NoError(t, err)

	ended := make(chan string, 1)
	svc.ExpireSessions(5*time.Millisecond, 0, func(id string) { ended <- id })

	select {
	case id := <-ended:
		assert.Equal(t, session.ID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("expired session was not reported")
	}
	assert.Equal(t, 0, svc.Manager.Count())
}

func TestCookingService_StartSessionUnknownRecipe(t *testing.T) {
	svc, _ := newTestCookingService(t)

	_, _, err := svc.StartSession("missing")
	var notFound repository.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, 0, svc.Manager.Count())
}

func TestCommandContext_FromSession(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	_, err := session.Next()
	require.NoError(t, err)
	_, err = session.ToggleIngredient("i2")
	require.NoError(t, err)

	cc := CommandContext(session)
	assert.Equal(t, voice.PageCookingMode, cc.CurrentPage)
	assert.Equal(t, "Garlic Chicken", cc.CurrentRecipe)
	require.NotNil(t, cc.CurrentStep)
	assert.Equal(t, 2, *cc.CurrentStep)
	assert.Equal(t, []string{"chicken breast", "garlic", "butter"}, cc.AvailableIngredients)
	assert.Equal(t, []string{"garlic"}, cc.CheckedIngredients)
}

func TestAgentContext_FromSession(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	require.NoError(t, session.GoTo(1))

	ac := AgentContext(session)
	assert.Equal(t, "Garlic Chicken", ac.RecipeTitle)
	assert.Equal(t, 2, ac.StepNumber)
	assert.Equal(t, 3, ac.TotalSteps)
	assert.Equal(t, "Sear the chicken for 6 minutes.", ac.StepText)
	assert.Equal(t, []string{"2 pieces chicken breast", "2 tbsp butter"}, ac.Ingredients)
}

func TestCookingService_VoiceNavigation(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	ctx := context.Background()

	resp, err := svc.HandleVoiceCommand(ctx, session.ID(), "next step")
	require.NoError(t, err)
	assert.Equal(t, "Moving to the next step for you!", resp.Response)
	assert.Equal(t, 1, session.CurrentIndex())

	_, err = svc.HandleVoiceCommand(ctx, session.ID(), "next step")
	require.NoError(t, err)
	_, err = svc.HandleVoiceCommand(ctx, session.ID(), "next step")
	require.NoError(t, err)
	assert.Equal(t, 2, session.CurrentIndex(), "next on the last step is a no-op")

	_, err = svc.HandleVoiceCommand(ctx, session.ID(), "go back")
	require.NoError(t, err)
	assert.Equal(t, 1, session.CurrentIndex())
}

func TestCookingService_VoiceTimer(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)

	resp, err := svc.HandleVoiceCommand(context.Background(), session.ID(), "set a timer for 5 minutes")
	require.NoError(t, err)
	assert.Equal(t, "Setting a 5 minute timer for you!", resp.Response)

	timers := session.Timers()
	require.Len(t, timers, 1)
	assert.Equal(t, "5 minute timer", timers[0].Label)
	assert.Equal(t, cooking.TimerKindVoice, timers[0].Kind)
	assert.Equal(t, 300, timers[0].Duration)
	assert.Equal(t, 1, timers[0].StepOrder)
	assert.Equal(t, cooking.TimerRunning, timers[0].State)
}

func TestCookingService_ZeroMinuteTimerAsksForDuration(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)

	resp, err := svc.HandleVoiceCommand(context.Background(), session.ID(), "set timer for 0 minutes")
	require.NoError(t, err)
	assert.Equal(t, voice.TimerClarifyReply, resp.Response)
	assert.Empty(t, session.Timers())

	text, err := svc.ApplyAction(session.ID(), &voice.Action{Type: voice.ActionTimer, Data: map[string]interface{}{"minutes": 0}})
	require.NoError(t, err)
	assert.Equal(t, voice.TimerClarifyReply, text)
	assert.Empty(t, session.Timers())
}

func TestCookingService_VoiceIngredients(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	ctx := context.Background()

	resp, err := svc.HandleVoiceCommand(ctx, session.ID(), "I have the chicken")
	require.NoError(t, err)
	assert.Equal(t, "Great! I'll mark chicken as ready.", resp.Response)
	assert.True(t, session.IsIngredientChecked("i1"))

	resp, err = svc.HandleVoiceCommand(ctx, session.ID(), "I have the truffles")
	require.NoError(t, err)
	assert.Equal(t, "I couldn't find truffles in this recipe.", resp.Response)

	resp, err = svc.HandleVoiceCommand(ctx, session.ID(), "what do I need")
	require.NoError(t, err)
	assert.Equal(t, "You still need 2 tbsp butter.", resp.Response)

	for _, id := range []string{"i2", "i3"} {
		_, err := session.ToggleIngredient(id)
		require.NoError(t, err)
	}
	resp, err = svc.HandleVoiceCommand(ctx, session.ID(), "next ingredient")
	require.NoError(t, err)
	assert.Equal(t, "You have everything you need!", resp.Response)
}

func TestCookingService_VoiceRead(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	ctx := context.Background()

	resp, err := svc.HandleVoiceCommand(ctx, session.ID(), "read the ingredients")
	require.NoError(t, err)
	assert.Equal(t, "You need: 2 pieces chicken breast", resp.Response)

	resp, err = svc.HandleVoiceCommand(ctx, session.ID(), "repeat that")
	require.NoError(t, err)
	assert.Equal(t, "Season the chicken.", resp.Response)
}

func TestCookingService_VoiceWithoutLLM(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)

	resp, err := svc.HandleVoiceCommand(context.Background(), session.ID(), "what temperature should the oven be")
	require.NoError(t, err)
	assert.Equal(t, voice.NoLLMReply, resp.Response)
	assert.Nil(t, resp.Action)

	_, err = svc.HandleVoiceCommand(context.Background(), session.ID(), "  ")
	assert.ErrorIs(t, err, voice.ErrEmptyCommand)

	_, err = svc.HandleVoiceCommand(context.Background(), "nope", "next step")
	assert.ErrorIs(t, err, cooking.ErrSessionNotFound)
}

func TestCookingService_VoiceOnFinishedSession(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	_, err := svc.FinishSession(session.ID())
	require.NoError(t, err)

	resp, err := svc.HandleVoiceCommand(context.Background(), session.ID(), "next step")
	require.NoError(t, err)
	assert.Equal(t, "This cooking session is already finished.", resp.Response)
}

func TestCookingService_ApplyToolActions(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)

	action, _, err := voice.ToolAction("setTimer", map[string]interface{}{"minutes": float64(2)})
	require.NoError(t, err)
	text, err := svc.ApplyAction(session.ID(), action)
	require.NoError(t, err)
	assert.Empty(t, text)
	require.Len(t, session.Timers(), 1)
	assert.Equal(t, 120, session.Timers()[0].Duration)

	action, _, err = voice.ToolAction("repeatStep", nil)
	require.NoError(t, err)
	text, err = svc.ApplyAction(session.ID(), action)
	require.NoError(t, err)
	assert.Equal(t, "Season the chicken.", text)

	_, err = svc.ApplyAction(session.ID(), &voice.Action{Type: voice.ActionTimer, Data: map[string]interface{}{}})
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCookingService_RESTOperations(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	id := session.ID()

	snap, err := svc.Navigate(id, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentStep)

	_, err = svc.Navigate(id, "sideways")
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)

	snap, err = svc.ToggleStep(id, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, snap.CompletedSteps)
	snap, err = svc.ToggleStep(id, 0)
	require.NoError(t, err)
	assert.Empty(t, snap.CompletedSteps)

	snap, err = svc.CompleteStep(id, 1, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, snap.CompletedSteps)
	assert.Equal(t, 2, snap.CurrentStep)

	_, err = svc.GoToStep(id, 9)
	assert.ErrorIs(t, err, cooking.ErrStepOutOfRange)

	snap, err = svc.ToggleIngredient(id, "i3")
	require.NoError(t, err)
	assert.Equal(t, []string{"i3"}, snap.CheckedIngredients)
	_, err = svc.ToggleIngredient(id, "i9")
	assert.ErrorIs(t, err, cooking.ErrIngredientNotFound)
}

func TestCookingService_TimerControls(t *testing.T) {
	svc, _ := newTestCookingService(t)
	session := startTestSession(t, svc)
	id := session.ID()

	step, err := svc.AddTimer(id, 360, "", 2, false)
	require.NoError(t, err)
	assert.Equal(t, "Step 2", step.Label)
	assert.Equal(t, cooking.TimerKindStep, step.Kind)
	assert.Equal(t, cooking.TimerIdle, step.State)

	manual, err := svc.AddTimer(id, 90, "", 0, false)
	require.NoError(t, err)
	assert.Equal(t, "1:30 timer", manual.Label)
	assert.Equal(t, cooking.TimerKindManual, manual.Kind)

	tm, err := svc.ControlTimer(id, step.ID, TimerStart)
	require.NoError(t, err)
	assert.Equal(t, cooking.TimerRunning, tm.State)

	tm, err = svc.ControlTimer(id, step.ID, TimerPause)
	require.NoError(t, err)
	assert.Equal(t, cooking.TimerPaused, tm.State)

	tm, err = svc.ControlTimer(id, step.ID, TimerReset)
	require.NoError(t, err)
	assert.Equal(t, 360, tm.Remaining)

	_, err = svc.ControlTimer(id, step.ID, "explode")
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, svc.RemoveTimer(id, manual.ID))
	assert.ErrorIs(t, svc.RemoveTimer(id, manual.ID), cooking.ErrTimerNotFound)

	_, err = svc.AddTimer(id, 0, "bad", 0, false)
	assert.ErrorIs(t, err, cooking.ErrInvalidDuration)
}

func TestCookingService_CompletedTimersAreCounted(t *testing.T) {
	svc, m := newTestCookingService(t)
	session := startTestSession(t, svc)

	done := make(chan struct{}, 1)
	svc.Manager.OnTimerEvent(func(ev cooking.TimerEvent) {
		if ev.Completed {
			done <- struct{}{}
		}
	})

	_, err := svc.AddTimer(session.ID(), 2, "quick", 0, true)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never completed")
	}

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, "chefremy_timers_completed_total 1")
	assert.Contains(t, body, "chefremy_active_sessions 1")
}

func scrapeMetrics(t *testing.T, m *metrics.Collector) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}
