package cooking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/chefremy-api/internal/models"
)

func testRecipe() models.Recipe {
	return models.Recipe{
		ID:    "r1",
		Title: "Garlic Pasta",
		Ingredients: models.Ingredients{
			{ID: "i1", Name: "spaghetti", Amount: "200", Unit: "g"},
			{ID: "i2", Name: "garlic", Amount: "3", Unit: "cloves"},
			{ID: "i3", Name: "olive oil", Amount: "2", Unit: "tbsp"},
			{ID: "i4", Name: "chicken breast", Amount: "1", Unit: "piece"},
		},
		Steps: []models.Step{
			{ID: "s1", Order: 1, Text: "Boil the pasta", Duration: 600, IngredientIDs: []string{"i1"}},
			{ID: "s2", Order: 2, Text: "Fry the garlic", Duration: 60, IngredientIDs: []string{"i2", "i3"}},
			{ID: "s3", Order: 3, Text: "Toss together", IngredientIDs: []string{}},
		},
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("sess-1", testRecipe())
	require.NoError(t, err)
	return s
}

func TestNewSession_RequiresSteps(t *testing.T) {
	r := testRecipe()
	r.Steps = nil
	_, err := NewSession("x", r)
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestNewSession_SortsSteps(t *testing.T) {
	r := testRecipe()
	r.Steps[0], r.Steps[2] = r.Steps[2], r.Steps[0]
	s, err := NewSession("x", r)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentStep().Order)
}

func TestSession_PreviousOnFirstStepIsNoop(t *testing.T) {
	s := newTestSession(t)
	moved, err := s.Previous()
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSession_NextOnLastStepIsNoop(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.GoTo(2))

	moved, err := s.Next()
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 2, s.CurrentIndex())
}

func TestSession_NextAndPrevious(t *testing.T) {
	s := newTestSession(t)
	moved, _ := s.Next()
	assert.True(t, moved)
	assert.Equal(t, "Fry the garlic", s.CurrentStep().Text)

	moved, _ = s.Previous()
	assert.True(t, moved)
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSession_GoToOutOfRange(t *testing.T) {
	s := newTestSession(t)
	assert.ErrorIs(t, s.GoTo(3), ErrStepOutOfRange)
	assert.ErrorIs(t, s.GoTo(-1), ErrStepOutOfRange)
}

func TestSession_ToggleStepTwiceRestores(t *testing.T) {
	s := newTestSession(t)

	done, err := s.ToggleStep(1)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, s.IsStepCompleted(1))

	done, err = s.ToggleStep(1)
	require.NoError(t, err)
	assert.False(t, done)
	assert.False(t, s.IsStepCompleted(1))
	assert.Empty(t, s.Snapshot().CompletedSteps)
}

func TestSession_ToggleStepOutOfRange(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ToggleStep(7)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
}

func TestSession_CompleteStepAutoAdvance(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.CompleteStep(0, true))
	assert.True(t, s.IsStepCompleted(0))
	assert.Equal(t, 1, s.CurrentIndex())

	require.NoError(t, s.CompleteStep(2, true))
	assert.Equal(t, 1, s.CurrentIndex(), "completing a non-current step does not move")

	require.NoError(t, s.GoTo(2))
	require.NoError(t, s.CompleteStep(2, true))
	assert.Equal(t, 2, s.CurrentIndex(), "auto-advance clamps at the last step")
}

func TestSession_ToggleIngredientUnchecksWhenChecked(t *testing.T) {
	s := newTestSession(t)

	checked, err := s.ToggleIngredient("i2")
	require.NoError(t, err)
	assert.True(t, checked)

	checked, err = s.ToggleIngredient("i2")
	require.NoError(t, err)
	assert.False(t, checked)
	assert.False(t, s.IsIngredientChecked("i2"))
}

func TestSession_ToggleUnknownIngredient(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ToggleIngredient("nope")
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestSession_CheckIngredientByName(t *testing.T) {
	s := newTestSession(t)

	ing, err := s.CheckIngredientByName(" Chicken ")
	require.NoError(t, err)
	assert.Equal(t, "i4", ing.ID)
	assert.True(t, s.IsIngredientChecked("i4"))

	_, err = s.CheckIngredientByName("chicken")
	require.NoError(t, err)
	assert.True(t, s.IsIngredientChecked("i4"), "checking twice keeps it checked")

	_, err = s.CheckIngredientByName("saffron")
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestSession_CheckIngredientByName_PrefersLongestName(t *testing.T) {
	r := testRecipe()
	r.Ingredients = append(models.Ingredients{{ID: "salt", Name: "salt"}}, r.Ingredients...)
	r.Ingredients = append(r.Ingredients, models.Ingredient{ID: "butter", Name: "butter"})
	s, err := NewSession("sess-2", r)
	require.NoError(t, err)

	ing, err := s.CheckIngredientByName("salted butter")
	require.NoError(t, err)
	assert.Equal(t, "butter", ing.ID)
	assert.False(t, s.IsIngredientChecked("salt"))

	ing, err = s.CheckIngredientByName("oil")
	require.NoError(t, err)
	assert.Equal(t, "i3", ing.ID, "a name containing the spoken text wins")
}

func TestSession_NextNeededIngredient(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.GoTo(1))

	ing, ok := s.NextNeededIngredient()
	require.True(t, ok)
	assert.Equal(t, "garlic", ing.Name)

	_, _ = s.ToggleIngredient("i2")
	_, _ = s.ToggleIngredient("i3")
	ing, ok = s.NextNeededIngredient()
	require.True(t, ok)
	assert.Equal(t, "spaghetti", ing.Name, "falls back to any unchecked ingredient")

	_, _ = s.ToggleIngredient("i1")
	_, _ = s.ToggleIngredient("i4")
	_, ok = s.NextNeededIngredient()
	assert.False(t, ok)
}

func TestSession_Progress(t *testing.T) {
	s := newTestSession(t)
	assert.InDelta(t, 100.0/3, s.Progress(), 0.001)
	require.NoError(t, s.GoTo(2))
	assert.InDelta(t, 100.0, s.Progress(), 0.001)
}

func TestSession_CurrentStepIngredients(t *testing.T) {
	s := newTestSession(t)
	_, _ = s.Next()
	ings := s.CurrentStepIngredients()
	require.Len(t, ings, 2)
	assert.Equal(t, "garlic", ings[0].Name)
	assert.Equal(t, "olive oil", ings[1].Name)
}

func TestSession_FinishBlocksMutation(t *testing.T) {
	s := newTestSession(t)
	s.Finish()

	_, err := s.Next()
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = s.ToggleIngredient("i1")
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = s.AddTimer("x", TimerKindManual, 10, 0)
	assert.ErrorIs(t, err, ErrSessionCompleted)
	assert.Equal(t, StatusCompleted, s.Status())
}

func TestSession_PausePausesRunningTimers(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddTimer("a", TimerKindManual, 30, 0)
	b, _ := s.AddTimer("b", TimerKindManual, 30, 0)
	_, _ = s.StartTimer(a.ID)

	paused, err := s.Pause()
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, paused)
	assert.Equal(t, StatusPaused, s.Status())

	got, _ := s.Timer(b.ID)
	assert.Equal(t, TimerIdle, got.State)

	require.NoError(t, s.Resume())
	assert.Equal(t, StatusInProgress, s.Status())
}

func TestSession_TimersKeepCreationOrder(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddTimer("a", TimerKindManual, 30, 0)
	b, _ := s.AddTimer("b", TimerKindStep, 60, 2)
	c, _ := s.AddTimer("c", TimerKindVoice, 90, 0)

	require.NoError(t, s.RemoveTimer(b.ID))
	timers := s.Timers()
	require.Len(t, timers, 2)
	assert.Equal(t, a.ID, timers[0].ID)
	assert.Equal(t, c.ID, timers[1].ID)

	assert.ErrorIs(t, s.RemoveTimer(b.ID), ErrTimerNotFound)
}

func TestSession_Snapshot(t *testing.T) {
	s := newTestSession(t)
	_, _ = s.ToggleIngredient("i3")
	_, _ = s.ToggleIngredient("i1")
	_, _ = s.ToggleStep(2)
	_, _ = s.ToggleStep(0)

	snap := s.Snapshot()
	assert.Equal(t, "sess-1", snap.ID)
	assert.Equal(t, "r1", snap.RecipeID)
	assert.Equal(t, 3, snap.TotalSteps)
	assert.Equal(t, []int{0, 2}, snap.CompletedSteps)
	assert.Equal(t, []string{"i1", "i3"}, snap.CheckedIngredients, "ordered by recipe ingredient order")
	assert.Equal(t, "Boil the pasta", snap.Step.Text)
}
