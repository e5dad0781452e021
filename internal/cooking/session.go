package cooking

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/windoze95/chefremy-api/internal/models"
)

// Status is the lifecycle state of a cooking session.
type Status string

// Status values.
const (
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Session tracks one person cooking one recipe: the current step, completed
// steps, checked ingredients and any countdown timers. All methods are safe
// for concurrent use.
type Session struct {
	mu sync.Mutex

	id         string
	recipe     models.Recipe
	current    int
	completed  map[int]struct{}
	checked    map[string]struct{}
	timers     map[string]*Timer
	timerOrder []string
	status     Status
	startedAt  time.Time
	updatedAt  time.Time
}

// Snapshot is a point-in-time, serialisable view of a session.
type Snapshot struct {
	ID                 string      `json:"id"`
	RecipeID           string      `json:"recipeId"`
	RecipeTitle        string      `json:"recipeTitle"`
	Status             Status      `json:"status"`
	CurrentStep        int         `json:"currentStep"`
	TotalSteps         int         `json:"totalSteps"`
	Progress           float64     `json:"progress"`
	Step               models.Step `json:"step"`
	CompletedSteps     []int       `json:"completedSteps"`
	CheckedIngredients []string    `json:"checkedIngredients"`
	Timers             []Timer     `json:"timers"`
	StartedAt          time.Time   `json:"startedAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// NewSession starts a session on the first step of recipe.
func NewSession(id string, recipe models.Recipe) (*Session, error) {
	if len(recipe.Steps) == 0 {
		return nil, ErrNoSteps
	}
	recipe.SortSteps()

	now := time.Now()
	return &Session{
		id:        id,
		recipe:    recipe,
		completed: make(map[int]struct{}),
		checked:   make(map[string]struct{}),
		timers:    make(map[string]*Timer),
		status:    StatusInProgress,
		startedAt: now,
		updatedAt: now,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Recipe returns the recipe being cooked.
func (s *Session) Recipe() models.Recipe {
	return s.recipe
}

// StartedAt returns when the session was opened.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

func (s *Session) checkActive() error {
	if s.status == StatusCompleted {
		return ErrSessionCompleted
	}
	return nil
}

// Next advances to the following step. On the last step it is a no-op and
// reports false.
func (s *Session) Next() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return false, err
	}
	if s.current >= len(s.recipe.Steps)-1 {
		return false, nil
	}
	s.current++
	s.touch()
	return true, nil
}

// Previous moves back one step. On the first step it is a no-op and reports
// false.
func (s *Session) Previous() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return false, err
	}
	if s.current <= 0 {
		return false, nil
	}
	s.current--
	s.touch()
	return true, nil
}

// GoTo jumps directly to step index i.
func (s *Session) GoTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.recipe.Steps) {
		return ErrStepOutOfRange
	}
	s.current = i
	s.touch()
	return nil
}

// ToggleStep flips step i in the completed set and reports whether it is now
// completed.
func (s *Session) ToggleStep(i int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return false, err
	}
	if i < 0 || i >= len(s.recipe.Steps) {
		return false, ErrStepOutOfRange
	}
	s.touch()
	if _, done := s.completed[i]; done {
		delete(s.completed, i)
		return false, nil
	}
	s.completed[i] = struct{}{}
	return true, nil
}

// CompleteStep marks step i completed. With autoAdvance set and i being the
// current step, the session also moves to the next step.
func (s *Session) CompleteStep(i int, autoAdvance bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.recipe.Steps) {
		return ErrStepOutOfRange
	}
	s.completed[i] = struct{}{}
	if autoAdvance && i == s.current && s.current < len(s.recipe.Steps)-1 {
		s.current++
	}
	s.touch()
	return nil
}

// IsStepCompleted reports whether step i is in the completed set.
func (s *Session) IsStepCompleted(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completed[i]
	return ok
}

// ToggleIngredient flips the checked state of an ingredient and reports
// whether it is now checked.
func (s *Session) ToggleIngredient(ingredientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return false, err
	}
	if _, ok := s.recipe.Ingredient(ingredientID); !ok {
		return false, ErrIngredientNotFound
	}
	s.touch()
	if _, ok := s.checked[ingredientID]; ok {
		delete(s.checked, ingredientID)
		return false, nil
	}
	s.checked[ingredientID] = struct{}{}
	return true, nil
}

// CheckIngredientByName checks the ingredient the spoken name refers to.
// Already checked ingredients stay checked.
func (s *Session) CheckIngredientByName(name string) (models.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return models.Ingredient{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return models.Ingredient{}, ErrIngredientNotFound
	}
	match, ok := matchIngredient(s.recipe.Ingredients, needle)
	if !ok {
		return models.Ingredient{}, ErrIngredientNotFound
	}
	s.checked[match.ID] = struct{}{}
	s.touch()
	return match, nil
}

// matchIngredient prefers the first ingredient whose name contains the spoken
// text. Failing that it takes the longest name found inside the spoken text,
// so "salted butter" picks butter over salt.
func matchIngredient(ingredients []models.Ingredient, needle string) (models.Ingredient, bool) {
	for _, ing := range ingredients {
		if strings.Contains(strings.ToLower(ing.Name), needle) {
			return ing, true
		}
	}

	var best models.Ingredient
	bestLen := 0
	for _, ing := range ingredients {
		hay := strings.ToLower(ing.Name)
		if hay != "" && len(hay) > bestLen && strings.Contains(needle, hay) {
			best, bestLen = ing, len(hay)
		}
	}
	return best, bestLen > 0
}

// IsIngredientChecked reports whether the ingredient is checked.
func (s *Session) IsIngredientChecked(ingredientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.checked[ingredientID]
	return ok
}

// NextNeededIngredient returns the first unchecked ingredient used by the
// current step, then by later steps, then anywhere in the recipe.
func (s *Session) NextNeededIngredient() (models.Ingredient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := s.current; i < len(s.recipe.Steps); i++ {
		for _, id := range s.recipe.Steps[i].IngredientIDs {
			if _, done := s.checked[id]; done {
				continue
			}
			if ing, ok := s.recipe.Ingredient(id); ok {
				return ing, true
			}
		}
	}
	for _, ing := range s.recipe.Ingredients {
		if _, done := s.checked[ing.ID]; !done {
			return ing, true
		}
	}
	return models.Ingredient{}, false
}

// CurrentIndex returns the zero-based index of the current step.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentStep returns the current step.
func (s *Session) CurrentStep() models.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipe.Steps[s.current]
}

// CurrentStepIngredients resolves the ingredients used by the current step.
func (s *Session) CurrentStepIngredients() []models.Ingredient {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Ingredient
	for _, id := range s.recipe.Steps[s.current].IngredientIDs {
		if ing, ok := s.recipe.Ingredient(id); ok {
			out = append(out, ing)
		}
	}
	return out
}

// Progress returns (current+1)/len(steps) as a percentage.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

func (s *Session) progress() float64 {
	return float64(s.current+1) / float64(len(s.recipe.Steps)) * 100
}

// Status returns the session status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Pause marks the session paused and pauses every running timer. It returns
// the IDs of the timers it paused.
func (s *Session) Pause() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return nil, err
	}
	var paused []string
	for _, id := range s.timerOrder {
		if s.timers[id].Pause() {
			paused = append(paused, id)
		}
	}
	s.status = StatusPaused
	s.touch()
	return paused, nil
}

// Resume marks a paused session in progress again. Timers stay paused.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return err
	}
	s.status = StatusInProgress
	s.touch()
	return nil
}

// Finish completes the session. Further mutations fail with
// ErrSessionCompleted.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		t.Pause()
	}
	s.status = StatusCompleted
	s.touch()
}

// AddTimer creates an idle timer. For step timers stepOrder names the step.
func (s *Session) AddTimer(label string, kind TimerKind, duration, stepOrder int) (Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return Timer{}, err
	}
	t, err := NewTimer(uuid.New().String(), label, kind, duration, stepOrder)
	if err != nil {
		return Timer{}, err
	}
	s.timers[t.ID] = t
	s.timerOrder = append(s.timerOrder, t.ID)
	s.touch()
	return *t, nil
}

func (s *Session) withTimer(timerID string, fn func(t *Timer)) (Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return Timer{}, err
	}
	t, ok := s.timers[timerID]
	if !ok {
		return Timer{}, ErrTimerNotFound
	}
	fn(t)
	s.touch()
	return *t, nil
}

// StartTimer starts or restarts a timer.
func (s *Session) StartTimer(timerID string) (Timer, error) {
	return s.withTimer(timerID, func(t *Timer) { t.Start() })
}

// PauseTimer pauses a running timer.
func (s *Session) PauseTimer(timerID string) (Timer, error) {
	return s.withTimer(timerID, func(t *Timer) { t.Pause() })
}

// ResetTimer returns a timer to idle with full time.
func (s *Session) ResetTimer(timerID string) (Timer, error) {
	return s.withTimer(timerID, func(t *Timer) { t.Reset() })
}

// TickTimer advances a timer by one second and reports whether this tick
// completed it.
func (s *Session) TickTimer(timerID string) (Timer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[timerID]
	if !ok {
		return Timer{}, false, ErrTimerNotFound
	}
	done := t.Tick()
	return *t, done, nil
}

// RemoveTimer deletes a timer.
func (s *Session) RemoveTimer(timerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[timerID]; !ok {
		return ErrTimerNotFound
	}
	delete(s.timers, timerID)
	for i, id := range s.timerOrder {
		if id == timerID {
			s.timerOrder = append(s.timerOrder[:i], s.timerOrder[i+1:]...)
			break
		}
	}
	s.touch()
	return nil
}

// Timer returns a copy of the timer with the given ID.
func (s *Session) Timer(timerID string) (Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[timerID]
	if !ok {
		return Timer{}, false
	}
	return *t, true
}

// Timers returns copies of all timers in creation order.
func (s *Session) Timers() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timersLocked()
}

func (s *Session) timersLocked() []Timer {
	out := make([]Timer, 0, len(s.timerOrder))
	for _, id := range s.timerOrder {
		out = append(out, *s.timers[id])
	}
	return out
}

// Snapshot returns a consistent view of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := make([]int, 0, len(s.completed))
	for i := range s.completed {
		completed = append(completed, i)
	}
	sort.Ints(completed)

	checked := make([]string, 0, len(s.checked))
	for _, ing := range s.recipe.Ingredients {
		if _, ok := s.checked[ing.ID]; ok {
			checked = append(checked, ing.ID)
		}
	}

	return Snapshot{
		ID:                 s.id,
		RecipeID:           s.recipe.ID,
		RecipeTitle:        s.recipe.Title,
		Status:             s.status,
		CurrentStep:        s.current,
		TotalSteps:         len(s.recipe.Steps),
		Progress:           s.progress(),
		Step:               s.recipe.Steps[s.current],
		CompletedSteps:     completed,
		CheckedIngredients: checked,
		Timers:             s.timersLocked(),
		StartedAt:          s.startedAt,
		UpdatedAt:          s.updatedAt,
	}
}
