package cooking

import "fmt"

// TimerState is the lifecycle state of a countdown timer.
type TimerState string

// TimerState values.
const (
	TimerIdle      TimerState = "idle"
	TimerRunning   TimerState = "running"
	TimerPaused    TimerState = "paused"
	TimerCompleted TimerState = "completed"
)

// TimerKind records what created a timer.
type TimerKind string

// TimerKind values.
const (
	TimerKindStep   TimerKind = "step"
	TimerKindVoice  TimerKind = "voice"
	TimerKindManual TimerKind = "manual"
)

// Timer is a countdown measured in whole seconds. A Timer is not safe for
// concurrent use; sessions guard their timers with the session lock.
type Timer struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Kind      TimerKind  `json:"kind"`
	StepOrder int        `json:"stepOrder,omitempty"`
	Duration  int        `json:"duration"`
	Remaining int        `json:"remaining"`
	State     TimerState `json:"state"`
}

// NewTimer returns an idle timer with full time remaining.
func NewTimer(id, label string, kind TimerKind, duration, stepOrder int) (*Timer, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	return &Timer{
		ID:        id,
		Label:     label,
		Kind:      kind,
		StepOrder: stepOrder,
		Duration:  duration,
		Remaining: duration,
		State:     TimerIdle,
	}, nil
}

// Start runs the timer. Starting a completed timer restarts it from the full
// duration. It reports whether the timer was not already running.
func (t *Timer) Start() bool {
	switch t.State {
	case TimerRunning:
		return false
	case TimerCompleted:
		t.Remaining = t.Duration
	}
	t.State = TimerRunning
	return true
}

// Pause stops a running timer without losing the remaining time.
func (t *Timer) Pause() bool {
	if t.State != TimerRunning {
		return false
	}
	t.State = TimerPaused
	return true
}

// Reset returns the timer to idle with full time remaining.
func (t *Timer) Reset() {
	t.State = TimerIdle
	t.Remaining = t.Duration
}

// Tick advances a running timer by one second. It returns true exactly once,
// on the tick that brings the timer to zero.
func (t *Timer) Tick() bool {
	if t.State != TimerRunning {
		return false
	}
	if t.Remaining <= 1 {
		t.Remaining = 0
		t.State = TimerCompleted
		return true
	}
	t.Remaining--
	return false
}

// Progress returns the elapsed share of the timer as a percentage.
func (t Timer) Progress() float64 {
	if t.Duration == 0 {
		return 0
	}
	return float64(t.Duration-t.Remaining) / float64(t.Duration) * 100
}

// FormatTime renders seconds as H:MM:SS, or M:SS below an hour.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
