package cooking

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/models"
	"go.uber.org/zap"
)

// TimerEvent is published on every tick of a running timer.
type TimerEvent struct {
	SessionID string `json:"sessionId"`
	Timer     Timer  `json:"timer"`
	Completed bool   `json:"completed"`
}

// TimerListener receives timer events. Listeners run on the timer's
// goroutine and must not block.
type TimerListener func(TimerEvent)

// Manager owns the in-memory set of cooking sessions and their timer
// goroutines.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	listeners []TimerListener
	clock     *Clock

	done      chan struct{}
	closeOnce sync.Once
}

// NewManager returns an empty Manager using clock to drive timers.
func NewManager(clock *Clock) *Manager {
	if clock == nil {
		clock = NewClock()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		clock:    clock,
		done:     make(chan struct{}),
	}
}

// OnTimerEvent registers a listener for timer ticks and completions.
func (m *Manager) OnTimerEvent(l TimerListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) publish(ev TimerEvent) {
	m.mu.RLock()
	listeners := append([]TimerListener(nil), m.listeners...)
	m.mu.RUnlock()
	for _, l := range listeners {
		l(ev)
	}
}

// Start creates a session for recipe.
func (m *Manager) Start(recipe models.Recipe) (*Session, error) {
	s, err := NewSession(uuid.New().String(), recipe)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	logger.Get().Info("cooking session started",
		zap.String("session_id", s.ID()),
		zap.String("recipe_id", recipe.ID),
	)
	return s, nil
}

// Get returns a session by ID.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// End stops all timers of a session and forgets it.
func (m *Manager) End(sessionID string) error {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	m.clock.StopPrefix(sessionID + "/")
	logger.Get().Info("cooking session ended", zap.String("session_id", sessionID))
	return nil
}

// Finish marks a session completed and stops its timers.
func (m *Manager) Finish(sessionID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	s.Finish()
	m.clock.StopPrefix(sessionID + "/")
	return nil
}

// Pause pauses a session together with its running timers.
func (m *Manager) Pause(sessionID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	paused, err := s.Pause()
	if err != nil {
		return err
	}
	for _, id := range paused {
		m.clock.Stop(timerKey(sessionID, id))
	}
	return nil
}

// Resume resumes a paused session. Timers stay paused until started.
func (m *Manager) Resume(sessionID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	return s.Resume()
}

func timerKey(sessionID, timerID string) string {
	return sessionID + "/" + timerID
}

// AddTimer creates a timer on a session and optionally starts it.
func (m *Manager) AddTimer(sessionID, label string, kind TimerKind, duration, stepOrder int, start bool) (Timer, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return Timer{}, err
	}
	t, err := s.AddTimer(label, kind, duration, stepOrder)
	if err != nil {
		return Timer{}, err
	}
	if !start {
		return t, nil
	}
	return m.StartTimer(sessionID, t.ID)
}

// StartTimer starts or restarts a timer and its ticking goroutine.
func (m *Manager) StartTimer(sessionID, timerID string) (Timer, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return Timer{}, err
	}
	t, err := s.StartTimer(timerID)
	if err != nil {
		return Timer{}, err
	}

	m.clock.Run(timerKey(sessionID, timerID), func() bool {
		ticked, done, err := s.TickTimer(timerID)
		if err != nil {
			return false
		}
		if done {
			logger.Get().Info("timer completed",
				zap.String("session_id", sessionID),
				zap.String("timer_id", timerID),
				zap.String("label", ticked.Label),
			)
			m.publish(TimerEvent{SessionID: sessionID, Timer: ticked, Completed: true})
			return false
		}
		if ticked.State != TimerRunning {
			return false
		}
		m.publish(TimerEvent{SessionID: sessionID, Timer: ticked})
		return true
	})
	return t, nil
}

// PauseTimer pauses a timer and stops its goroutine.
func (m *Manager) PauseTimer(sessionID, timerID string) (Timer, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return Timer{}, err
	}
	t, err := s.PauseTimer(timerID)
	if err != nil {
		return Timer{}, err
	}
	m.clock.Stop(timerKey(sessionID, timerID))
	return t, nil
}

// ResetTimer stops a timer and restores its full duration.
func (m *Manager) ResetTimer(sessionID, timerID string) (Timer, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return Timer{}, err
	}
	t, err := s.ResetTimer(timerID)
	if err != nil {
		return Timer{}, err
	}
	m.clock.Stop(timerKey(sessionID, timerID))
	return t, nil
}

// RemoveTimer stops and deletes a timer.
func (m *Manager) RemoveTimer(sessionID, timerID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	m.clock.Stop(timerKey(sessionID, timerID))
	return s.RemoveTimer(timerID)
}

// Expire ends every session opened more than maxAge before now and returns
// their IDs.
func (m *Manager) Expire(now time.Time, maxAge time.Duration) []string {
	cutoff := now.Add(-maxAge)

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.StartedAt().Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.clock.StopPrefix(id + "/")
		logger.Get().Info("cooking session expired", zap.String("session_id", id))
	}
	return expired
}

// ExpireEvery runs Expire each interval until Close. onExpired, when set, is
// called with the IDs removed by each non-empty pass.
func (m *Manager) ExpireEvery(interval, maxAge time.Duration, onExpired func(ids []string)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case now := <-ticker.C:
				if ids := m.Expire(now, maxAge); len(ids) > 0 && onExpired != nil {
					onExpired(ids)
				}
			}
		}
	}()
}

// Close stops the expiry loop and every timer goroutine.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
	m.clock.Close()
}
