package voice

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultWakeWord      = "hey chef"
	DefaultCaptureWindow = 5 * time.Second
)

// WakeEvent is what a transcript produced in the detector.
type WakeEvent int

const (
	WakeNone WakeEvent = iota
	WakeDetected
	WakeCommand
)

// WakeWordDetector turns a stream of final transcripts into commands. It
// idles until it hears the wake word, then treats the next non-empty
// transcript inside the capture window as a command.
type WakeWordDetector struct {
	mu        sync.Mutex
	wakeWord  string
	window    time.Duration
	now       func() time.Time
	capturing bool
	deadline  time.Time
}

type WakeWordOption func(*WakeWordDetector)

func WithWakeWord(word string) WakeWordOption {
	return func(d *WakeWordDetector) {
		d.wakeWord = strings.ToLower(strings.TrimSpace(word))
	}
}

func WithCaptureWindow(window time.Duration) WakeWordOption {
	return func(d *WakeWordDetector) {
		d.window = window
	}
}

// WithNow replaces the clock, for tests.
func WithNow(now func() time.Time) WakeWordOption {
	return func(d *WakeWordDetector) {
		d.now = now
	}
}

func NewWakeWordDetector(opts ...WakeWordOption) *WakeWordDetector {
	d := &WakeWordDetector{
		wakeWord: DefaultWakeWord,
		window:   DefaultCaptureWindow,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process feeds one final transcript. It returns WakeCommand with the
// captured command, WakeDetected when the wake word opened the capture
// window, or WakeNone.
func (d *WakeWordDetector) Process(transcript string) (WakeEvent, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	text := strings.ToLower(strings.TrimSpace(transcript))

	if d.capturing && d.now().After(d.deadline) {
		d.capturing = false
	}

	if !d.capturing {
		if strings.Contains(text, d.wakeWord) {
			d.capturing = true
			d.deadline = d.now().Add(d.window)
			return WakeDetected, ""
		}
		return WakeNone, ""
	}

	command := strings.TrimSpace(strings.Replace(text, d.wakeWord, "", 1))
	if command == "" {
		return WakeNone, ""
	}
	d.capturing = false
	return WakeCommand, command
}

// Capturing reports whether the detector is waiting for a command.
func (d *WakeWordDetector) Capturing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capturing && !d.now().After(d.deadline)
}

// Reset drops any pending capture.
func (d *WakeWordDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.capturing = false
}
