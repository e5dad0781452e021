package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time          { return f.t }
func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestWakeWord_CapturesNextTranscript(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	d := NewWakeWordDetector(WithNow(clock.now))

	ev, _ := d.Process("what a lovely day")
	assert.Equal(t, WakeNone, ev)

	ev, _ = d.Process("Hey Chef")
	assert.Equal(t, WakeDetected, ev)
	assert.True(t, d.Capturing())

	clock.advance(2 * time.Second)
	ev, cmd := d.Process("  Next Step ")
	assert.Equal(t, WakeCommand, ev)
	assert.Equal(t, "next step", cmd)
	assert.False(t, d.Capturing())
}

func TestWakeWord_StripsRepeatedWakeWord(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	d := NewWakeWordDetector(WithNow(clock.now))

	d.Process("hey chef")
	ev, cmd := d.Process("hey chef set timer for 5 minutes")
	assert.Equal(t, WakeCommand, ev)
	assert.Equal(t, "set timer for 5 minutes", cmd)
}

func TestWakeWord_EmptyTranscriptKeepsCapturing(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	d := NewWakeWordDetector(WithNow(clock.now))

	d.Process("hey chef")
	ev, _ := d.Process("hey chef")
	assert.Equal(t, WakeNone, ev)
	assert.True(t, d.Capturing())
}

func TestWakeWord_WindowExpires(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	d := NewWakeWordDetector(WithNow(clock.now))

	d.Process("hey chef")
	clock.advance(DefaultCaptureWindow + time.Millisecond)
	assert.False(t, d.Capturing())

	ev, _ := d.Process("next step")
	assert.Equal(t, WakeNone, ev)
}

func TestWakeWord_CustomWord(t *testing.T) {
	d := NewWakeWordDetector(WithWakeWord("Hi Remy"), WithCaptureWindow(time.Minute))

	ev, _ := d.Process("hey chef")
	assert.Equal(t, WakeNone, ev)

	ev, _ = d.Process("hi remy")
	assert.Equal(t, WakeDetected, ev)

	d.Reset()
	assert.False(t, d.Capturing())
}
