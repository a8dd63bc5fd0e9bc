// Package anim steps a time cursor across a fetched frame sequence, driving
// the scalp renderer per frame, and assembles frame sequences into shareable
// animated GIFs.
package anim

import (
	"sync"
	"time"
)

// Mode tags a sequence's frame payload.
type Mode string

const (
	// ModeData frames carry per-channel values rendered through the
	// scalp field chain.
	ModeData Mode = "data"
	// ModeImage frames carry pre-rendered PNG bytes and bypass the
	// rendering chain.
	ModeImage Mode = "image"
)

// Frame is one instant of a fetched animation. Exactly one of Values or
// Image is populated, according to the sequence mode.
type Frame struct {
	TimeMs float64   `json:"time_ms"`
	Values []float64 `json:"values,omitempty"`
	Image  []byte    `json:"image_png,omitempty"`
}

// Sequence is a finite, ordered, already-fetched animation. The only
// mutable cursor state lives in the Sequencer.
type Sequence struct {
	Mode         Mode     `json:"render_mode"`
	Frames       []Frame  `json:"frames"`
	ChannelNames []string `json:"channel_names,omitempty"`
	IntervalMs   float64  `json:"interval_ms"`
	DurationMs   float64  `json:"duration_ms"`
}

// Sequencer owns playback over one Sequence: a timer advances the cursor,
// wrapping to frame 0 after the last frame. Scrubbing pauses playback;
// speed changes apply from the next tick without moving the cursor.
type Sequencer struct {
	mu      sync.Mutex
	seq     *Sequence
	cursor  int
	playing bool
	speed   float64
	onFrame func(int)

	stopCh chan struct{}
}

// NewSequencer creates a paused sequencer at frame 0. onFrame is invoked
// (outside the lock) for every cursor change, including seeks; it may be nil.
func NewSequencer(seq *Sequence, onFrame func(int)) *Sequencer {
	return &Sequencer{seq: seq, speed: 1.0, onFrame: onFrame}
}

// Current returns the cursor position.
func (s *Sequencer) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Playing reports whether the playback timer is running.
func (s *Sequencer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Play starts the playback timer. No-op when already playing or when the
// sequence has no frames.
func (s *Sequencer) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing || len(s.seq.Frames) == 0 {
		return
	}
	s.playing = true
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh)
}

// Pause stops the playback timer, leaving the cursor in place.
func (s *Sequencer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

func (s *Sequencer) pauseLocked() {
	if !s.playing {
		return
	}
	s.playing = false
	close(s.stopCh)
	s.stopCh = nil
}

// Seek scrubs the cursor to frame i (clamped to the valid range) and
// implicitly pauses playback.
func (s *Sequencer) Seek(i int) {
	s.mu.Lock()
	s.pauseLocked()
	if i < 0 {
		i = 0
	}
	if n := len(s.seq.Frames); n > 0 && i >= n {
		i = n - 1
	}
	s.cursor = i
	fn := s.onFrame
	s.mu.Unlock()

	if fn != nil {
		fn(i)
	}
}

// SetSpeed adjusts the playback-rate multiplier. Non-positive values are
// ignored. Takes effect on the next tick; the cursor is untouched.
func (s *Sequencer) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	s.mu.Lock()
	s.speed = speed
	s.mu.Unlock()
}

// Advance steps the cursor forward one frame, wrapping to 0 past the end,
// and reports the new position. Used by the timer loop and by manual
// single-step controls.
func (s *Sequencer) Advance() int {
	s.mu.Lock()
	n := len(s.seq.Frames)
	if n == 0 {
		s.mu.Unlock()
		return 0
	}
	s.cursor = (s.cursor + 1) % n
	i := s.cursor
	fn := s.onFrame
	s.mu.Unlock()

	if fn != nil {
		fn(i)
	}
	return i
}

// loop drives playback ticks at interval/speed, re-reading speed each tick.
func (s *Sequencer) loop(stop chan struct{}) {
	for {
		s.mu.Lock()
		interval := s.seq.IntervalMs
		if interval <= 0 {
			interval = 20
		}
		delay := time.Duration(interval/s.speed) * time.Millisecond
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-time.After(delay):
		}

		select {
		case <-stop:
			return
		default:
			s.Advance()
		}
	}
}
