// Package session keeps minimal in-memory epoched recordings and serves
// evenly spaced scalp-value frames from them.
package session

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/neuroviz-data/scalpview/internal/anim"
)

// Session is an epoched recording held in memory. Data is indexed
// [epoch][channel][sample]; sample i sits at TMinMs + i*1000/SFreq.
type Session struct {
	ID           string        `json:"id"`
	Montage      string        `json:"montage"`
	ChannelNames []string      `json:"channel_names"`
	SFreq        float64       `json:"sfreq"`
	TMinMs       float64       `json:"tmin_ms"`
	Data         [][][]float64 `json:"-"`
}

// FrameSource produces animation sequences from a time window.
type FrameSource interface {
	Frames(startMs, endMs, intervalMs float64) (*anim.Sequence, error)
}

var (
	regMu    sync.RWMutex
	registry = make(map[string]*Session)
)

// ErrNotFound reports an unknown session ID.
var ErrNotFound = fmt.Errorf("session: not found")

// New validates a recording, assigns it an ID and registers it.
func New(montage string, channelNames []string, sfreq, tminMs float64, data [][][]float64) (*Session, error) {
	if sfreq <= 0 {
		return nil, fmt.Errorf("session: sampling frequency must be positive, got %g", sfreq)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("session: no epochs")
	}
	nSamples := -1
	for ei, epoch := range data {
		if len(epoch) != len(channelNames) {
			return nil, fmt.Errorf("session: epoch %d has %d channels, want %d", ei, len(epoch), len(channelNames))
		}
		for ci, ch := range epoch {
			if nSamples == -1 {
				nSamples = len(ch)
			}
			if len(ch) != nSamples {
				return nil, fmt.Errorf("session: epoch %d channel %d has %d samples, want %d", ei, ci, len(ch), nSamples)
			}
		}
	}
	if nSamples < 1 {
		return nil, fmt.Errorf("session: empty epochs")
	}

	s := &Session{
		ID:           uuid.New().String()[:8],
		Montage:      montage,
		ChannelNames: channelNames,
		SFreq:        sfreq,
		TMinMs:       tminMs,
		Data:         data,
	}

	regMu.Lock()
	registry[s.ID] = s
	regMu.Unlock()

	log.Printf("[session] registered %s: %d epochs, %d channels, %d samples at %.1f Hz",
		s.ID, len(data), len(channelNames), nSamples, sfreq)
	return s, nil
}

// Get retrieves a registered session.
func Get(id string) (*Session, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	s, ok := registry[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove drops a session from the registry.
func Remove(id string) {
	regMu.Lock()
	defer regMu.Unlock()
	delete(registry, id)
}

// Window returns the covered time range in milliseconds.
func (s *Session) Window() (startMs, endMs float64) {
	n := len(s.Data[0][0])
	return s.TMinMs, s.TMinMs + float64(n-1)*1000/s.SFreq
}

// Frames samples the evoked response (mean across epochs) at evenly spaced
// instants. Instants outside the epoch window are skipped; an error is
// returned when none fall inside.
func (s *Session) Frames(startMs, endMs, intervalMs float64) (*anim.Sequence, error) {
	if intervalMs <= 0 {
		return nil, fmt.Errorf("session: interval must be positive, got %g", intervalMs)
	}
	if endMs < startMs {
		return nil, fmt.Errorf("session: end %g before start %g", endMs, startMs)
	}

	winStart, winEnd := s.Window()
	var frames []anim.Frame
	for t := startMs; t <= endMs+1e-9; t += intervalMs {
		if t < winStart-1e-9 || t > winEnd+1e-9 {
			continue
		}
		idx := int(math.Round((t - s.TMinMs) * s.SFreq / 1000))
		if idx < 0 {
			idx = 0
		}
		if n := len(s.Data[0][0]); idx >= n {
			idx = n - 1
		}
		values := make([]float64, len(s.ChannelNames))
		for ci := range s.ChannelNames {
			sum := 0.0
			for _, epoch := range s.Data {
				sum += epoch[ci][idx]
			}
			values[ci] = sum / float64(len(s.Data))
		}
		frames = append(frames, anim.Frame{TimeMs: t, Values: values})
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("session: no frames between %g and %g ms (window %g..%g)", startMs, endMs, winStart, winEnd)
	}

	return &anim.Sequence{
		Mode:         anim.ModeData,
		Frames:       frames,
		ChannelNames: s.ChannelNames,
		IntervalMs:   intervalMs,
		DurationMs:   frames[len(frames)-1].TimeMs - frames[0].TimeMs,
	}, nil
}
