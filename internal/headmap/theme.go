package headmap

import (
	"image/color"
	"sync"
)

// Theme selects the render surface background. Kept deliberately small: the
// renderer only needs to know what it is painting over.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

// Background returns the surface colour for the theme.
func (t Theme) Background() color.RGBA {
	if t == ThemeDark {
		return color.RGBA{R: 24, G: 24, B: 28, A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// ThemeSource is an explicit observable for theme changes. Each renderer
// instance subscribes on mount and must unsubscribe on teardown; there is no
// process-global broadcast.
type ThemeSource struct {
	mu      sync.Mutex
	current Theme
	nextID  int
	subs    map[int]func(Theme)
}

// NewThemeSource creates a source starting at the given theme.
func NewThemeSource(initial Theme) *ThemeSource {
	return &ThemeSource{current: initial, subs: make(map[int]func(Theme))}
}

// Current returns the active theme.
func (s *ThemeSource) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set updates the theme and notifies subscribers synchronously.
func (s *ThemeSource) Set(t Theme) {
	s.mu.Lock()
	s.current = t
	fns := make([]func(Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(t)
	}
}

// Subscribe registers a callback and returns an unsubscribe function.
func (s *ThemeSource) Subscribe(fn func(Theme)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
