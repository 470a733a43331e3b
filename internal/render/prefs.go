package render

import (
	"sync"

	"github.com/lox/unobot/internal/game"
)

// PrefStore keeps per-viewer rendering preferences. Preferences live in the
// transport layer; the core never sees them.
type PrefStore struct {
	mu    sync.RWMutex
	prefs map[game.Identity]Prefs
}

func NewPrefStore() *PrefStore {
	return &PrefStore{prefs: make(map[game.Identity]Prefs)}
}

// Get returns the viewer's preferences, or the defaults if they never set
// any.
func (s *PrefStore) Get(id game.Identity) Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[id]; ok {
		return p
	}
	return DefaultPrefs()
}

// SetColors turns card coloring on or off for a viewer.
func (s *PrefStore) SetColors(id game.Identity, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.get(id)
	p.Colors = on
	s.prefs[id] = p
}

// SetTheme selects a viewer's card theme.
func (s *PrefStore) SetTheme(id game.Identity, theme Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.get(id)
	p.Theme = theme
	s.prefs[id] = p
}

func (s *PrefStore) get(id game.Identity) Prefs {
	if p, ok := s.prefs[id]; ok {
		return p
	}
	return DefaultPrefs()
}
