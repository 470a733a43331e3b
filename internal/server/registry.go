package server

import (
	"errors"
	"sort"
	"sync"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/unobot/internal/game"
)

var (
	// ErrChannelOccupied means the channel already hosts a session.
	ErrChannelOccupied = errors.New("channel already has a game")

	// ErrChannelUnknown means no session exists for the channel.
	ErrChannelUnknown = errors.New("no game in this channel")
)

// Registry maps each channel to at most one session and owns session
// creation and teardown. Sessions lock themselves; the registry lock only
// guards the map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	clock    quartz.Clock
	newRNG   func() *rand.Rand
	logger   *log.Logger
}

// NewRegistry creates an empty registry. newRNG supplies each session its
// own generator; sessions are locked independently so they must not share
// one.
func NewRegistry(clock quartz.Clock, newRNG func() *rand.Rand, logger *log.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*game.Session),
		clock:    clock,
		newRNG:   newRNG,
		logger:   logger.WithPrefix("registry"),
	}
}

// Create starts a new session for the channel with actor as owner.
func (r *Registry) Create(channel string, owner game.Identity) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[channel]; ok {
		return nil, ErrChannelOccupied
	}
	s := game.NewSession(channel, owner, r.newRNG(), r.clock, r.logger)
	r.sessions[channel] = s
	r.logger.Info("created session", "channel", channel, "owner", owner)
	return s, nil
}

// Get resolves the channel's session.
func (r *Registry) Get(channel string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[channel]
	if !ok {
		return nil, ErrChannelUnknown
	}
	return s, nil
}

// Remove tears the channel's session down. Removing an unknown channel is a
// no-op.
func (r *Registry) Remove(channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[channel]; ok {
		delete(r.sessions, channel)
		r.logger.Info("removed session", "channel", channel)
	}
}

// Relocate moves the session at from to the to channel. The occupancy check
// and the move happen under one lock so two relocations can't race into the
// same channel.
func (r *Registry) Relocate(from, to string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[from]
	if !ok {
		return nil, ErrChannelUnknown
	}
	if _, ok := r.sessions[to]; ok {
		return nil, ErrChannelOccupied
	}
	delete(r.sessions, from)
	r.sessions[to] = s
	s.SetChannel(to)
	r.logger.Info("relocated session", "from", from, "to", to)
	return s, nil
}

// Sessions returns every active session ordered by channel name.
func (r *Registry) Sessions() []*game.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]string, 0, len(r.sessions))
	for ch := range r.sessions {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	out := make([]*game.Session, 0, len(channels))
	for _, ch := range channels {
		out = append(out, r.sessions[ch])
	}
	return out
}
