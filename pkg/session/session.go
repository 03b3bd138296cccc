// Package session owns per-visitor state: each browser client gets its own
// conversation log, created explicitly and disposed explicitly or on idle
// expiry. Nothing here is shared between visitors.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

// Session is one visitor's state.
type Session struct {
	ID  string
	Log *conversation.Log

	// turn serializes question handling: one input runs to completion
	// before the next is accepted.
	turn sync.Mutex

	mu       sync.Mutex
	open     bool
	created  time.Time
	lastSeen time.Time
}

// Lock acquires the session's turn lock.
func (s *Session) Lock() { s.turn.Lock() }

// Unlock releases the session's turn lock.
func (s *Session) Unlock() { s.turn.Unlock() }

// ChatOpen reports whether the visitor has the chat panel open.
func (s *Session) ChatOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// ToggleChat flips the chat panel flag and returns the new value.
func (s *Session) ToggleChat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	return s.open
}

// SetChatOpen sets the chat panel flag.
func (s *Session) SetChatOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = open
}

// Created returns the creation time.
func (s *Session) Created() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Config controls session expiry.
type Config struct {
	// IdleTTL disposes sessions not seen for this long.
	IdleTTL time.Duration `toml:"idle_ttl"`

	// SweepInterval is how often Run looks for idle sessions.
	SweepInterval time.Duration `toml:"sweep_interval"`
}

// DefaultConfig returns a two hour idle TTL swept every minute.
func DefaultConfig() Config {
	return Config{
		IdleTTL:       2 * time.Hour,
		SweepInterval: time.Minute,
	}
}

// DisposeFunc observes a session just before its log is cleared.
type DisposeFunc func(ctx context.Context, s *Session)

// Manager creates, finds and disposes sessions.
type Manager struct {
	config Config
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Session
	onDispose []DisposeFunc
}

// NewManager creates a Manager. Non-positive durations take their default.
func NewManager(config Config, logger *zap.Logger) *Manager {
	def := DefaultConfig()
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = def.SweepInterval
	}

	return &Manager{
		config:   config,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// OnDispose registers fn to run for every disposed session.
func (m *Manager) OnDispose(fn DisposeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDispose = append(m.onDispose, fn)
}

// Create starts a new session with an empty log.
func (m *Manager) Create() *Session {
	now := m.now()
	s := &Session{
		ID:       uuid.NewString(),
		Log:      conversation.NewLog(),
		created:  now,
		lastSeen: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("session created", zap.String("session", s.ID))
	return s
}

// Get returns the session for id and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	s.touch(m.now())
	return s, true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Dispose ends the session for id. It reports whether the session existed.
func (m *Manager) Dispose(ctx context.Context, id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	hooks := append([]DisposeFunc(nil), m.onDispose...)
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.dispose(ctx, s, hooks)
	return true
}

func (m *Manager) dispose(ctx context.Context, s *Session, hooks []DisposeFunc) {
	// Wait for an in-flight turn so hooks see the finished log.
	s.Lock()
	defer s.Unlock()

	for _, fn := range hooks {
		fn(ctx, s)
	}
	s.Log.Clear()

	m.logger.Debug("session disposed", zap.String("session", s.ID))
}

// Sweep disposes every session idle for longer than the TTL and returns how
// many were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.config.IdleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	hooks := append([]DisposeFunc(nil), m.onDispose...)
	m.mu.Unlock()

	for _, s := range expired {
		m.dispose(ctx, s, hooks)
	}

	if len(expired) > 0 {
		m.logger.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done, then disposes the rest.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.disposeAll()
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

func (m *Manager) disposeAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	hooks := append([]DisposeFunc(nil), m.onDispose...)
	m.mu.Unlock()

	// The serving context is gone; hooks get a fresh one to finish archiving.
	ctx := context.Background()
	for _, s := range all {
		m.dispose(ctx, s, hooks)
	}
}
