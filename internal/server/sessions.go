package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/store"
)

// Session is one open editor bound to a page.
type Session struct {
	ID      string    `json:"id"`
	PageID  string    `json:"page_id"`
	Created time.Time `json:"created"`

	editor *editor.Editor
}

// Editor returns the session editor.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Sessions tracks open sessions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	options   func() []editor.Option
	autosaver *store.Autosaver
	logger    zerolog.Logger

	// trigger and hitZone override the configured values once Configure
	// has been called.
	configured bool
	trigger    rune
	hitZone    int
}

func newSessions(options func() []editor.Option, autosaver *store.Autosaver, logger zerolog.Logger) *Sessions {
	if options == nil {
		options = func() []editor.Option { return nil }
	}
	return &Sessions{
		sessions:  make(map[string]*Session),
		options:   options,
		autosaver: autosaver,
		logger:    logger,
	}
}

// Open starts a session over page.
func (m *Sessions) Open(page *store.Page) (*Session, error) {
	id := uuid.NewString()
	opts := append([]editor.Option(nil), m.options()...)
	opts = append(opts, editor.WithID(id), editor.WithLogger(m.logger))
	m.mu.RLock()
	if m.configured {
		opts = append(opts, editor.WithTrigger(m.trigger), editor.WithHitZone(m.hitZone))
	}
	m.mu.RUnlock()

	ed, err := editor.New(page.Payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("open page %s: %w", page.ID, err)
	}
	s := &Session{ID: id, PageID: page.ID, Created: time.Now(), editor: ed}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	if m.autosaver != nil {
		m.autosaver.Track(id, page.ID)
	}
	m.logger.Info().Str("session", id).Str("page", page.ID).Msg("session opened")
	return s, nil
}

// Get returns the session with id.
func (m *Sessions) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close removes the session, saving pending changes.
func (m *Sessions) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.logger.Info().Str("session", id).Msg("session closed")
	if m.autosaver == nil {
		return nil
	}
	// Commit events may still be queued on the bus; stage the final
	// document so the last save does not depend on them.
	if version := s.editor.Version(); version > 0 {
		payload, err := s.editor.Payload()
		if err != nil {
			return err
		}
		if err := m.autosaver.Stage(id, version, payload); err != nil {
			return err
		}
	}
	return m.autosaver.Untrack(ctx, id)
}

// List returns the open sessions ordered by creation.
func (m *Sessions) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Len returns the number of open sessions.
func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Configure changes the palette trigger and toggle hit zone of every open
// session and of sessions opened later.
func (m *Sessions) Configure(trigger rune, hitZone int) {
	m.mu.Lock()
	m.configured, m.trigger, m.hitZone = true, trigger, hitZone
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		s.editor.Configure(trigger, hitZone)
	}
}
