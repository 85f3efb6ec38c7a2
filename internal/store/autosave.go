package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/event"
)

// DefaultAutosaveDelay is the quiet period before a save.
const DefaultAutosaveDelay = 2 * time.Second

// Saver is the part of Store the autosaver needs.
type Saver interface {
	Save(ctx context.Context, id string, payload []byte) (uint64, error)
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithDelay sets the quiet period. Zero saves on every commit.
func WithDelay(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if d >= 0 {
			a.delay = d
		}
	}
}

// WithAutosaveLogger sets the autosaver logger.
func WithAutosaveLogger(l zerolog.Logger) AutosaveOption {
	return func(a *Autosaver) { a.logger = l }
}

type pending struct {
	pageID  string
	payload []byte
	version uint64
	dirty   bool
	timer   *time.Timer
}

// Autosaver saves the documents of tracked sessions after they stop
// changing. It consumes commit events, so the editing path only pays for
// publishing.
type Autosaver struct {
	saver  Saver
	bus    *event.Bus
	delay  time.Duration
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*pending
	sub      *event.Subscription
	wg       sync.WaitGroup

	// saveMu serializes saves so versions are written in commit order.
	saveMu sync.Mutex
}

// NewAutosaver creates a stopped autosaver.
func NewAutosaver(saver Saver, bus *event.Bus, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		saver:    saver,
		bus:      bus,
		delay:    DefaultAutosaveDelay,
		logger:   zerolog.Nop(),
		sessions: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start subscribes to commit events.
func (a *Autosaver) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sub != nil {
		return nil
	}
	sub, err := a.bus.Subscribe(event.TopicCommitted, a.handle)
	if err != nil {
		return err
	}
	a.sub = sub
	return nil
}

// Stop unsubscribes, then saves every session with unsaved changes.
func (a *Autosaver) Stop(ctx context.Context) error {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	ids := make([]string, 0, len(a.sessions))
	for id, p := range a.sessions {
		a.stopTimer(p)
		ids = append(ids, id)
	}
	a.mu.Unlock()
	a.bus.Unsubscribe(sub)

	var errs []error
	for _, id := range ids {
		if err := a.Flush(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	a.wg.Wait()
	return errors.Join(errs...)
}

// Track starts saving the commits of session to page pageID.
func (a *Autosaver) Track(session, pageID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.sessions[session]; ok {
		p.pageID = pageID
		return
	}
	a.sessions[session] = &pending{pageID: pageID}
}

// Untrack stops tracking session, saving pending changes first.
func (a *Autosaver) Untrack(ctx context.Context, session string) error {
	err := a.Flush(ctx, session)
	if errors.Is(err, ErrNotTracked) {
		err = nil
	}
	a.mu.Lock()
	if p, ok := a.sessions[session]; ok {
		a.stopTimer(p)
		delete(a.sessions, session)
	}
	a.mu.Unlock()
	return err
}

// Stage records payload as the state of session at version, ahead of the
// matching commit event. Events for that version or older are ignored
// afterwards. The payload is saved by the next flush.
func (a *Autosaver) Stage(session string, version uint64, payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.sessions[session]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotTracked, session)
	}
	if version < p.version {
		return nil
	}
	p.payload, p.version = payload, version
	p.dirty = true
	return nil
}

// Dirty reports whether session has commits that are not saved yet.
func (a *Autosaver) Dirty(session string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.sessions[session]
	return ok && p.dirty
}

// stopTimer cancels a scheduled save. A timer that already fired releases
// the wait group itself.
func (a *Autosaver) stopTimer(p *pending) {
	if p.timer != nil && p.timer.Stop() {
		a.wg.Done()
	}
	p.timer = nil
}

func (a *Autosaver) handle(_ context.Context, ev any) error {
	e, ok := ev.(event.Event[event.Committed])
	if !ok || !e.Payload.DocChanged || len(e.Payload.Payload) == 0 {
		return nil
	}
	session := e.Payload.Session

	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.sessions[session]
	if !ok || e.Payload.Version <= p.version {
		return nil
	}
	p.payload, p.version = e.Payload.Payload, e.Payload.Version
	p.dirty = true
	a.stopTimer(p)
	a.wg.Add(1)
	p.timer = time.AfterFunc(a.delay, func() {
		defer a.wg.Done()
		if err := a.Flush(context.Background(), session); err != nil && !errors.Is(err, ErrNotTracked) {
			a.logger.Warn().Err(err).Str("session", session).Msg("autosave failed")
		}
	})
	return nil
}

// Flush saves the pending payload of session now. Flushing a session
// without unsaved changes is a no-op.
func (a *Autosaver) Flush(ctx context.Context, session string) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	p, ok := a.sessions[session]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotTracked, session)
	}
	if !p.dirty {
		a.mu.Unlock()
		return nil
	}
	pageID, payload := p.pageID, p.payload
	p.dirty = false
	a.mu.Unlock()

	version, err := a.saver.Save(ctx, pageID, payload)
	if err != nil {
		a.mu.Lock()
		// A newer commit may have arrived while saving; keep it dirty either way.
		p.dirty = true
		a.mu.Unlock()
		a.publish(event.TopicSaveFailed, event.Saved{PageID: pageID, Err: err})
		return fmt.Errorf("save page %s: %w", pageID, err)
	}
	a.logger.Debug().Str("session", session).Str("page", pageID).Uint64("version", version).Msg("page saved")
	a.publish(event.TopicSaved, event.Saved{PageID: pageID, Version: version})
	return nil
}

func (a *Autosaver) publish(topic event.Topic, payload event.Saved) {
	ev := event.NewEvent(topic, payload, "autosave")
	if err := a.bus.Publish(context.Background(), ev); err != nil && !errors.Is(err, event.ErrBusNotRunning) {
		a.logger.Warn().Err(err).Str("topic", string(topic)).Msg("publish save result")
	}
}
