package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/event"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/transform"
)

// ErrStaleTransaction is returned when a transaction was built on a
// document other than the current one.
var ErrStaleTransaction = state.ErrStaleTransaction

// Origins that merge into the previous undo entry when they arrive within
// the group delay.
const (
	OriginText   = "input.text"
	OriginDelete = "input.delete"
)

// Interceptor inspects every commit and may amend it.
type Interceptor interface {
	// Name identifies the interceptor in logs and metrics.
	Name() string
	// Amend receives the transactions applied since the last commit, the
	// state before them and the state after them. It returns an amending
	// transaction built on next, or nil when nothing needs to change.
	Amend(trs []*state.Transaction, prev, next *state.State) *state.Transaction
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc struct {
	ID string
	Fn func(trs []*state.Transaction, prev, next *state.State) *state.Transaction
}

// Name implements Interceptor.
func (f InterceptorFunc) Name() string { return f.ID }

// Amend implements Interceptor.
func (f InterceptorFunc) Amend(trs []*state.Transaction, prev, next *state.State) *state.Transaction {
	return f.Fn(trs, prev, next)
}

// Commit describes one committed dispatch.
type Commit struct {
	Prev         *state.State
	Next         *state.State
	Transactions []*state.Transaction
	Amendments   []string
	Version      uint64
}

// DocChanged reports whether any transaction of the commit changed the document.
func (c Commit) DocChanged() bool {
	for _, tr := range c.Transactions {
		if tr.DocChanged() {
			return true
		}
	}
	return false
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInterceptors appends interceptors in the given order.
func WithInterceptors(ics ...Interceptor) Option {
	return func(p *Pipeline) { p.interceptors = append(p.interceptors, ics...) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metric collectors.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithEventBus publishes an event.Committed for every commit, tagged with
// the session id.
func WithEventBus(bus *event.Bus, session string) Option {
	return func(p *Pipeline) {
		p.bus = bus
		p.session = session
	}
}

// WithHistory sets the undo depth and the typing group delay.
func WithHistory(maxEntries int, groupDelay time.Duration) Option {
	return func(p *Pipeline) { p.history = NewHistory(maxEntries, groupDelay) }
}

// WithCommitHook registers a function called synchronously after every
// commit, outside the pipeline lock.
func WithCommitHook(fn func(Commit)) Option {
	return func(p *Pipeline) { p.hooks = append(p.hooks, fn) }
}

// Pipeline owns the current state and serializes all changes to it.
type Pipeline struct {
	mu sync.Mutex

	state        *state.State
	version      uint64
	interceptors []Interceptor
	history      *History
	metrics      *Metrics
	bus          *event.Bus
	session      string
	hooks        []func(Commit)
	logger       zerolog.Logger
}

// New creates a pipeline starting at initial.
func New(initial *state.State, opts ...Option) *Pipeline {
	p := &Pipeline{
		state:  initial,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.history == nil {
		p.history = NewHistory(0, 500*time.Millisecond)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}
	return p
}

// State returns the current state.
func (p *Pipeline) State() *state.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Version returns the number of commits since creation or the last Reset.
func (p *Pipeline) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// History returns the undo history.
func (p *Pipeline) History() *History { return p.history }

// Interceptors returns the registered interceptor names in order.
func (p *Pipeline) Interceptors() []string {
	names := make([]string, len(p.interceptors))
	for i, ic := range p.interceptors {
		names[i] = ic.Name()
	}
	return names
}

// Reset replaces the current state without running interceptors and drops
// the history.
func (p *Pipeline) Reset(s *state.State) {
	p.mu.Lock()
	p.state = s
	p.version = 0
	p.mu.Unlock()
	p.history.Clear()
}

// Dispatch applies tr, runs the interceptors and commits the result. On
// error the current state is returned unchanged.
func (p *Pipeline) Dispatch(tr *state.Transaction) (*state.State, error) {
	p.mu.Lock()
	c, err := p.dispatchLocked(tr)
	p.mu.Unlock()
	if err != nil {
		return p.State(), err
	}
	p.afterCommit(c)
	return c.Next, nil
}

// Normalize runs the interceptors over the current state as if an empty
// transaction tagged with origin had been dispatched. When no interceptor
// amends the state nothing is committed: the version is left alone and no
// event is published. It reports whether the document was amended.
func (p *Pipeline) Normalize(origin string) (*state.State, bool, error) {
	p.mu.Lock()
	tr := p.state.Tr()
	tr.SetMeta(state.MetaAddToHistory, false)
	tr.SetMeta(state.MetaOrigin, origin)
	c, err := p.fold(tr)
	if err != nil {
		p.mu.Unlock()
		return p.State(), false, err
	}
	if len(c.Amendments) == 0 {
		p.mu.Unlock()
		return c.Prev, false, nil
	}
	c = p.commitLocked(c)
	p.mu.Unlock()
	p.afterCommit(c)
	return c.Next, c.DocChanged(), nil
}

func (p *Pipeline) dispatchLocked(tr *state.Transaction) (Commit, error) {
	c, err := p.fold(tr)
	if err != nil {
		return Commit{}, err
	}
	return p.commitLocked(c), nil
}

// fold applies tr and the interceptor amendments without committing.
func (p *Pipeline) fold(tr *state.Transaction) (Commit, error) {
	start := time.Now()
	defer func() { p.metrics.duration.Observe(time.Since(start).Seconds()) }()

	prev := p.state
	next, err := prev.Apply(tr)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, ErrStaleTransaction) {
			reason = "stale"
		}
		p.metrics.rejected.WithLabelValues(reason).Inc()
		p.logger.Debug().Err(err).Str("origin", tr.Origin()).Msg("transaction rejected")
		return Commit{}, err
	}

	trs := []*state.Transaction{tr}
	var amended []string
	for _, ic := range p.interceptors {
		amend := p.runInterceptor(ic, trs, prev, next)
		if amend == nil || !amend.Changed() {
			continue
		}
		s, err := next.Apply(amend)
		if err != nil {
			p.logger.Warn().Err(err).Str("interceptor", ic.Name()).Msg("amendment discarded")
			continue
		}
		trs = append(trs, amend)
		amended = append(amended, ic.Name())
		p.metrics.amendments.WithLabelValues(ic.Name()).Inc()
		next = s
	}

	return Commit{Prev: prev, Next: next, Transactions: trs, Amendments: amended}, nil
}

func (p *Pipeline) commitLocked(c Commit) Commit {
	p.state = c.Next
	p.version++
	p.metrics.commits.Inc()
	c.Version = p.version
	p.record(c)
	return c
}

func (p *Pipeline) runInterceptor(ic Interceptor, trs []*state.Transaction, prev, next *state.State) (amend *state.Transaction) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.panics.WithLabelValues(ic.Name()).Inc()
			p.logger.Error().
				Str("interceptor", ic.Name()).
				Str("panic", fmt.Sprint(r)).
				Msg("interceptor panicked, skipping")
			amend = nil
		}
	}()
	return ic.Amend(trs, prev, next)
}

func (p *Pipeline) record(c Commit) {
	if !c.DocChanged() {
		return
	}
	proposed := c.Transactions[0]
	var steps []transform.Step
	for i := len(c.Transactions) - 1; i >= 0; i-- {
		steps = append(steps, c.Transactions[i].Inverted()...)
	}
	e := &entry{steps: steps, selection: c.Prev.Selection(), origin: proposed.Origin()}

	switch proposed.Meta(MetaHistory) {
	case historyUndo:
		p.history.pushRedo(e)
	case historyRedo:
		p.history.pushUndo(e)
	default:
		if !proposed.AddToHistory() {
			return
		}
		groupable := e.origin == OriginText || e.origin == OriginDelete
		p.history.push(e, groupable)
	}
}

func (p *Pipeline) afterCommit(c Commit) {
	for _, fn := range p.hooks {
		fn(c)
	}
	if p.bus == nil {
		return
	}
	payload := event.Committed{
		Session:    p.session,
		Version:    c.Version,
		DocChanged: c.DocChanged(),
		Amendments: c.Amendments,
	}
	if payload.DocChanged {
		data, err := c.Next.Doc().MarshalJSON()
		if err != nil {
			p.logger.Warn().Err(err).Msg("encode committed document")
		}
		payload.Payload = data
	}
	ev := event.NewEvent(event.TopicCommitted, payload, "pipeline")
	if err := p.bus.Publish(context.Background(), ev); err != nil {
		p.logger.Warn().Err(err).Msg("publish commit")
	}
}

// Undo reverts the most recent undo entry.
func (p *Pipeline) Undo() (*state.State, error) {
	return p.travel(p.history.popUndo, p.history.pushUndo, historyUndo, ErrNothingToUndo)
}

// Redo reapplies the most recently undone entry.
func (p *Pipeline) Redo() (*state.State, error) {
	return p.travel(p.history.popRedo, p.history.pushRedo, historyRedo, ErrNothingToRedo)
}

func (p *Pipeline) travel(popFn func() (*entry, bool), restore func(*entry), kind string, empty error) (*state.State, error) {
	p.mu.Lock()
	e, ok := popFn()
	if !ok {
		p.mu.Unlock()
		return p.State(), empty
	}
	tr := p.state.Tr()
	for _, s := range e.steps {
		if err := tr.Step(s); err != nil {
			p.mu.Unlock()
			p.logger.Warn().Err(err).Str("history", kind).Msg("history entry no longer applies")
			return p.State(), fmt.Errorf("%s: %w", kind, err)
		}
	}
	tr.SetSelection(e.selection)
	tr.SetMeta(state.MetaAddToHistory, false)
	tr.SetMeta(MetaHistory, kind)
	tr.SetMeta(state.MetaOrigin, "history."+kind)
	c, err := p.dispatchLocked(tr)
	if err != nil {
		restore(e)
		p.mu.Unlock()
		return p.State(), err
	}
	p.mu.Unlock()
	p.afterCommit(c)
	return c.Next, nil
}
