package input

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
)

// Handler runs a bound action. It reports whether it consumed the event.
type Handler func(ev key.Event) bool

// TextHandler receives printable characters no binding claimed.
type TextHandler func(ev key.Event) bool

// PointerHandler receives pointer events.
type PointerHandler func(ev mouse.Event) bool

// Fallback resolves actions that have no registered handler.
type Fallback func(action string, ev key.Event) bool

// Result describes how a key event was routed.
type Result struct {
	Focus   Focus
	Action  string
	Handled bool
}

// Outcome labels used in metrics.
const (
	OutcomeAction    = "action"
	OutcomeText      = "text"
	OutcomeUnhandled = "unhandled"
)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithMetrics sets the metric collectors.
func WithMetrics(m *Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// WithKeymaps replaces the default keymaps.
func WithKeymaps(kms ...*Keymap) Option {
	return func(r *Router) { r.initial = kms }
}

// WithDoubleClick sets the multi-click thresholds.
func WithDoubleClick(maxTime time.Duration, maxDistance int) Option {
	return func(r *Router) { r.clicks = mouse.NewTracker(maxTime, maxDistance) }
}

// Router dispatches input events by focus mode.
type Router struct {
	mu sync.Mutex

	focus     Focus
	bindings  [len(focusNames)][]parsedBinding
	handlers  [len(focusNames)]map[string]Handler
	fallbacks [len(focusNames)]Fallback
	text      [len(focusNames)]TextHandler
	pointer   [len(focusNames)]PointerHandler
	clicks    *mouse.Tracker
	initial   []*Keymap

	metrics *Metrics
	logger  zerolog.Logger
}

// New creates a router focused on the document, loaded with the default
// keymaps unless WithKeymaps replaces them. Invalid keymaps are logged
// and skipped.
func New(opts ...Option) *Router {
	r := &Router{logger: zerolog.Nop()}
	for i := range r.handlers {
		r.handlers[i] = make(map[string]Handler)
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clicks == nil {
		r.clicks = mouse.NewTracker(0, mouse.DefaultDoubleClickDistance)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	kms := r.initial
	if kms == nil {
		kms = DefaultKeymaps()
	}
	for _, km := range kms {
		if err := r.Load(km); err != nil {
			r.logger.Warn().Err(err).Str("keymap", km.Name).Msg("keymap skipped")
		}
	}
	return r
}

// Focus returns the focused mode.
func (r *Router) Focus() Focus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focus
}

// SetFocus moves focus to f.
func (r *Router) SetFocus(f Focus) {
	r.mu.Lock()
	prev := r.focus
	r.focus = f
	r.mu.Unlock()
	if prev != f {
		r.logger.Debug().Stringer("from", prev).Stringer("to", f).Msg("focus changed")
	}
}

// Load adds km's bindings to its focus mode. A key bound again replaces
// the earlier binding.
func (r *Router) Load(km *Keymap) error {
	parsed, err := km.parse()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pb := range parsed {
		r.bind(km.Focus, pb)
	}
	return nil
}

// Bind binds a single key spec in focus f.
func (r *Router) Bind(f Focus, keys, action string) error {
	return r.Load(NewKeymap("bind", f).Add(keys, action))
}

// Unbind removes the binding of keys in focus f.
func (r *Router) Unbind(f Focus, keys string) error {
	ev, err := key.Parse(keys)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.bindings[f]
	for i, pb := range list {
		if pb.event.Equals(ev) {
			r.bindings[f] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Router) bind(f Focus, pb parsedBinding) {
	list := r.bindings[f]
	for i := range list {
		if list[i].event.Equals(pb.event) {
			list[i] = pb
			return
		}
	}
	r.bindings[f] = append(list, pb)
}

// Lookup returns the action bound to ev in focus f.
func (r *Router) Lookup(f Focus, ev key.Event) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(f, ev)
}

func (r *Router) lookup(f Focus, ev key.Event) (string, bool) {
	for _, pb := range r.bindings[f] {
		if pb.event.Equals(ev) {
			return pb.action, true
		}
	}
	return "", false
}

// Bindings returns the bindings of focus f as key specs.
func (r *Router) Bindings(f Focus) []Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Binding, 0, len(r.bindings[f]))
	for _, pb := range r.bindings[f] {
		out = append(out, Binding{Keys: pb.event.String(), Action: pb.action})
	}
	return out
}

// Handle registers the handler of action in focus f.
func (r *Router) Handle(f Focus, action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[f][action] = h
}

// HandleFallback registers the resolver for actions of focus f that have
// no handler of their own.
func (r *Router) HandleFallback(f Focus, fb Fallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks[f] = fb
}

// HandleText registers the text handler of focus f.
func (r *Router) HandleText(f Focus, h TextHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text[f] = h
}

// HandlePointer registers the pointer handler of focus f.
func (r *Router) HandlePointer(f Focus, h PointerHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pointer[f] = h
}

// HandleKey routes ev. Handlers run outside the router's lock and may
// change focus; the event is never offered to a second focus mode.
func (r *Router) HandleKey(ev key.Event) Result {
	r.mu.Lock()
	f := r.focus
	res := Result{Focus: f}
	var (
		h        Handler
		fallback Fallback
		text     = r.text[f]
	)
	if !ev.Composing {
		if action, ok := r.lookup(f, ev); ok {
			res.Action = action
			h = r.handlers[f][action]
			fallback = r.fallbacks[f]
		}
	}
	r.mu.Unlock()

	switch {
	case ev.Composing && !ev.IsRune():
	case h != nil:
		res.Handled = h(ev)
	case fallback != nil:
		res.Handled = fallback(res.Action, ev)
	}
	if !res.Handled && text != nil && ev.IsText() {
		res.Handled = text(ev)
		if res.Handled {
			res.Action = ""
		}
	}

	outcome := OutcomeUnhandled
	switch {
	case res.Handled && res.Action != "":
		outcome = OutcomeAction
	case res.Handled:
		outcome = OutcomeText
	}
	r.metrics.keys.WithLabelValues(f.String(), outcome).Inc()
	r.logger.Trace().Stringer("key", ev).Stringer("focus", f).Str("action", res.Action).Bool("handled", res.Handled).Msg("key routed")
	return res
}

// HandlePointerEvent routes ev to the focused pointer handler. Primary
// button presses get a click count first.
func (r *Router) HandlePointerEvent(ev mouse.Event) bool {
	r.mu.Lock()
	f := r.focus
	if ev.IsClick() && ev.Count == 0 {
		ev.Count = r.clicks.Record(ev)
	}
	h := r.pointer[f]
	r.mu.Unlock()

	handled := h != nil && h(ev)
	outcome := OutcomeUnhandled
	if handled {
		outcome = OutcomeAction
	}
	r.metrics.pointer.WithLabelValues(f.String(), outcome).Inc()
	return handled
}
