// Package watcher provides file watching for configuration live reload.
//
// Files are watched through their parent directory so editors that save
// by rename are seen. Bursts of events on one file are coalesced and
// delivered once the file has been quiet for the debounce interval.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before an event is delivered.
const DefaultDebounce = 100 * time.Millisecond

// ErrRunning is returned by Start on a running watcher.
var ErrRunning = errors.New("watcher already running")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last coalesced change happened.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

func operation(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher monitors files for changes.
type Watcher struct {
	mu       sync.Mutex
	files    map[string]struct{}
	handlers []Handler
	debounce time.Duration
	logger   zerolog.Logger

	fsw     *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	pending map[string]*pendingEvent
}

type pendingEvent struct {
	op    Operation
	at    time.Time
	timer *time.Timer
}

// New creates a stopped watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]struct{}),
		debounce: DefaultDebounce,
		logger:   zerolog.Nop(),
		pending:  make(map[string]*pendingEvent),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch adds a file to the watch list. The file need not exist yet.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[abs] = struct{}{}
	if w.fsw != nil {
		return w.fsw.Add(filepath.Dir(abs))
	}
	return nil
}

// WatchedFiles returns the watched paths.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return ErrRunning
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dirs := make(map[string]struct{})
	for p := range w.files {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.loop(fsw, w.done)
	return nil
}

// Stop stops watching and drops undelivered events.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fsw, done := w.fsw, w.done
	w.fsw, w.done = nil, nil
	for p, pe := range w.pending {
		pe.timer.Stop()
		delete(w.pending, p)
	}
	w.mu.Unlock()
	if fsw == nil {
		return nil
	}
	close(done)
	err := fsw.Close()
	w.wg.Wait()
	return err
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsw != nil
}

func (w *Watcher) loop(fsw *fsnotify.Watcher, done chan struct{}) {
	defer w.wg.Done()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op, ok := operation(ev.Op)
	if !ok {
		return
	}
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	if _, watched := w.files[path]; !watched {
		w.mu.Unlock()
		return
	}
	if w.debounce == 0 {
		w.mu.Unlock()
		w.emit(Event{Path: path, Op: op, Time: time.Now()})
		return
	}
	w.queue(path, op)
	w.mu.Unlock()
}

// queue coalesces op into the pending event for path and restarts its
// timer. Removal wins over everything; a create is not downgraded by the
// writes that follow it.
func (w *Watcher) queue(path string, op Operation) {
	now := time.Now()
	pe, ok := w.pending[path]
	if !ok {
		pe = &pendingEvent{op: op}
		pe.timer = time.AfterFunc(w.debounce, func() { w.flush(path) })
		w.pending[path] = pe
	} else {
		switch {
		case op == OpRemove:
			pe.op = OpRemove
		case op == OpWrite && pe.op != OpWrite:
		default:
			pe.op = op
		}
		pe.timer.Reset(w.debounce)
	}
	pe.at = now
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	pe, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.mu.Unlock()
	if ok {
		w.emit(Event{Path: path, Op: pe.op, Time: pe.at})
	}
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()
	for _, h := range handlers {
		w.call(h, ev)
	}
}

// call runs a handler, recovering panics to keep the watcher running.
func (w *Watcher) call(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Interface("panic", r).Str("path", ev.Path).Msg("config watcher handler panicked")
		}
	}()
	h(ev)
}
