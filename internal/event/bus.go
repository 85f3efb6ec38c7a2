package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// HandlerFunc handles one event.
type HandlerFunc func(ctx context.Context, ev any) error

// PanicHandler receives recovered handler panics.
type PanicHandler func(ev any, recovered any)

// Subscription is a registered handler.
type Subscription struct {
	id      uint64
	pattern Topic
	handler HandlerFunc
}

// Pattern returns the topic pattern of the subscription.
func (s *Subscription) Pattern() Topic { return s.pattern }

// Stats reports bus activity.
type Stats struct {
	Published uint64
	Delivered uint64
	Errors    uint64
	Panics    uint64
	Dropped   uint64
}

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	queueSize    int
	panicHandler PanicHandler
	errorHandler func(ev any, err error)
}

// WithAsyncQueueSize sets the capacity of the async queue.
func WithAsyncQueueSize(size int) BusOption {
	return func(c *busConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithPanicHandler sets the handler for recovered panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) { c.panicHandler = h }
}

// WithErrorHandler sets the callback for handler errors.
func WithErrorHandler(h func(ev any, err error)) BusOption {
	return func(c *busConfig) { c.errorHandler = h }
}

type queued struct {
	ctx context.Context
	ev  any
}

// Bus delivers events to subscriptions whose pattern matches the topic.
type Bus struct {
	config busConfig

	mu     sync.RWMutex
	subs   []*Subscription
	nextID uint64

	queue   chan queued
	done    chan struct{}
	running atomic.Bool

	published atomic.Uint64
	delivered atomic.Uint64
	errors    atomic.Uint64
	panics    atomic.Uint64
	dropped   atomic.Uint64
}

// NewBus creates a stopped bus.
func NewBus(opts ...BusOption) *Bus {
	cfg := busConfig{queueSize: 1024}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{config: cfg}
}

// Start launches the async worker.
func (b *Bus) Start() error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrBusAlreadyRunning
	}
	b.queue = make(chan queued, b.config.queueSize)
	b.done = make(chan struct{})
	go b.worker(b.queue, b.done)
	return nil
}

// Stop drains the queue and stops the worker, or gives up when ctx ends.
func (b *Bus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}
	b.mu.Lock()
	close(b.queue)
	b.mu.Unlock()
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the bus accepts events.
func (b *Bus) IsRunning() bool { return b.running.Load() }

func (b *Bus) worker(queue <-chan queued, done chan<- struct{}) {
	defer close(done)
	for q := range queue {
		b.deliver(q.ctx, q.ev)
	}
}

// Subscribe registers fn for topics matching pattern.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{id: b.nextID, pattern: pattern, handler: fn}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// Unsubscribe removes sub. Removing an unknown subscription is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish queues ev for asynchronous delivery.
func (b *Bus) Publish(ctx context.Context, ev any) error {
	if topicOf(ev) == "" {
		return ErrInvalidEvent
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running.Load() {
		return ErrBusNotRunning
	}
	select {
	case b.queue <- queued{ctx: context.WithoutCancel(ctx), ev: ev}:
		b.published.Add(1)
		return nil
	default:
		b.dropped.Add(1)
		return ErrQueueFull
	}
}

// PublishSync delivers ev on the calling goroutine.
func (b *Bus) PublishSync(ctx context.Context, ev any) error {
	if topicOf(ev) == "" {
		return ErrInvalidEvent
	}
	if !b.running.Load() {
		return ErrBusNotRunning
	}
	b.published.Add(1)
	b.deliver(ctx, ev)
	return nil
}

func (b *Bus) deliver(ctx context.Context, ev any) {
	t := topicOf(ev)
	b.mu.RLock()
	var matched []*Subscription
	for _, s := range b.subs {
		if t.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		if err := b.call(ctx, s, ev); err != nil {
			b.errors.Add(1)
			if b.config.errorHandler != nil {
				b.config.errorHandler(ev, err)
			}
			continue
		}
		b.delivered.Add(1)
	}
}

func (b *Bus) call(ctx context.Context, s *Subscription, ev any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if b.config.panicHandler != nil {
				b.config.panicHandler(ev, r)
			}
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return s.handler(ctx, ev)
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Errors:    b.errors.Load(),
		Panics:    b.panics.Load(),
		Dropped:   b.dropped.Load(),
	}
}
