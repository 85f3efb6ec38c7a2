package config

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/config/layer"
	"github.com/nahidnstu12/team-docs-sub001/internal/config/loader"
	"github.com/nahidnstu12/team-docs-sub001/internal/config/watcher"
	"github.com/nahidnstu12/team-docs-sub001/internal/validate"
)

// Change describes a configuration update.
type Change struct {
	Old, New Settings
	// Paths are the dot-separated settings that changed, sorted.
	Paths []string
}

// Changed reports whether path, or a setting below it, changed.
func (c Change) Changed(path string) bool {
	for _, p := range c.Paths {
		if p == path || strings.HasPrefix(p, path+".") {
			return true
		}
	}
	return false
}

// ChangeHandler is called after a reload that changed settings.
type ChangeHandler func(Change)

// Option configures a Config instance.
type Option func(*Config)

// WithPath sets the configuration file. The format follows the extension:
// .toml, .yaml or .yml.
func WithPath(path string) Option {
	return func(c *Config) { c.path = path }
}

// WithFS sets the file system the file layer is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) { c.fsys = fsys }
}

// WithEnv replaces the process environment, as returned by os.Environ.
func WithEnv(env []string) Option {
	return func(c *Config) { c.env = loader.NewEnvLoaderFrom(loader.DefaultEnvPrefix, env) }
}

// WithWatcher enables live reload of the configuration file.
func WithWatcher(debounce time.Duration) Option {
	return func(c *Config) {
		c.watch = true
		c.debounce = debounce
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// Config layers defaults, the configuration file, the environment and
// command-line overrides, and keeps the decoded Settings current.
type Config struct {
	mu sync.RWMutex

	path      string
	fsys      loader.FileSystem
	env       *loader.EnvLoader
	validator *validate.Validator
	logger    zerolog.Logger

	stack    *layer.Stack
	merged   map[string]any
	settings Settings
	loaded   bool

	watch    bool
	debounce time.Duration
	watcher  *watcher.Watcher
	handlers []ChangeHandler
}

// New creates a Config. Nothing is read until Load.
func New(opts ...Option) *Config {
	c := &Config{
		fsys:      loader.OSFS{},
		env:       loader.NewEnvLoader(loader.DefaultEnvPrefix),
		validator: validate.New(),
		logger:    zerolog.Nop(),
		stack:     layer.NewStack(),
		debounce:  watcher.DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the configuration file path.
func (c *Config) Path() string { return c.path }

// Load reads every layer and validates the result. With a watcher
// enabled, later edits of the file are applied through Reload.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defaults, err := toMap(Defaults())
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.stack.Put(layer.New(layer.SourceBuiltin, defaults))
	if err := c.loadFile(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.stack.Put(layer.New(layer.SourceEnv, c.env.Load()))
	merged, settings, err := c.build()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.merged, c.settings, c.loaded = merged, settings, true
	start := c.watch && c.path != "" && c.watcher == nil
	c.mu.Unlock()

	if start {
		return c.startWatcher()
	}
	return nil
}

func (c *Config) loadFile() error {
	if c.path == "" {
		return nil
	}
	data, err := loader.LoadFile(c.fsys, c.path)
	if err != nil {
		return err
	}
	l := layer.New(layer.SourceFile, data)
	l.Path = c.path
	c.stack.Put(l)
	return nil
}

// build merges the stack and decodes and validates the result.
func (c *Config) build() (map[string]any, Settings, error) {
	merged, err := normalize(c.stack.Merge())
	if err != nil {
		return nil, Settings{}, err
	}
	s, err := decode(merged)
	if err != nil {
		return nil, Settings{}, err
	}
	if err := s.Validate(c.validator); err != nil {
		return nil, Settings{}, err
	}
	return merged, s, nil
}

func (c *Config) startWatcher() error {
	w := watcher.New(watcher.WithDebounce(c.debounce), watcher.WithLogger(c.logger))
	if err := w.Watch(c.path); err != nil {
		return err
	}
	w.OnChange(func(ev watcher.Event) {
		c.logger.Debug().Str("path", ev.Path).Stringer("op", ev.Op).Msg("config file changed")
		if err := c.Reload(); err != nil {
			c.logger.Warn().Err(err).Str("path", ev.Path).Msg("config reload rejected")
		}
	})
	if err := w.Start(); err != nil {
		return err
	}
	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()
	return nil
}

// Settings returns the current settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Get returns the merged value at a dot-separated path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return layer.GetByPath(c.merged, path)
}

// Origin returns the layer that supplies path.
func (c *Config) Origin(path string) (layer.Source, bool) {
	return c.stack.Origin(path)
}

// OnChange registers a handler run after every reload or Set that
// changes settings.
func (c *Config) OnChange(h ChangeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// Set overrides path in the arguments layer, the highest priority. An
// invalid value is rejected and leaves the settings unchanged.
func (c *Config) Set(path string, value any) error {
	return c.update(func() error {
		prev, had := c.stack.Get(layer.SourceArgs)
		if had {
			prev = prev.Clone()
		}
		c.stack.Set(layer.SourceArgs, path, value)
		return c.restoreOnError(func() {
			if had {
				c.stack.Put(prev)
			} else {
				c.stack.Put(layer.New(layer.SourceArgs, nil))
			}
		})
	})
}

// Reload re-reads the configuration file. A file that fails to parse or
// validate is reported and the previous settings stay in effect.
func (c *Config) Reload() error {
	return c.update(func() error {
		prev, had := c.stack.Get(layer.SourceFile)
		if err := c.loadFile(); err != nil {
			return err
		}
		return c.restoreOnError(func() {
			if !had {
				prev = layer.New(layer.SourceFile, nil)
			}
			c.stack.Put(prev)
		})
	})
}

// restoreOnError rebuilds the settings, running undo when the new
// layers are invalid. The caller holds c.mu.
func (c *Config) restoreOnError(undo func()) error {
	merged, settings, err := c.build()
	if err != nil {
		undo()
		return err
	}
	c.merged, c.settings = merged, settings
	return nil
}

// update runs fn under the lock and notifies handlers of the changed
// paths after releasing it.
func (c *Config) update(fn func() error) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	oldMerged, oldSettings := c.merged, c.settings
	if err := fn(); err != nil {
		c.mu.Unlock()
		return err
	}
	ch := Change{Old: oldSettings, New: c.settings, Paths: layer.Diff(oldMerged, c.merged)}
	handlers := make([]ChangeHandler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	if len(ch.Paths) == 0 {
		return nil
	}
	c.logger.Info().Strs("changed", ch.Paths).Msg("configuration updated")
	for _, h := range handlers {
		h(ch)
	}
	return nil
}

// Close stops the file watcher.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Stop()
}
