package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/config"
	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/event"
	"github.com/nahidnstu12/team-docs-sub001/internal/input"
	"github.com/nahidnstu12/team-docs-sub001/internal/logging"
	"github.com/nahidnstu12/team-docs-sub001/internal/pipeline"
	"github.com/nahidnstu12/team-docs-sub001/internal/plugin/lua"
	"github.com/nahidnstu12/team-docs-sub001/internal/store"
)

const shutdownTimeout = 10 * time.Second

// runtime holds the components every command shares.
type runtime struct {
	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer

	pages     *store.GormStore
	bus       *event.Bus
	autosaver *store.Autosaver
	plugins   []*lua.Plugin

	registry        *prometheus.Registry
	pipelineMetrics *pipeline.Metrics
	inputMetrics    *input.Metrics
}

// newRuntime loads the configuration and opens the store. Interactive
// commands own the terminal, so they log only to a configured file.
func newRuntime(ctx context.Context, opts options, interactive bool) (rt *runtime, err error) {
	rt = &runtime{logCloser: io.NopCloser(nil)}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	var cfgOpts []config.Option
	if opts.ConfigPath != "" {
		cfgOpts = append(cfgOpts, config.WithPath(opts.ConfigPath), config.WithWatcher(0))
	}
	rt.cfg = config.New(cfgOpts...)
	if err := rt.cfg.Load(ctx); err != nil {
		return rt, fmt.Errorf("config: %w", err)
	}
	overrides := map[string]string{
		"log.level":      opts.LogLevel,
		"store.dsn":      opts.DSN,
		"server.listen":  opts.Listen,
		"store.encoding": opts.Encoding,
	}
	for path, value := range overrides {
		if value == "" {
			continue
		}
		if err := rt.cfg.Set(path, value); err != nil {
			return rt, fmt.Errorf("-%s: %w", path, err)
		}
	}
	settings := rt.cfg.Settings()

	logCfg := settings.LogConfig()
	if interactive && logCfg.Path == "" {
		logCfg.Output = io.Discard
	}
	if rt.logger, rt.logCloser, err = logging.New(logCfg); err != nil {
		return rt, fmt.Errorf("log: %w", err)
	}
	// The config was built before the logger existed.
	rt.cfg.OnChange(func(ch config.Change) {
		rt.logger.Info().Strs("paths", ch.Paths).Msg("configuration reloaded")
	})

	encoding, err := store.ParseEncoding(settings.Store.Encoding)
	if err != nil {
		return rt, err
	}
	rt.pages, err = store.Open(ctx, settings.Store.DSN,
		store.WithEncoding(encoding),
		store.WithLogger(logging.Component(rt.logger, "store")))
	if err != nil {
		return rt, fmt.Errorf("store: %w", err)
	}

	rt.bus = event.NewBus(event.WithErrorHandler(func(ev any, err error) {
		rt.logger.Error().Err(err).Msg("event handler failed")
	}))
	if err := rt.bus.Start(); err != nil {
		return rt, err
	}
	rt.autosaver = store.NewAutosaver(rt.pages, rt.bus,
		store.WithDelay(settings.Store.AutosaveDelay),
		store.WithAutosaveLogger(logging.Component(rt.logger, "autosave")))
	if err := rt.autosaver.Start(); err != nil {
		return rt, err
	}

	if dir := settings.Plugins.Dir; dir != "" {
		// A broken plugin is logged and skipped.
		rt.plugins, _ = lua.LoadDir(ctx, dir, lua.WithLogger(logging.Component(rt.logger, "plugin")))
	}

	rt.registry = prometheus.NewRegistry()
	rt.pipelineMetrics = pipeline.NewMetrics(rt.registry)
	rt.inputMetrics = input.NewMetrics(rt.registry)
	return rt, nil
}

// editorOptions returns the options for a new editor under the current
// settings.
func (rt *runtime) editorOptions() []editor.Option {
	opts := rt.cfg.Settings().EditorOptions()
	return append(opts,
		editor.WithEventBus(rt.bus),
		editor.WithMetrics(rt.pipelineMetrics, rt.inputMetrics),
		editor.WithPaletteItems(lua.Items(rt.plugins)...),
	)
}

// Close flushes pending saves and releases everything in reverse order.
func (rt *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if rt.autosaver != nil {
		errs = append(errs, rt.autosaver.Stop(ctx))
	}
	if rt.bus != nil {
		errs = append(errs, rt.bus.Stop(ctx))
	}
	for _, p := range rt.plugins {
		errs = append(errs, p.Close())
	}
	if rt.pages != nil {
		errs = append(errs, rt.pages.Close())
	}
	if rt.cfg != nil {
		errs = append(errs, rt.cfg.Close())
	}
	if err := errors.Join(errs...); err != nil {
		rt.logger.Error().Err(err).Msg("shutdown")
	}
	_ = rt.logCloser.Close()
}
