package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/store"
	"github.com/nahidnstu12/team-docs-sub001/internal/validate"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithEditorOptions sets the provider of options for new session editors.
// It is called once per session so configuration changes apply to
// sessions opened afterwards.
func WithEditorOptions(fn func() []editor.Option) Option {
	return func(s *Server) { s.editorOptions = fn }
}

// WithAutosaver routes session commits to the store.
func WithAutosaver(a *store.Autosaver) Option {
	return func(s *Server) { s.autosaver = a }
}

// WithRegistry sets the prometheus registry for HTTP metrics and the
// /metrics endpoint. Without it the server creates its own.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithBodyLimit caps request bodies, in echo's size notation.
func WithBodyLimit(limit string) Option {
	return func(s *Server) { s.bodyLimit = limit }
}

// Server is the HTTP front end.
type Server struct {
	echo          *echo.Echo
	pages         store.Store
	sessions      *Sessions
	autosaver     *store.Autosaver
	editorOptions func() []editor.Option
	registry      *prometheus.Registry
	bodyLimit     string
	logger        zerolog.Logger
}

// New builds the server and its routes.
func New(pages store.Store, opts ...Option) *Server {
	s := &Server{
		pages:     pages,
		bodyLimit: "2M",
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = newSessions(s.editorOptions, s.autosaver, s.logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Validator = validate.New()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogMethod:  true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.logger.Debug()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = s.logger.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(s.bodyLimit))

	mwConfig := echoprometheus.MiddlewareConfig{
		Subsystem: "pagedit",
		Skipper:   func(c echo.Context) bool { return c.Path() == "/metrics" },
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	mwConfig.Registerer = s.registry
	e.Use(echoprometheus.NewMiddlewareWithConfig(mwConfig))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))

	s.echo = e
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	api.POST("/pages", s.createPage)
	api.GET("/pages", s.listPages)
	api.GET("/pages/:id", s.getPage)
	api.GET("/pages/:id/export", s.exportPage)
	api.POST("/pages/:id/sessions", s.openSession)

	api.GET("/sessions", s.listSessions)
	api.GET("/sessions/:sid", s.getSession)
	api.DELETE("/sessions/:sid", s.closeSession)
	api.POST("/sessions/:sid/events", s.postEvents)
	api.POST("/sessions/:sid/save", s.saveSession)
	api.GET("/sessions/:sid/ws", s.socket)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Registry returns the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Sessions returns the open sessions.
func (s *Server) Sessions() *Sessions { return s.sessions }

// Start serves on addr until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// every session so pending changes are saved.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	for _, sess := range s.sessions.List() {
		if cerr := s.sessions.Close(ctx, sess.ID); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)
