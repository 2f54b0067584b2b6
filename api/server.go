// Package api serves the model library over HTTP.
package api

import (
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"go.uber.org/zap"

	"xsmodels/metrics"
	"xsmodels/xspec"
)

// Tracker gates work during shutdown. shutdown.Manager satisfies it.
type Tracker interface {
	Track(fn func() error) error
}

// Config wires a Server.
type Config struct {
	Session *xspec.Session
	Metrics metrics.Collector
	Logger  *zap.Logger
	Tracker Tracker

	// Feed, when set, is served at /v1/calls/stream.
	Feed *Feed

	// TableDir is the only directory /v1/tables/eval reads from. Empty
	// turns the route off.
	TableDir string
}

// Server holds the handlers.
type Server struct {
	session  *xspec.Session
	metrics  metrics.Collector
	logger   *zap.Logger
	tracker  Tracker
	feed     *Feed
	tableDir string
}

func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		session:  cfg.Session,
		metrics:  cfg.Metrics,
		logger:   logger,
		tracker:  cfg.Tracker,
		feed:     cfg.Feed,
		tableDir: cfg.TableDir,
	}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/health", s.handleHealth)

	e.GET("/v1/models", s.handleListModels)
	e.GET("/v1/models/:name", s.handleModelInfo)
	e.POST("/v1/models/:name/eval", s.handleEval)
	e.POST("/v1/tables/eval", s.handleTableEval)

	e.GET("/v1/settings", s.handleGetSettings)
	e.PUT("/v1/settings", s.handlePutSettings)
	e.GET("/v1/elements", s.handleListElements)
	e.GET("/v1/elements/:id", s.handleElement)
	e.GET("/v1/keywords/:key", s.handleKeyword)
	e.PUT("/v1/keywords/:key", s.handleSetKeyword)
	e.GET("/v1/model-strings/:key", s.handleModelString)
	e.PUT("/v1/model-strings/:key", s.handleSetModelString)
	e.GET("/v1/xflt/:spectrum", s.handleXFLT)
	e.PUT("/v1/xflt/:spectrum", s.handleSetXFLT)

	e.GET("/v1/metrics", s.handleMetrics)
	e.GET("/v1/metrics/calls", s.handleRecentCalls)
	e.GET("/v1/calls/stream", s.handleCallFeed)
}

// NewEcho returns an Echo instance with the middleware stack and routes.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(s.requestContext)
	s.Register(e)
	return e
}

// run executes fn as tracked work when a Tracker is configured.
func (s *Server) run(fn func() error) error {
	if s.tracker == nil {
		return fn()
	}
	return s.tracker.Track(fn)
}
