// Package server exposes a workspace's frame graph over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/event"
	"github.com/Iron-Ham/framegraph/internal/logging"
	"github.com/Iron-Ham/framegraph/internal/workspace"
)

const shutdownTimeout = 5 * time.Second

// Options configures New.
type Options struct {
	// Addr is the listen address used by Run.
	Addr        string
	ReadTimeout time.Duration
	// Registry receives the server collectors and backs /metrics.
	// A private registry is created when nil.
	Registry *prometheus.Registry
	// ServiceName is reported on request spans.
	ServiceName string
	Logger      *logging.Logger
}

// Server serves one workspace.
type Server struct {
	ws      *workspace.Workspace
	engine  *gin.Engine
	metrics *Metrics
	logger  *logging.Logger
	opts    Options
	sub     event.SubscriptionID
}

// New creates a Server with all routes registered.
func New(ws *workspace.Workspace, opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "framegraph"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	s := &Server{
		ws:      ws,
		metrics: NewMetrics(opts.Registry),
		logger:  logger.With("component", "server"),
		opts:    opts,
	}
	if g, err := ws.Graph(); err == nil {
		s.metrics.SetGraph(g)
	}
	s.sub = ws.Bus().Subscribe(s.metrics.Observe, event.TypeBuildFinished, event.TypeBuildFailed)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		otelgin.Middleware(opts.ServiceName),
		s.metrics.Middleware(),
		s.logRequests(),
	)
	s.engine = engine
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	{
		api.GET("/passes", s.listPasses)
		api.GET("/passes/:eid", s.getPass)
		api.GET("/edges", s.listEdges)
		api.GET("/effective/:eid", s.effectiveEvent)
		api.GET("/tooltip/texture/:id", s.textureTooltip)
		api.GET("/graph.dot", s.graphDOT)
		api.GET("/graph.svg", s.graphSVG)
		api.GET("/graph.json", s.graphJSON)
		api.POST("/select", s.selectIntents)
		api.POST("/rebuild", s.rebuild)
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Routes lists the registered routes.
func (s *Server) Routes() gin.RoutesInfo { return s.engine.Routes() }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Close detaches the server from the workspace bus.
func (s *Server) Close() {
	if s.sub != 0 {
		s.ws.Bus().Unsubscribe(s.sub)
		s.sub = 0
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}
		s.logger.Debug("http request", args...)
	}
}
