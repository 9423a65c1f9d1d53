// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/newthinker/tickervista/internal/api/handler/api"
	"github.com/newthinker/tickervista/internal/api/job"
	"github.com/newthinker/tickervista/internal/api/middleware"
	"github.com/newthinker/tickervista/internal/api/response"
	"github.com/newthinker/tickervista/internal/metrics"
	"github.com/newthinker/tickervista/internal/storage/archive"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	maxJobs = 50
	jobTTL  = 24 * time.Hour
)

// Server serves published documents over HTTP
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux

	// cancels refresh runs started through the API
	runCtx     context.Context
	cancelRuns context.CancelFunc
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Dependencies are the collaborators the routes read from. Metrics and
// Runner are optional; without a Runner the refresh routes are not served.
type Dependencies struct {
	Store   archive.Storage
	Metrics *metrics.Registry
	Runner  apihandler.Runner
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}
	s.runCtx, s.cancelRuns = context.WithCancel(context.Background())

	s.setupRoutes(cfg, deps)
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	h := apihandler.NewMarketHandler(deps.Store, s.logger)
	v1 := http.NewServeMux()
	v1.HandleFunc("GET /api/v1/markets/overview", h.MarketOverview)
	v1.HandleFunc("GET /api/v1/sectors/overview", h.SectorsOverview)
	v1.HandleFunc("GET /api/v1/rankings/top-movers", h.TopMovers)
	v1.HandleFunc("GET /api/v1/rankings/dividends", h.Dividends)
	v1.HandleFunc("GET /api/v1/symbols", h.Symbols)
	v1.HandleFunc("GET /api/v1/ohlcv", h.OHLCV)
	v1.HandleFunc("GET /api/v1/indicators", h.Indicators)
	v1.HandleFunc("GET /api/v1/forecast", h.Forecast)
	v1.HandleFunc("GET /api/v1/insights/summary", h.Insights)

	if deps.Runner != nil {
		rh := apihandler.NewRefreshHandler(s.runCtx, deps.Runner, job.NewStore(maxJobs, jobTTL), s.logger)
		v1.HandleFunc("POST /api/v1/refresh", rh.Create)
		v1.HandleFunc("GET /api/v1/jobs", rh.List)
		v1.HandleFunc("GET /api/v1/jobs/{id}", rh.Get)
	}

	s.mux.Handle("/api/v1/", middleware.APIKeyAuth(cfg.APIKey)(v1))
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	s.cancelRuns()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
