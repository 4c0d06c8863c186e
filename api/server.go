// Package api provides the HTTP REST API server for nivesh.
//
// It exposes endpoints for investment analysis, stock and mutual fund data,
// financial news, charts, report history and chat.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/nivesh/internal/agent"
	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/internal/config"
	"github.com/seenimoa/nivesh/internal/llm"
	"github.com/seenimoa/nivesh/internal/logger"
	"github.com/seenimoa/nivesh/internal/store"
	"github.com/seenimoa/nivesh/internal/tools"
)

// Analyzer computes reports and exposes the series behind them.
type Analyzer interface {
	Analyze(ctx context.Context, req analytics.Request) (*analytics.Report, error)
	Series(ctx context.Context, req analytics.Request) (string, analytics.TimeSeries, error)
}

// ReportStore persists reports.
type ReportStore interface {
	SaveReport(ctx context.Context, r *analytics.Report) (string, error)
	GetReport(ctx context.Context, id string) (*store.Record, error)
	ListReports(ctx context.Context, f store.Filter) ([]store.Record, error)
}

// Chatter answers chat messages.
type Chatter interface {
	Ask(ctx context.Context, input string, history []llm.Message) (*agent.Result, error)
}

// Options wires a Server. Store, Assistant and LLM are optional; the
// endpoints that need them answer 503 when they are nil.
type Options struct {
	Config    *config.Config
	Toolkit   *tools.Toolkit
	Analyzer  Analyzer
	Store     ReportStore
	Assistant Chatter
	LLM       llm.LLMProvider
	Logger    *logrus.Logger
	Version   string
}

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	toolkit   *tools.Toolkit
	analyzer  Analyzer
	store     ReportStore
	assistant Chatter
	llm       llm.LLMProvider
	log       *logrus.Logger
	version   string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Toolkit == nil {
		opts.Toolkit = &tools.Toolkit{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		cfg:       opts.Config,
		toolkit:   opts.Toolkit,
		analyzer:  opts.Analyzer,
		store:     opts.Store,
		assistant: opts.Assistant,
		llm:       opts.LLM,
		log:       opts.Logger,
		version:   opts.Version,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.requestTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("API server listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.API.RequestTimeout > 0 {
		return s.cfg.API.RequestTimeout
	}
	return 90 * time.Second
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		// Analysis
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/chart/{identifier}", s.handleChart)

		// Stocks
		r.Get("/stocks/{symbol}", s.handleStockInfo)
		r.Get("/stocks/{symbol}/history", s.handleStockHistory)
		r.Get("/stocks/{symbol}/financials", s.handleStockFinancials)

		// Mutual funds
		r.Get("/mf/search", s.handleSchemeSearch)
		r.Get("/mf/{code}", s.handleSchemeDetails)

		// News
		r.Get("/news", s.handleNews)

		// Report history
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)

		// Chat
		r.Post("/chat", s.handleChat)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// ============================================================
// Response helpers
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("Failed to write JSON response")
	}
}

func (s *Server) writeData(w http.ResponseWriter, v interface{}) {
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: v})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{Success: false, Error: msg})
}
