// Package web exposes the analysis core over a small JSON API so a client
// UI can drive it.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gotacheck/internal/domain"
	"gotacheck/internal/foodquery"
	"gotacheck/internal/menuscan"
)

// settingsStore is the subset of store.SettingsStore the server requires.
type settingsStore interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, apiKey string) error
	SelectedModel(ctx context.Context) (domain.AIModel, error)
	SetSelectedModel(ctx context.Context, id string) error
}

// MenuAnalyzer is the pipeline surface the server drives.
type MenuAnalyzer interface {
	Analyze(ctx context.Context, image []byte, progress menuscan.ProgressFunc) (*domain.MenuAnalysisResult, error)
}

// ClassifierFactory builds a single-food classifier bound to the given
// credential and model. Credentials live in the settings store and may
// change between requests, so clients are constructed per invocation.
type ClassifierFactory func(apiKey, model string) foodquery.Classifier

// AnalyzerFactory builds a menu pipeline bound to the given credential and
// vision model.
type AnalyzerFactory func(apiKey, visionModel string) MenuAnalyzer

type Server struct {
	settings      settingsStore
	newClassifier ClassifierFactory
	newAnalyzer   AnalyzerFactory
	mux           *http.ServeMux
	logger        *slog.Logger

	// One in-flight request per operation kind. A second concurrent
	// request of the same kind is rejected rather than queued.
	foodMu sync.Mutex
	menuMu sync.Mutex
}

func NewServer(settings settingsStore, newClassifier ClassifierFactory, newAnalyzer AnalyzerFactory, logger *slog.Logger) *Server {
	s := &Server{
		settings:      settings,
		newClassifier: newClassifier,
		newAnalyzer:   newAnalyzer,
		mux:           http.NewServeMux(),
		logger:        logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/food", s.handleClassifyFood)
	s.mux.HandleFunc("POST /api/menu", s.handleAnalyzeMenu)
	s.mux.HandleFunc("POST /api/menu/stream", s.handleAnalyzeMenuStream)
	s.mux.HandleFunc("GET /api/models", s.handleListModels)
	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 60 * time.Second,
		// Menu analysis classifies up to 20 dishes sequentially; the write
		// deadline must cover the whole pipeline.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
