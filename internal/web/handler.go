// Package web serves the local dashboard: an upload form backed by the
// analysis lifecycle, a live state stream, and the diagnosis history.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/kamilpajak/leafcheck/internal/database"
	"github.com/kamilpajak/leafcheck/internal/lifecycle"
	"github.com/kamilpajak/leafcheck/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed static
var staticFiles embed.FS

// HistoryStore lists stored diagnoses. *database.DB implements it.
type HistoryStore interface {
	ListDiagnoses(ctx context.Context, limit int) ([]database.Diagnosis, error)
}

// Handler serves the web dashboard and API endpoints.
type Handler struct {
	mux     *http.ServeMux
	machine *lifecycle.Machine
	history HistoryStore
	log     *logrus.Logger
}

// Option configures a Handler
type Option func(*Handler)

// WithHistory enables GET /api/history
func WithHistory(h HistoryStore) Option {
	return func(hd *Handler) { hd.history = h }
}

// WithLogger sets the request logger
func WithLogger(l *logrus.Logger) Option {
	return func(hd *Handler) { hd.log = l }
}

// NewHandler creates a new web handler with all routes registered.
func NewHandler(m *lifecycle.Machine, opts ...Option) *Handler {
	h := &Handler{
		mux:     http.NewServeMux(),
		machine: m,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}

	staticFS, _ := fs.Sub(staticFiles, "static")
	h.mux.Handle("GET /", http.FileServer(http.FS(staticFS)))
	h.mux.HandleFunc("POST /api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("POST /api/reset", h.handleReset)
	h.mux.HandleFunc("GET /api/state", h.handleState)
	h.mux.HandleFunc("GET /api/events", h.handleEvents)
	h.mux.HandleFunc("GET /api/history", h.handleHistory)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
