// Package server serves the popup page and its actions over local HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/runnerr0/quipu/internal/popup"
	"github.com/runnerr0/quipu/internal/render"
	"github.com/runnerr0/quipu/internal/stats"
)

// Server wraps a popup.Controller behind a mutex so HTTP handlers never use
// it concurrently.
type Server struct {
	mu     sync.Mutex
	ctrl   *popup.Controller
	logger *log.Logger
}

// New creates a Server. A nil logger discards output.
func New(ctrl *popup.Controller, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{ctrl: ctrl, logger: logger}
}

// Handler returns the routes as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.AttachRoutes(mux)
	return mux
}

// AttachRoutes registers the UI and API routes on mux.
func (s *Server) AttachRoutes(mux *http.ServeMux) {
	// UI
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/clear", s.handleClear)

	// API
	mux.HandleFunc("/api/views", s.handleViews)
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tab := r.URL.Query().Get("tab"); tab != "" {
		v, err := stats.ParseView(tab)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.ctrl.Select(v)
	}
	s.ctrl.Load(r.Context())

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, s.ctrl.Page()); err != nil {
		s.logger.Error("rendering page", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := s.ctrl.Export(r.Context(), &buf); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Export failed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.ctrl.ExportFilename()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.FormValue("confirm") != "yes" {
		http.Error(w, "confirmation required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.Clear(r.Context()); err != nil {
		http.Error(w, "Failed to clear data", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/?tab="+string(s.ctrl.View()), http.StatusSeeOther)
}

// viewJSON is one view in the /api/views response.
type viewJSON struct {
	View       stats.View  `json:"view"`
	Title      string      `json:"title"`
	TotalMS    int64       `json:"total_ms"`
	Total      string      `json:"total"`
	CountLabel string      `json:"count_label"`
	Sites      []stats.Row `json:"sites"`
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ctrl.Load(r.Context())
	now := s.ctrl.Now()

	out := make([]viewJSON, 0, len(stats.Views))
	for _, v := range stats.Views {
		rows := s.ctrl.Rows(v)
		total := stats.HeaderTotal(rec, v, now)
		out = append(out, viewJSON{
			View:       v,
			Title:      v.Title(),
			TotalMS:    total,
			Total:      stats.FormatDuration(total),
			CountLabel: stats.SiteCountLabel(len(rows)),
			Sites:      rows,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
