// Package server exposes materialized series views over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/franz/showcat/internal/report"
	"github.com/franz/showcat/internal/util"
	"github.com/franz/showcat/internal/view"
)

// statusClientClosedRequest marks requests abandoned by the client
const statusClientClosedRequest = 499

// Viewer produces series views
type Viewer interface {
	Materialize(ctx context.Context, filter view.Filter) ([]view.SeriesView, error)
	MaterializeOne(ctx context.Context, alias string) (*view.SeriesView, error)
}

// Server serves the read-only catalog API
type Server struct {
	router *chi.Mux
	viewer Viewer
	events *report.EventLogger
}

// New builds the router. events may be nil.
func New(viewer Viewer, events *report.EventLogger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		viewer: viewer,
		events: events,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/series", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{alias}", s.handleSeries)
	})

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	views, err := s.viewer.Materialize(r.Context(), view.Filter{})
	s.events.LogMaterialize("", len(views), time.Since(start), err)
	if err != nil {
		s.fail(w, "", err)
		return
	}
	if views == nil {
		views = []view.SeriesView{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")

	start := time.Now()
	v, err := s.viewer.MaterializeOne(r.Context(), alias)
	count := 0
	if v != nil {
		count = 1
	}
	s.events.LogMaterialize(alias, count, time.Since(start), err)
	if err != nil {
		s.fail(w, alias, err)
		return
	}
	if v == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "series not found"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) fail(w http.ResponseWriter, alias string, err error) {
	var integrity *view.IntegrityError
	switch {
	case errors.As(err, &integrity):
		util.ErrorLog("Catalog integrity: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog data integrity error"})
	case errors.Is(err, context.Canceled):
		w.WriteHeader(statusClientClosedRequest)
	default:
		util.ErrorLog("Materialize %q failed: %v", alias, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		util.WarnLog("Failed to write response: %v", err)
	}
}
