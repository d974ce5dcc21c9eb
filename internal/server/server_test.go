package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/showcat/internal/catalog"
	"github.com/franz/showcat/internal/store"
	"github.com/franz/showcat/internal/view"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(New(view.New(db, nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestListEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/series")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestListAndGet(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()

	for _, alias := range []string{"first", "second"} {
		_, err := db.UpsertSeries(ctx, catalog.SeriesKey{Title: strings.ToUpper(alias), Alias: alias}, catalog.SeriesFields{
			Seasons: []catalog.SeasonInput{{Alias: "s1", Episodes: []catalog.Episode{{Alias: "e1"}}}},
		})
		if err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
	}

	resp, body := get(t, srv.URL+"/api/series")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}

	var views []view.SeriesView
	if err := json.Unmarshal(body, &views); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(views) != 2 || views[0].Path != "/series/first" || views[1].Path != "/series/second" {
		t.Errorf("unexpected views: %+v", views)
	}

	resp, body = get(t, srv.URL+"/api/series/second")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var one view.SeriesView
	if err := json.Unmarshal(body, &one); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if one.Title != "SECOND" || one.Seasons[0].Episodes[0].Title != "Эпизод 1" {
		t.Errorf("unexpected view: %+v", one)
	}
	// Cyrillic is written as-is
	if !strings.Contains(string(body), "сезон") {
		t.Errorf("expected unescaped season title in %s", body)
	}
}

func TestGetMissing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := get(t, srv.URL+"/api/series/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

type failingViewer struct {
	err error
}

func (f failingViewer) Materialize(ctx context.Context, filter view.Filter) ([]view.SeriesView, error) {
	return nil, f.err
}

func (f failingViewer) MaterializeOne(ctx context.Context, alias string) (*view.SeriesView, error) {
	return nil, f.err
}

func TestIntegrityErrorIs500(t *testing.T) {
	ie := &view.IntegrityError{SeriesAlias: "a", SeasonAlias: "b", EpisodeAlias: "c", FilePath: "x", Err: catalog.ErrInvalidQuality}

	for _, viewer := range []Viewer{failingViewer{err: ie}, failingViewer{err: errors.New("boom")}} {
		srv := httptest.NewServer(New(viewer, nil).Handler())

		for _, path := range []string{"/api/series", "/api/series/a"} {
			resp, body := get(t, srv.URL+path)
			if resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("%s: expected 500, got %d", path, resp.StatusCode)
			}
			if !strings.Contains(string(body), `"error"`) {
				t.Errorf("%s: expected error body, got %s", path, body)
			}
		}
		srv.Close()
	}
}

func TestCanceledRequestIsNotOK(t *testing.T) {
	h := New(failingViewer{err: context.Canceled}, nil).Handler()

	for _, path := range []string{"/api/series", "/api/series/a"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != statusClientClosedRequest {
			t.Errorf("%s: expected %d, got %d", path, statusClientClosedRequest, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("%s: expected empty body, got %q", path, rec.Body.String())
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(failingViewer{}, nil).ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
