package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/conorfennell/quizdeck/internal/config"
	"github.com/conorfennell/quizdeck/internal/domain"
	notesync "github.com/conorfennell/quizdeck/internal/sync"
)

type fakeRunner struct {
	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
	err       error
}

func (f *fakeRunner) enter() func() {
	n := f.active.Add(1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	f.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	return func() { f.active.Add(-1) }
}

func (f *fakeRunner) Scan() (notesync.ScanReport, error) {
	defer f.enter()()
	return notesync.ScanReport{Categories: 2, Decks: 3, NoteCategories: 1}, f.err
}

func (f *fakeRunner) Generate(context.Context) (domain.RunSummary, error) {
	defer f.enter()()
	return domain.RunSummary{DecksWritten: 4, CardsWritten: 12}, f.err
}

func newTestServer(t *testing.T, runner Runner) (*Server, config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Data = filepath.Join(dir, "data")
	cfg.Flashcards = filepath.Join(dir, "data", "flashcards")
	cfg.Notes = filepath.Join(dir, "notes")
	cfg.Categories = filepath.Join(dir, "categories")
	return NewServer(cfg, runner, nil), cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestArtifactEndpoints(t *testing.T) {
	s, cfg := newTestServer(t, &fakeRunner{})
	writeFile(t, cfg.QuestionIndexPath(), `{"categories":{"DevOps":{"Docker":{"count":3}}},"generatedAt":"x"}`)
	writeFile(t, cfg.CatalogPath(), `[]`)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/api/index", http.StatusOK, `"Docker":{"count":3}`},
		{"/api/flashcards", http.StatusOK, `[]`},
		{"/api/notes", http.StatusNotFound, `not generated yet`},
		{"/healthz", http.StatusOK, `"status":"ok"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("unexpected content type %q", ct)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("expected body to contain %s, got %s", tt.body, rec.Body.String())
			}
		})
	}
}

func TestArtifactEndpointsAreReadOnly(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/index", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestPostGenerate(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary domain.RunSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if summary.DecksWritten != 4 || summary.CardsWritten != 12 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestPostScanFailure(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{err: errors.New("cannot write index")})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scan", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cannot write index") {
		t.Errorf("expected the error in the body, got %s", rec.Body.String())
	}
}

func TestTriggersNeverOverlap(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(t, runner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		path := "/api/scan"
		if i%2 == 0 {
			path = "/api/generate"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		}()
	}
	wg.Wait()

	if runner.calls.Load() != 8 {
		t.Errorf("expected 8 runs, got %d", runner.calls.Load())
	}
	if runner.maxActive.Load() != 1 {
		t.Errorf("expected runs to be serialised, saw %d at once", runner.maxActive.Load())
	}
}

func TestServesContentFiles(t *testing.T) {
	s, cfg := newTestServer(t, &fakeRunner{})
	writeFile(t, filepath.Join(cfg.Flashcards, "DevOps", "Docker.json"), `[{"term":"Image","definition":"A template."}]`)
	writeFile(t, filepath.Join(cfg.Notes, "DevOps", "docker.md"), "# Docker\n")

	tests := []struct {
		path string
		body string
	}{
		{"/data/flashcards/DevOps/Docker.json", `"term":"Image"`},
		{"/notes/DevOps/docker.md", "# Docker"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("unexpected body %s", rec.Body.String())
			}
		})
	}
}
