// Package web serves the generated indexes and lets clients trigger scans
// and generations over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/conorfennell/quizdeck/internal/config"
	"github.com/conorfennell/quizdeck/internal/domain"
	notesync "github.com/conorfennell/quizdeck/internal/sync"
)

// Runner performs the work behind the trigger endpoints.
type Runner interface {
	Scan() (notesync.ScanReport, error)
	Generate(ctx context.Context) (domain.RunSummary, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	cfg    config.Config
	runner Runner
	router *http.ServeMux
	logger *slog.Logger

	// mu keeps scans and generations from overlapping.
	mu sync.Mutex
}

// NewServer creates and configures a new server.
func NewServer(cfg config.Config, runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		router: http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth())

	s.router.HandleFunc("GET /api/index", s.handleArtifact(s.cfg.QuestionIndexPath()))
	s.router.HandleFunc("GET /api/flashcards", s.handleArtifact(s.cfg.CatalogPath()))
	s.router.HandleFunc("GET /api/notes", s.handleArtifact(s.cfg.NotesIndexPath()))

	s.router.HandleFunc("POST /api/scan", s.handlePostScan())
	s.router.HandleFunc("POST /api/generate", s.handlePostGenerate())

	// The paths listed in the indexes resolve against these.
	public := strings.TrimSuffix(s.cfg.Public, "/") + "/"
	s.router.Handle("GET "+public, http.StripPrefix(public, http.FileServer(http.Dir(s.cfg.Flashcards))))
	s.router.Handle("GET "+notesync.CategoriesPublicPrefix+"/", http.StripPrefix(notesync.CategoriesPublicPrefix+"/", http.FileServer(http.Dir(s.cfg.Categories))))
	s.router.Handle("GET /notes/", http.StripPrefix("/notes/", http.FileServer(http.Dir(s.cfg.Notes))))
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleArtifact returns a generated JSON file as is.
func (s *Server) handleArtifact(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "not generated yet")
			return
		}
		if err != nil {
			s.logger.Error("Error reading artifact", "path", path, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// handlePostScan rebuilds every index and waits for the result.
func (s *Server) handlePostScan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		report, err := s.runner.Scan()
		if err != nil {
			s.logger.Error("Scan failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// handlePostGenerate runs the deck pipeline in the foreground.
func (s *Server) handlePostGenerate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		summary, err := s.runner.Generate(r.Context())
		if err != nil {
			s.logger.Error("Generation failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
