package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conorfennell/quizdeck/internal/config"
	"github.com/conorfennell/quizdeck/internal/deck"
	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/gitsource"
	"github.com/conorfennell/quizdeck/internal/scan"
)

// ScanReport summarises one scan of all three indexes.
type ScanReport struct {
	Categories     int `json:"categories"`
	Decks          int `json:"decks"`
	NoteCategories int `json:"note_categories"`
}

// Service runs scans and generations against one configuration.
type Service struct {
	cfg      config.Config
	repo     *deck.FileRepository
	scanner  *scan.Scanner
	logger   *slog.Logger
	startRun func() (Recorder, error)
	pullRepo func(ctx context.Context, url, path string, logger *slog.Logger) error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLedger records every generation through startRun.
func WithLedger(startRun func() (Recorder, error)) ServiceOption {
	return func(s *Service) { s.startRun = startRun }
}

// WithScanner replaces the default scanner.
func WithScanner(scanner *scan.Scanner) ServiceOption {
	return func(s *Service) { s.scanner = scanner }
}

// NewService creates a Service for cfg.
func NewService(cfg config.Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		cfg:      cfg,
		repo:     deck.NewFileRepository(cfg.Flashcards, logger),
		scanner:  scan.New(logger),
		logger:   logger,
		startRun: func() (Recorder, error) { return NopRecorder{}, nil },
		pullRepo: gitsource.Sync,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan rebuilds the question index, the deck catalog and the notes index.
func (s *Service) Scan() (ScanReport, error) {
	index, err := s.scanner.Questions(s.cfg.Categories, s.cfg.QuestionIndexPath())
	if err != nil {
		return ScanReport{}, fmt.Errorf("scan questions: %w", err)
	}
	catalog, err := s.scanner.Flashcards(s.repo, s.cfg.Public, s.cfg.CatalogPath())
	if err != nil {
		return ScanReport{}, fmt.Errorf("scan flashcards: %w", err)
	}
	notes, err := s.scanner.Notes(s.cfg.Notes, s.cfg.NotesIndexPath())
	if err != nil {
		return ScanReport{}, fmt.Errorf("scan notes: %w", err)
	}
	return ScanReport{
		Categories:     len(index.Categories),
		Decks:          len(catalog),
		NoteCategories: len(notes.Notes),
	}, nil
}

// Generate refreshes the notes checkout when a repository is configured,
// runs the pipeline and rewrites the deck catalog.
func (s *Service) Generate(ctx context.Context) (domain.RunSummary, error) {
	if s.cfg.Repo != "" {
		if err := s.pullRepo(ctx, s.cfg.Repo, s.cfg.Notes, s.logger); err != nil {
			return domain.RunSummary{}, fmt.Errorf("sync notes: %w", err)
		}
	}

	recorder, err := s.startRun()
	if err != nil {
		return domain.RunSummary{}, err
	}

	p := &Pipeline{
		NotesRoot:      s.cfg.Notes,
		CategoriesRoot: s.cfg.Categories,
		Repo:           s.repo,
		Recorder:       recorder,
		Logger:         s.logger,
	}
	summary, err := p.Run()
	if err != nil {
		return summary, err
	}

	if _, err := s.scanner.Flashcards(s.repo, s.cfg.Public, s.cfg.CatalogPath()); err != nil {
		return summary, fmt.Errorf("scan flashcards: %w", err)
	}
	return summary, nil
}

// All generates and then scans everything.
func (s *Service) All(ctx context.Context) (domain.RunSummary, ScanReport, error) {
	summary, err := s.Generate(ctx)
	if err != nil {
		return summary, ScanReport{}, err
	}
	report, err := s.Scan()
	return summary, report, err
}
