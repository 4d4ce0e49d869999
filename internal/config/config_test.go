package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) returned an unexpected error: %v", args, err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(flags(t), "")
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.Notes != "notes" || cfg.Flashcards != filepath.Join("data", "flashcards") {
		t.Errorf("unexpected directories %+v", cfg)
	}
	if cfg.Public != "/data/flashcards" || cfg.Addr != ":8080" || cfg.DB != "" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("expected history limit 10, got %d", cfg.HistoryLimit)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quizdeck.yaml")
	yaml := "root: /srv/quiz\nnotes: study\nlog_level: warn\naddr: localhost:9000\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("QUIZDECK_LOG_LEVEL", "error")
	t.Setenv("QUIZDECK_HISTORY_LIMIT", "3")

	cfg, err := Load(flags(t, "--addr", ":7000", "--db", "ledger.db"), path)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"file value resolves against root", cfg.Notes, filepath.Join("/srv/quiz", "study")},
		{"default resolves against file root", cfg.Categories, filepath.Join("/srv/quiz", "categories")},
		{"env beats file", cfg.LogLevel, "error"},
		{"flag beats file", cfg.Addr, ":7000"},
		{"flag path resolves against root", cfg.DB, filepath.Join("/srv/quiz", "ledger.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
	if cfg.HistoryLimit != 3 {
		t.Errorf("expected env history limit 3, got %d", cfg.HistoryLimit)
	}
}

func TestLoadWithoutFlags(t *testing.T) {
	t.Setenv("QUIZDECK_NOTES", "/abs/notes")
	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.Notes != "/abs/notes" {
		t.Errorf("expected absolute path to be kept, got %q", cfg.Notes)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad log level", []string{"--log-level", "loud"}},
		{"bad log format", []string{"--log-format", "xml"}},
		{"bad address", []string{"--addr", "nowhere"}},
		{"relative public prefix", []string{"--public", "data/flashcards"}},
		{"public prefix over notes", []string{"--public", "/notes"}},
		{"public prefix over notes with slash", []string{"--public", "/notes/"}},
		{"public prefix over categories with slash", []string{"--public", "/categories//"}},
		{"zero history", []string{"--history-limit", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(flags(t, tt.args...), ""); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadTrimsPublicPrefix(t *testing.T) {
	tests := []struct {
		public string
		want   string
	}{
		{"/data/flashcards/", "/data/flashcards"},
		{"/decks", "/decks"},
		{"/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.public, func(t *testing.T) {
			cfg, err := Load(flags(t, "--public", tt.public), "")
			if err != nil {
				t.Fatalf("Load() returned an unexpected error: %v", err)
			}
			if cfg.Public != tt.want {
				t.Errorf("expected public prefix %q, got %q", tt.want, cfg.Public)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestOutputPaths(t *testing.T) {
	cfg := Defaults()
	cfg.Data = "/d"
	cfg.Flashcards = "/f"
	if got := cfg.QuestionIndexPath(); got != filepath.Join("/d", "index.json") {
		t.Errorf("QuestionIndexPath() = %q", got)
	}
	if got := cfg.NotesIndexPath(); got != filepath.Join("/d", "notes_index.json") {
		t.Errorf("NotesIndexPath() = %q", got)
	}
	if got := cfg.CatalogPath(); got != filepath.Join("/f", "index.json") {
		t.Errorf("CatalogPath() = %q", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Defaults()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "deck", "DevOps/Docker")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered, got %s", out)
	}
	if !strings.Contains(out, `"deck":"DevOps/Docker"`) {
		t.Errorf("expected JSON output, got %s", out)
	}
}
