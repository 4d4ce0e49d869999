// Package scan rebuilds the browsing indexes from the content trees. Every
// scan re-validates the raw files and rewrites its output in full.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
)

// TimestampFormat matches the millisecond ISO-8601 stamps the UI expects.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Scanner holds what the individual scans share.
type Scanner struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner logging to logger.
func New(logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scanner{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) timestamp() string {
	return s.now().UTC().Format(TimestampFormat)
}

// Subdirs lists the directory names directly under dir, sorted. Hidden
// directories such as .git are ignored and a missing dir has none.
func Subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
