package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/jsonfile"
	"github.com/conorfennell/quizdeck/internal/knol"
	"github.com/conorfennell/quizdeck/internal/parser"
)

const (
	// NotesPublicPrefix is the URL prefix notes are served under.
	NotesPublicPrefix = "/notes"
	// GeneralGroup holds notes placed directly under a category.
	GeneralGroup = "General"
)

// IsMarkdown reports whether name looks like a markdown note.
func IsMarkdown(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

// MarkdownFiles lists the markdown file names directly inside dir.
func MarkdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsMarkdown(e.Name()) {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// BuildNotesIndex groups the notes of root by category and subfolder.
func (s *Scanner) BuildNotesIndex(root string) (domain.NotesIndex, error) {
	index := domain.NotesIndex{
		Notes:       map[string]map[string][]domain.NoteEntry{},
		GeneratedAt: s.timestamp(),
	}

	categories, err := Subdirs(root)
	if err != nil {
		return domain.NotesIndex{}, err
	}

	for _, category := range categories {
		categoryPath := filepath.Join(root, category)
		groups := map[string][]domain.NoteEntry{}

		files, err := MarkdownFiles(categoryPath)
		if err != nil {
			return domain.NotesIndex{}, err
		}
		if len(files) > 0 {
			groups[GeneralGroup] = s.noteEntries(categoryPath, []string{category}, files)
		}

		subs, err := Subdirs(categoryPath)
		if err != nil {
			return domain.NotesIndex{}, err
		}
		for _, sub := range subs {
			subPath := filepath.Join(categoryPath, sub)
			subFiles, err := MarkdownFiles(subPath)
			if err != nil {
				return domain.NotesIndex{}, err
			}
			groups[sub] = s.noteEntries(subPath, []string{category, sub}, subFiles)
		}
		index.Notes[category] = groups
	}
	return index, nil
}

func (s *Scanner) noteEntries(dir string, segments []string, files []string) []domain.NoteEntry {
	entries := make([]domain.NoteEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, domain.NoteEntry{
			Title: s.noteTitle(filepath.Join(dir, f)),
			Path:  NotePath(segments, f),
		})
	}
	return entries
}

// noteTitle prefers the front matter title, then the first top-level
// heading, then the file name.
func (s *Scanner) noteTitle(path string) string {
	fallback := knol.TrimMarkdownExt(filepath.Base(path))
	note, err := parser.ParseNoteFile(path)
	if err != nil {
		s.logger.Warn("Could not read note front matter", "path", path, "error", err)
	}
	if note.Title != "" {
		return note.Title
	}
	if h := parser.FirstHeading(note.Body); h != "" {
		return h
	}
	return fallback
}

// NotePath is the public path of a note file.
func NotePath(segments []string, file string) string {
	return NotesPublicPrefix + "/" + strings.Join(append(append([]string(nil), segments...), file), "/")
}

// Notes rebuilds the notes index and writes it to out.
func (s *Scanner) Notes(root, out string) (domain.NotesIndex, error) {
	index, err := s.BuildNotesIndex(root)
	if err != nil {
		return domain.NotesIndex{}, err
	}
	if err := jsonfile.Write(out, index); err != nil {
		return domain.NotesIndex{}, err
	}
	s.logger.Info("Wrote notes index", "path", out, "categories", len(index.Notes))
	return index, nil
}
