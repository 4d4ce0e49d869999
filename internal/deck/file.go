package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/jsonfile"
)

const deckExt = ".json"

// FileRepository keeps decks as JSON arrays under
// <root>/<category>/[<sub>/]<name>.json.
type FileRepository struct {
	root   string
	logger *slog.Logger
}

// NewFileRepository creates a repository rooted at root. The directory is
// not created until the first write.
func NewFileRepository(root string, logger *slog.Logger) *FileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRepository{root: root, logger: logger}
}

// Root returns the repository's directory.
func (r *FileRepository) Root() string {
	return r.root
}

// List returns every deck file found directly under a category directory or
// one subfolder below it. Files sitting at the root, such as the catalog,
// are not decks.
func (r *FileRepository) List() ([]Ref, error) {
	categories, err := os.ReadDir(r.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read deck root %s: %w", r.root, err)
	}

	var refs []Ref
	for _, category := range categories {
		if !category.IsDir() || hidden(category.Name()) {
			continue
		}
		categoryPath := filepath.Join(r.root, category.Name())
		entries, err := os.ReadDir(categoryPath)
		if err != nil {
			return nil, fmt.Errorf("read deck category %s: %w", categoryPath, err)
		}

		refs = append(refs, deckFiles([]string{category.Name()}, entries)...)

		for _, sub := range entries {
			if !sub.IsDir() || hidden(sub.Name()) {
				continue
			}
			subPath := filepath.Join(categoryPath, sub.Name())
			subEntries, err := os.ReadDir(subPath)
			if err != nil {
				return nil, fmt.Errorf("read deck folder %s: %w", subPath, err)
			}
			refs = append(refs, deckFiles([]string{category.Name(), sub.Name()}, subEntries)...)
		}
	}
	return refs, nil
}

func deckFiles(segments []string, entries []fs.DirEntry) []Ref {
	var refs []Ref
	for _, e := range entries {
		if e.IsDir() || !isDeckFile(e.Name()) {
			continue
		}
		ref, err := NewRef(segments, e.Name()[:len(e.Name())-len(deckExt)])
		if err != nil {
			continue
		}
		ref.File = strings.Join(append(append([]string(nil), segments...), e.Name()), "/")
		refs = append(refs, ref)
	}
	return refs
}

func isDeckFile(name string) bool {
	return len(name) > len(deckExt) &&
		strings.EqualFold(name[len(name)-len(deckExt):], deckExt) &&
		!hidden(name)
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Read loads the cards of a deck.
func (r *FileRepository) Read(id string) ([]domain.Card, error) {
	entries, err := r.ReadEntries(id)
	if err != nil {
		return nil, err
	}
	cards := Cards(entries)
	if dropped := len(entries) - len(cards); dropped > 0 {
		r.logger.Warn("Dropped non-card entries from deck", "deck", id, "dropped", dropped)
	}
	return cards, nil
}

// ReadEntries loads a deck's items without interpreting them.
func (r *FileRepository) ReadEntries(id string) ([]Entry, error) {
	path, err := r.resolve(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read deck %s: %w", id, err)
	}

	entries, err := DecodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("deck %s: %w", id, err)
	}
	return entries, nil
}

// Write replaces a deck's content, creating directories as needed.
func (r *FileRepository) Write(id string, cards []domain.Card) error {
	path, err := r.resolve(id)
	if err != nil {
		return err
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return jsonfile.Write(path, cards)
}

// WriteEntries replaces a deck's content with entries, each written as read.
func (r *FileRepository) WriteEntries(id string, entries []Entry) error {
	path, err := r.resolve(id)
	if err != nil {
		return err
	}
	items := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Raw)
	}
	return jsonfile.Write(path, items)
}

// resolve maps an id to its file, honouring an existing file whose extension
// differs only in case.
func (r *FileRepository) resolve(id string) (string, error) {
	ref, err := ParseID(id)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(append([]string{r.root}, ref.Segments...)...)
	path := filepath.Join(dir, ref.Name+deckExt)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return path, nil
	}
	for _, e := range entries {
		if !e.IsDir() && isDeckFile(e.Name()) && e.Name()[:len(e.Name())-len(deckExt)] == ref.Name {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return path, nil
}
