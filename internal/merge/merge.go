// Package merge folds newly extracted cards into existing decks without
// duplicating terms.
package merge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/conorfennell/quizdeck/internal/deck"
	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/knol"
)

// Result describes the outcome of one Merge call.
type Result struct {
	DeckID  string
	Added   int
	Skipped bool // no deck matched the subcategory
	Cards   []domain.Card
}

// Engine merges cards into decks held by a Repository.
type Engine struct {
	repo   deck.Repository
	logger *slog.Logger
}

// New creates an engine over repo.
func New(repo deck.Repository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, logger: logger}
}

// Union appends the incoming cards whose normalized term is not already in
// existing. The first card seen for a term wins. Cards without an id get the
// slug of their term.
func Union(existing, incoming []domain.Card) (merged []domain.Card, added int) {
	merged = append([]domain.Card{}, existing...)
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, c := range existing {
		seen[knol.NormalizeName(c.Term)] = struct{}{}
	}
	for _, c := range incoming {
		key := knol.NormalizeName(c.Term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if c.ID == "" {
			c.ID = knol.Slug(c.Term)
		}
		merged = append(merged, c)
		added++
	}
	return merged, added
}

// FindDeck locates the deck for a category/subcategory pair. It looks for a
// deck whose normalized name equals the subcategory's, first directly under
// the category, then under category/subcategory.
func (e *Engine) FindDeck(category, subcategory string) (deck.Ref, bool, error) {
	refs, err := e.repo.List()
	if err != nil {
		return deck.Ref{}, false, fmt.Errorf("list decks: %w", err)
	}

	wanted := map[string]struct{}{}
	for _, name := range []string{subcategory, knol.NormalizeName(subcategory)} {
		wanted[knol.NormalizeName(name)] = struct{}{}
	}

	for _, parent := range []string{category, category + "/" + subcategory} {
		for _, ref := range refs {
			if ref.Parent() != parent {
				continue
			}
			if _, ok := wanted[knol.NormalizeName(ref.Name)]; ok {
				return ref, true, nil
			}
		}
	}
	return deck.Ref{}, false, nil
}

// Merge adds cards to the deck matching category/subcategory. When no deck
// matches, nothing is written and Result.Skipped is set. An unparsable deck
// is treated as empty. Existing items are written back as they were read;
// their terms only decide which incoming cards are new. The deck is
// rewritten only when a card was added.
func (e *Engine) Merge(category, subcategory string, cards []domain.Card) (Result, error) {
	ref, ok, err := e.FindDeck(category, subcategory)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Skipped: true}, nil
	}

	entries, err := e.repo.ReadEntries(ref.ID)
	if errors.Is(err, deck.ErrMalformed) {
		e.logger.Warn("Unparsable deck treated as empty", "deck", ref.ID, "error", err)
		entries = nil
	} else if err != nil {
		return Result{}, fmt.Errorf("read deck %s: %w", ref.ID, err)
	}

	known := make([]domain.Card, len(entries))
	for i, entry := range entries {
		known[i] = domain.Card{Term: entry.Term}
	}
	merged, added := Union(known, cards)
	for _, c := range merged[len(known):] {
		entry, err := deck.NewEntry(c)
		if err != nil {
			return Result{}, err
		}
		entries = append(entries, entry)
	}

	result := Result{DeckID: ref.ID, Added: added, Cards: deck.Cards(entries)}
	if added == 0 {
		return result, nil
	}

	if err := e.repo.WriteEntries(ref.ID, entries); err != nil {
		return Result{}, fmt.Errorf("write deck %s: %w", ref.ID, err)
	}
	e.logger.Info("Merged question cards into deck", "deck", ref.ID, "added", added)
	return result, nil
}
