package scan

import (
	"fmt"
	"strings"

	"github.com/conorfennell/quizdeck/internal/deck"
	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/jsonfile"
)

// BuildDeckCatalog lists every deck in repo with its count of valid cards.
// Decks that fail to read are skipped. Entry paths are publicPrefix joined
// with the deck's file location.
func (s *Scanner) BuildDeckCatalog(repo deck.Repository, publicPrefix string) ([]domain.CatalogEntry, error) {
	refs, err := repo.List()
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	prefix := strings.TrimSuffix(publicPrefix, "/")
	catalog := make([]domain.CatalogEntry, 0, len(refs))
	for _, ref := range refs {
		cards, err := repo.Read(ref.ID)
		if err != nil {
			s.logger.Warn("Invalid deck skipped", "deck", ref.ID, "error", err)
			continue
		}
		catalog = append(catalog, domain.CatalogEntry{
			ID:    ref.ID,
			Title: ref.Title(),
			Path:  prefix + "/" + ref.File,
			Count: domain.CountValidCards(cards),
		})
	}
	return catalog, nil
}

// Flashcards rebuilds the deck catalog and writes it to out.
func (s *Scanner) Flashcards(repo deck.Repository, publicPrefix, out string) ([]domain.CatalogEntry, error) {
	catalog, err := s.BuildDeckCatalog(repo, publicPrefix)
	if err != nil {
		return nil, err
	}
	if err := jsonfile.Write(out, catalog); err != nil {
		return nil, err
	}
	s.logger.Info("Wrote deck catalog", "path", out, "decks", len(catalog))
	return catalog, nil
}
