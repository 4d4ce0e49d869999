// Package sync turns the notes tree and the question banks into flashcard
// decks and keeps the browsing indexes up to date.
package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/conorfennell/quizdeck/internal/deck"
	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/knol"
	"github.com/conorfennell/quizdeck/internal/merge"
	"github.com/conorfennell/quizdeck/internal/parser"
	"github.com/conorfennell/quizdeck/internal/questions"
)

// Kinds of deck write reported to a Recorder.
const (
	KindGenerated = "generated"
	KindMerged    = "merged"
)

// Recorder receives every deck the pipeline writes.
type Recorder interface {
	DeckWritten(deckID, source, kind string, cards []domain.Card) error
	Finished(summary domain.RunSummary) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) DeckWritten(string, string, string, []domain.Card) error { return nil }
func (NopRecorder) Finished(domain.RunSummary) error                        { return nil }

// Pipeline generates decks from notes, then enriches existing decks from the
// question banks. Nil fields get defaults when Run is called.
type Pipeline struct {
	NotesRoot      string
	CategoriesRoot string
	Repo           deck.Repository
	Extractor      *parser.Extractor
	Merger         *merge.Engine
	Recorder       Recorder
	Logger         *slog.Logger
}

func (p *Pipeline) defaults() {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Extractor == nil {
		p.Extractor = parser.NewExtractor()
	}
	if p.Merger == nil {
		p.Merger = merge.New(p.Repo, p.Logger)
	}
	if p.Recorder == nil {
		p.Recorder = NopRecorder{}
	}
}

// Run executes both phases. Unreadable notes and banks are skipped with a
// warning; a failed deck write stops the run. Decks written before the
// failure stay on disk.
func (p *Pipeline) Run() (domain.RunSummary, error) {
	if p.Repo == nil {
		return domain.RunSummary{}, errors.New("pipeline has no deck repository")
	}
	p.defaults()

	var summary domain.RunSummary
	p.Logger.Info("Generating decks from notes", "notes", p.NotesRoot)
	if err := p.generate(&summary); err != nil {
		return summary, err
	}

	p.Logger.Info("Merging question bank cards", "categories", p.CategoriesRoot)
	if err := p.enrich(&summary); err != nil {
		return summary, err
	}

	if err := p.Recorder.Finished(summary); err != nil {
		return summary, fmt.Errorf("record run: %w", err)
	}
	p.Logger.Info("Pipeline complete",
		"decks_written", summary.DecksWritten,
		"cards_written", summary.CardsWritten,
		"decks_merged", summary.DecksMerged,
		"cards_merged", summary.CardsMerged,
		"skipped_merges", summary.SkippedMerges,
	)
	return summary, nil
}

func (p *Pipeline) generate(summary *domain.RunSummary) error {
	notes, err := WalkNotes(p.NotesRoot)
	if err != nil {
		return err
	}

	written := map[string]string{}
	for _, n := range notes {
		note, err := parser.ParseNoteFile(n.Abs)
		if err != nil {
			p.Logger.Warn("Could not parse note", "path", n.Abs, "error", err)
			if note.Body == "" {
				continue
			}
		}

		source := n.Source()
		cards, _ := merge.Union(nil, p.Extractor.Extract(note.Body, source))
		if len(cards) == 0 {
			p.Logger.Debug("No cards extracted", "path", n.Abs)
			continue
		}

		ref, err := deck.NewRef(n.Segments, knol.TitleFromFilename(n.File))
		if err != nil {
			p.Logger.Warn("Cannot name deck for note", "path", n.Abs, "error", err)
			continue
		}
		// The first note to claim a deck name keeps it for the run.
		if first, ok := written[ref.ID]; ok {
			p.Logger.Warn("Deck name already used by another note", "deck", ref.ID, "path", n.Abs, "kept", first)
			continue
		}
		written[ref.ID] = n.Abs
		if err := p.Repo.Write(ref.ID, cards); err != nil {
			return fmt.Errorf("write deck %s: %w", ref.ID, err)
		}
		if err := p.Recorder.DeckWritten(ref.ID, source, KindGenerated, cards); err != nil {
			return fmt.Errorf("record deck %s: %w", ref.ID, err)
		}
		summary.DecksWritten++
		summary.CardsWritten += len(cards)
		p.Logger.Info("Wrote deck", "deck", ref.ID, "cards", len(cards))
	}
	return nil
}

func (p *Pipeline) enrich(summary *domain.RunSummary) error {
	banks, err := WalkBanks(p.CategoriesRoot)
	if err != nil {
		return err
	}

	for _, b := range banks {
		bank, err := questions.Load(b.Abs)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			p.Logger.Warn("Skipping unreadable question bank", "path", b.Abs, "error", err)
			continue
		}

		source := b.Source()
		cards := questions.ExtractCards(bank)
		if len(cards) == 0 {
			continue
		}
		for i := range cards {
			cards[i].Source = source
		}

		result, err := p.Merger.Merge(b.Category, b.Subcategory, cards)
		if err != nil {
			return err
		}
		if result.Skipped {
			summary.SkippedMerges++
			continue
		}
		if result.Added == 0 {
			continue
		}
		if err := p.Recorder.DeckWritten(result.DeckID, source, KindMerged, result.Cards); err != nil {
			return fmt.Errorf("record deck %s: %w", result.DeckID, err)
		}
		summary.DecksMerged++
		summary.CardsMerged += result.Added
	}

	if summary.SkippedMerges > 0 {
		p.Logger.Info("Question banks without a matching deck", "skipped", summary.SkippedMerges)
	}
	return nil
}
