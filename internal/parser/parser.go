// Package parser mines term/definition flashcards from markdown notes.
package parser

import (
	"path"
	"sort"

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/knol"
)

// MaxCardsPerDocument caps the cards a single document can yield.
const MaxCardsPerDocument = 50

// DefaultStrategies are run, in order, by NewExtractor when none are given.
var DefaultStrategies = []Strategy{
	InlineDefinitions,
	HeadingDefinitions,
	DeclarativeSentences,
}

// Extractor pools the candidates of its strategies and reduces them to the
// best definition per term.
type Extractor struct {
	strategies []Strategy
	maxCards   int
}

// NewExtractor builds an extractor over the given strategies.
func NewExtractor(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Extractor{strategies: strategies, maxCards: MaxCardsPerDocument}
}

type scored struct {
	term       string
	definition string
	score      int
}

// Extract returns at most MaxCardsPerDocument cards for one document, best
// scoring first. source is recorded on every card.
func (e *Extractor) Extract(markdown, source string) []domain.Card {
	var pool []Candidate
	for _, strategy := range e.strategies {
		pool = append(pool, strategy(markdown)...)
	}

	// Keyed by term; order of first appearance breaks score ties.
	byTerm := make(map[string]int)
	var best []scored
	for _, c := range pool {
		t := knol.CleanText(c.Term)
		d := knol.CleanText(c.Definition)
		if t == "" || d == "" {
			continue
		}
		sc := Score(t, d)
		if sc <= 0 {
			continue
		}
		if i, ok := byTerm[t]; ok {
			if sc > best[i].score {
				best[i] = scored{term: t, definition: d, score: sc}
			}
			continue
		}
		byTerm[t] = len(best)
		best = append(best, scored{term: t, definition: d, score: sc})
	}

	sort.SliceStable(best, func(i, j int) bool { return best[i].score > best[j].score })
	if len(best) > e.maxCards {
		best = best[:e.maxCards]
	}

	fallbackID := knol.Slug(knol.TrimMarkdownExt(path.Base(source)))
	cards := make([]domain.Card, 0, len(best))
	for _, b := range best {
		id := knol.Slug(b.term)
		if id == "" {
			id = fallbackID
		}
		cards = append(cards, domain.Card{
			ID:         id,
			Term:       b.term,
			Definition: b.definition,
			Source:     source,
		})
	}
	return cards
}

var defaultExtractor = NewExtractor()

// Extract runs the default strategies over markdown.
func Extract(markdown, source string) []domain.Card {
	return defaultExtractor.Extract(markdown, source)
}
