package questions

import (
	"regexp"
	"strings"

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/knol"
	"github.com/conorfennell/quizdeck/internal/parser"
)

// minScore is stricter than the markdown extractor's because question text is
// noisier.
const minScore = 1

var (
	termPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^What is\s+(.+?)\?$`),
		regexp.MustCompile(`(?i)^Which of the following (?:best )?describes\s+(.+?)\?$`),
		regexp.MustCompile(`(?i)^(.+?)\s+(?:is|are|refers to|means)\b`),
	}
	termPunctuation = regexp.MustCompile("^[\"'`(]+|[\"'`)]+$")
)

// ExtractCard derives a card from a definitional question. The term comes
// from the prompt; the definition from the explanation, falling back to the
// correct choice. ok is false when the prompt is not definitional or the
// pair scores too low.
func ExtractCard(q domain.Question) (card domain.Card, ok bool) {
	term := extractTerm(q.Text())
	if term == "" {
		return domain.Card{}, false
	}

	def := strings.TrimSpace(q.Explanation)
	if def == "" {
		if choice, found := q.CorrectChoice(); found {
			def = strings.TrimSpace(choice)
		}
	}
	def = knol.CleanText(def)
	if def == "" {
		return domain.Card{}, false
	}

	if parser.Score(term, def) <= minScore {
		return domain.Card{}, false
	}
	return domain.Card{
		ID:         knol.Slug(term),
		Term:       term,
		Definition: def,
	}, true
}

// ExtractCards runs ExtractCard over every question of a bank.
func ExtractCards(bank Bank) []domain.Card {
	var cards []domain.Card
	for _, q := range bank.Questions {
		if c, ok := ExtractCard(q); ok {
			cards = append(cards, c)
		}
	}
	return cards
}

func extractTerm(prompt string) string {
	for _, p := range termPatterns {
		if m := p.FindStringSubmatch(prompt); m != nil {
			return knol.CleanText(termPunctuation.ReplaceAllString(m[1], ""))
		}
	}
	return ""
}
