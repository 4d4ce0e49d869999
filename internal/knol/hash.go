package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/quizdeck/internal/domain"
)

// Normalize renders a card's content in a canonical form. Each field is
// trimmed, lowercased and has its line endings normalised before joining.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	// Newline separation keeps "ab"+"c" and "a"+"bc" apart.
	return normalizePart(card.Term) + "\n" + normalizePart(card.Definition)
}

// Hash returns the SHA-256 hex digest of a deck's normalized content.
// Ids and sources are ignored, so two decks teaching the same cards in the
// same order hash equal.
func Hash(cards []domain.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = Normalize(c)
	}
	hashBytes := sha256.Sum256([]byte(strings.Join(parts, "\n\n")))
	return fmt.Sprintf("%x", hashBytes)
}
