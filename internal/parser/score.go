package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	definitionalVerb = regexp.MustCompile(`(?i)\b(is|are|means|refers to|represents|defines|describes)\b`)
	metaLanguage     = regexp.MustCompile(`(?i)\b(this section|we will|let's|you can|for example)\b`)
)

// Score rates how much a definition reads like a definition of term. It is
// shared by the markdown and question-bank extractors and is pure.
func Score(term, definition string) int {
	if term == "" || definition == "" {
		return 0
	}

	score := 0

	// Ideal length 40–180 characters.
	n := utf8.RuneCountInString(definition)
	if n >= 40 && n <= 180 {
		score += 3
	} else if n >= 25 && n <= 220 {
		score += 1
	}

	// Term near the start.
	lowerDef := strings.ToLower(definition)
	firstWord := strings.Split(strings.ToLower(term), " ")[0]
	if idx := strings.Index(lowerDef, firstWord); idx == 0 {
		score += 3
	} else if idx > 0 && utf8.RuneCountInString(lowerDef[:idx]) < 40 {
		score += 1
	}

	if definitionalVerb.MatchString(definition) {
		score += 2
	}
	if metaLanguage.MatchString(definition) {
		score -= 3
	}
	if strings.HasSuffix(definition, "?") {
		score -= 2
	}
	return score
}
