package knol

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxSlugLength bounds card ids.
const MaxSlugLength = 80

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9\s]`)
	slugDisallowed = regexp.MustCompile(`[^a-z0-9 _.,&\-/]`)
	slugJoiners    = regexp.MustCompile(`[\s/]+`)
	orderPrefix    = regexp.MustCompile(`^\d+[-_.\s]*`)
	wordSeparators = regexp.MustCompile(`[-_]+`)
	markdownExt    = regexp.MustCompile(`(?i)\.md$`)
	emphasisMarks  = regexp.MustCompile("[*_`~]")
)

// CleanText collapses whitespace runs to a single space and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// NormalizeName is the dedup and match key for terms and deck names:
// lowercased, every non-alphanumeric rune replaced by a space, whitespace
// collapsed. "CI/CD" and "CI CD" share a key.
func NormalizeName(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), " ")
	return CleanText(s)
}

// Slug builds a card id from a term, truncated to MaxSlugLength.
func Slug(s string) string {
	s = slugDisallowed.ReplaceAllString(strings.ToLower(s), "")
	s = CleanText(s)
	s = slugJoiners.ReplaceAllString(s, "-")
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
	}
	return s
}

// StripEmphasis removes markdown emphasis and code markers.
func StripEmphasis(s string) string {
	return emphasisMarks.ReplaceAllString(s, "")
}

// Truncate shortens s to max runes, replacing the tail with an ellipsis.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// TrimMarkdownExt drops a trailing ".md", in any case.
func TrimMarkdownExt(name string) string {
	return markdownExt.ReplaceAllString(name, "")
}

// TitleFromFilename turns "02-load_balancing.md" into "Load Balancing".
func TitleFromFilename(name string) string {
	bare := TrimMarkdownExt(name)
	base := orderPrefix.ReplaceAllString(bare, "")
	base = strings.TrimSpace(wordSeparators.ReplaceAllString(base, " "))
	if base == "" {
		return bare
	}
	return cases.Title(language.Und, cases.NoLower).String(CleanText(base))
}
