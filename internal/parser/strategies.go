package parser

import (
	"bufio"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/conorfennell/quizdeck/internal/knol"
)

const (
	maxInlineDefinition   = 320
	maxHeadingDefinition  = 260
	maxHeadingLines       = 5
	maxSentenceDefinition = 240
)

var (
	inlineDefinition = regexp.MustCompile(`^[-*+]?\s*([A-Z][A-Za-z0-9 /&()_.:,-]{2,})\s*[:\x{2014}\x{2013}-]\s+(.{10,})$`)
	inlineMeta       = regexp.MustCompile(`(?i)\b(this section|we will|in this chapter)\b|\bexample:`)

	heading     = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	headingLine = regexp.MustCompile(`^#{1,6}\s+`)
	listItem    = regexp.MustCompile(`^[-*+]\s+`)

	paragraphBreak  = regexp.MustCompile(`\n\s*\n`)
	declarative     = regexp.MustCompile(`^([A-Z][A-Za-z0-9 /&()_.,-]{2,}?)\s+(?i:is|are)\s+(.{10,})$`)
	declarativeMeta = regexp.MustCompile(`(?i)\b(this section|we will|let's|you can)\b`)
)

// Candidate is a raw (term, definition) pair proposed by a Strategy.
type Candidate struct {
	Term       string
	Definition string
}

// Strategy proposes candidates from a markdown document.
type Strategy func(markdown string) []Candidate

// InlineDefinitions finds "Term: definition" and "Term — definition" lines,
// optionally list-bulleted.
func InlineDefinitions(markdown string) []Candidate {
	var out []Candidate
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := knol.StripEmphasis(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}
		m := inlineDefinition.FindStringSubmatch(line)
		if m == nil || inlineMeta.MatchString(line) {
			continue
		}
		term := knol.CleanText(m[1])
		def := knol.Truncate(knol.CleanText(m[2]), maxInlineDefinition)
		if term != "" && def != "" {
			out = append(out, Candidate{Term: term, Definition: def})
		}
	}
	return out
}

// HeadingDefinitions pairs each heading with the prose directly below it,
// keeping the pair only when that prose reads as a definition.
func HeadingDefinitions(markdown string) []Candidate {
	var out []Candidate
	lines := splitLines(markdown)
	for i, raw := range lines {
		m := heading.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		term := knol.CleanText(knol.StripEmphasis(m[2]))

		var def string
		for j := i + 1; j < len(lines) && j <= i+maxHeadingLines; j++ {
			l := strings.TrimSpace(lines[j])
			if l == "" {
				if def != "" {
					break
				}
				continue
			}
			if headingLine.MatchString(l) || listItem.MatchString(l) {
				break
			}
			if def != "" {
				def += " "
			}
			def += knol.StripEmphasis(l)
			if utf8.RuneCountInString(def) > maxHeadingDefinition {
				break
			}
		}
		def = knol.CleanText(def)

		if term != "" && def != "" && definitionalVerb.MatchString(def) {
			out = append(out, Candidate{Term: term, Definition: def})
		}
	}
	return out
}

// DeclarativeSentences takes the first sentence of every paragraph and keeps
// it when it has the shape "Term is ..." or "Terms are ...".
func DeclarativeSentences(markdown string) []Candidate {
	var out []Candidate
	for _, p := range paragraphBreak.Split(markdown, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sentence := strings.TrimSpace(firstSentence(p))
		m := declarative.FindStringSubmatch(sentence)
		if m == nil {
			continue
		}
		term := knol.CleanText(m[1])
		def := knol.Truncate(knol.CleanText(sentence), maxSentenceDefinition)
		if declarativeMeta.MatchString(def) {
			continue
		}
		if term != "" && def != "" {
			out = append(out, Candidate{Term: term, Definition: def})
		}
	}
	return out
}

// firstSentence cuts p after the first '.', '!' or '?' that is followed by
// whitespace.
func firstSentence(p string) string {
	for i := 0; i < len(p)-1; i++ {
		switch p[i] {
		case '.', '!', '?':
			switch p[i+1] {
			case ' ', '\t', '\n', '\r', '\f', '\v':
				return p[:i+1]
			}
		}
	}
	return p
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
