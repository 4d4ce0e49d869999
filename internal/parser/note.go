package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Note is a markdown document split from its YAML front matter.
type Note struct {
	Title string // front matter "title", if any
	Body  string
}

type noteMeta struct {
	Title string `yaml:"title"`
}

// ParseNote separates front matter from the body. A document without front
// matter is returned whole. Front matter that fails to parse is left in the
// body together with the returned error.
func ParseNote(r io.Reader) (Note, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return Note{}, err
	}

	var meta noteMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Note{Body: string(source)}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return Note{Title: strings.TrimSpace(meta.Title), Body: string(body)}, nil
}

// ParseNoteFile reads a note from disk.
func ParseNoteFile(path string) (Note, error) {
	file, err := os.Open(path)
	if err != nil {
		return Note{}, err
	}
	defer file.Close()

	return ParseNote(file)
}

// FirstHeading returns the text of the first level-1 heading in body, or "".
func FirstHeading(body string) string {
	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(inlineText(h, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}
