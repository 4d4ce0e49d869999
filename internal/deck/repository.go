// Package deck stores flashcard decks. A deck's identity is its location:
// "category/name" or "category/sub/name".
package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/jsonfile"
)

var (
	// ErrNotFound is returned when no deck exists for an id.
	ErrNotFound = errors.New("deck not found")
	// ErrMalformed is returned when a deck's content is not valid JSON.
	ErrMalformed = errors.New("malformed deck")
	// ErrInvalidID is returned for ids outside the category[/sub]/name shape.
	ErrInvalidID = errors.New("invalid deck id")
)

// Repository is the storage seen by the merge engine and the pipeline.
// ReadEntries and WriteEntries round-trip a deck's items untouched, including
// fields and items a Card cannot hold.
type Repository interface {
	List() ([]Ref, error)
	Read(id string) ([]domain.Card, error)
	Write(id string, cards []domain.Card) error
	ReadEntries(id string) ([]Entry, error)
	WriteEntries(id string, entries []Entry) error
}

// Entry is one item of a deck file as stored. Term is the item's "term"
// string, empty when it has none.
type Entry struct {
	Raw  json.RawMessage
	Term string
}

// NewEntry encodes a card as an entry.
func NewEntry(c domain.Card) (Entry, error) {
	raw, err := jsonfile.Marshal(c)
	if err != nil {
		return Entry{}, fmt.Errorf("encode card %q: %w", c.Term, err)
	}
	return Entry{Raw: raw, Term: c.Term}, nil
}

// Card decodes the entry. It reports false for null and for items that do
// not decode as a card.
func (e Entry) Card() (domain.Card, bool) {
	var c domain.Card
	if len(e.Raw) == 0 || string(e.Raw) == "null" {
		return c, false
	}
	if err := json.Unmarshal(e.Raw, &c); err != nil {
		return c, false
	}
	return c, true
}

// Cards returns the entries that decode as cards, in order.
func Cards(entries []Entry) []domain.Card {
	cards := make([]domain.Card, 0, len(entries))
	for _, e := range entries {
		if c, ok := e.Card(); ok {
			cards = append(cards, c)
		}
	}
	return cards
}

// Ref locates one deck.
type Ref struct {
	ID       string
	Segments []string // category, then an optional subfolder
	Name     string
	File     string // slash separated path of the deck file, relative to the repository root
}

// Title renders the ref for browsing, e.g. "Cloud / AWS / S3".
func (r Ref) Title() string {
	return strings.Join(append(append([]string(nil), r.Segments...), r.Name), " / ")
}

// Parent is the slash-joined directory portion of the id.
func (r Ref) Parent() string {
	return strings.Join(r.Segments, "/")
}

// NewRef builds a ref for a deck named name under the given segments.
func NewRef(segments []string, name string) (Ref, error) {
	if len(segments) < 1 || len(segments) > 2 {
		return Ref{}, fmt.Errorf("%w: need a category and at most one subfolder", ErrInvalidID)
	}
	for _, s := range append(append([]string(nil), segments...), name) {
		if !validSegment(s) {
			return Ref{}, fmt.Errorf("%w: bad segment %q", ErrInvalidID, s)
		}
	}
	id := strings.Join(append(append([]string(nil), segments...), name), "/")
	return Ref{
		ID:       id,
		Segments: append([]string(nil), segments...),
		Name:     name,
		File:     id + ".json",
	}, nil
}

// ParseID splits an id into its ref.
func ParseID(id string) (Ref, error) {
	parts := strings.Split(id, "/")
	if len(parts) < 2 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return NewRef(parts[:len(parts)-1], parts[len(parts)-1])
}

func validSegment(s string) bool {
	if strings.TrimSpace(s) == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}

// DecodeEntries parses deck file content keeping every array item as is.
// Invalid JSON yields ErrMalformed. Valid JSON that is not an array has no
// entries.
func DecodeEntries(data []byte) ([]Entry, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return []Entry{}, nil
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var head struct {
			Term string `json:"term"`
		}
		// Items that are not objects, or whose term is not a string, keep
		// an empty Term.
		_ = json.Unmarshal(item, &head)
		entries = append(entries, Entry{Raw: item, Term: head.Term})
	}
	return entries, nil
}

// Decode parses deck file content. Invalid JSON yields ErrMalformed. Valid
// JSON that is not an array is an empty deck. Array items that do not decode
// as a card are dropped and counted.
func Decode(data []byte) (cards []domain.Card, dropped int, err error) {
	entries, err := DecodeEntries(data)
	if err != nil {
		return nil, 0, err
	}
	cards = Cards(entries)
	return cards, len(entries) - len(cards), nil
}
