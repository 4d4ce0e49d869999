package domain

// Card is a single term/definition study unit as persisted in a deck file.
type Card struct {
	ID         string `json:"id,omitempty"`
	Term       string `json:"term" validate:"nonblank"`
	Definition string `json:"definition" validate:"nonblank"`
	Source     string `json:"source,omitempty"`
}

// Validate reports whether the card has a non-blank term and definition.
func (c Card) Validate() error {
	return validate.Struct(c)
}

// CountValidCards returns how many cards pass Validate.
func CountValidCards(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.Validate() == nil {
			n++
		}
	}
	return n
}

// CatalogEntry is the browsing projection of a deck.
type CatalogEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}
