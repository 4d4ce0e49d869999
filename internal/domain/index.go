package domain

// SubcategoryStats is the per-subcategory entry of the question index.
type SubcategoryStats struct {
	Count int `json:"count"`
}

// QuestionIndex maps category -> subcategory -> stats. It is rebuilt from
// scratch on every scan.
type QuestionIndex struct {
	Categories  map[string]map[string]SubcategoryStats `json:"categories"`
	GeneratedAt string                                 `json:"generatedAt"`
}

// NoteEntry is a single markdown document in the notes index.
type NoteEntry struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// NotesIndex maps category -> group -> notes.
type NotesIndex struct {
	Notes       map[string]map[string][]NoteEntry `json:"notes"`
	GeneratedAt string                            `json:"generatedAt"`
}

// RunSummary reports what one notes pipeline run produced.
type RunSummary struct {
	DecksWritten  int `json:"decks_written"`
	CardsWritten  int `json:"cards_written"`
	DecksMerged   int `json:"decks_merged"`
	CardsMerged   int `json:"cards_merged"`
	SkippedMerges int `json:"skipped_merges"`
}
