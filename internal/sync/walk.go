package sync

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/quizdeck/internal/questions"
	"github.com/conorfennell/quizdeck/internal/scan"
)

// CategoriesPublicPrefix is the URL prefix question banks are served under.
const CategoriesPublicPrefix = "/categories"

// NoteFile is a markdown note found in the notes tree.
type NoteFile struct {
	Segments []string // category, then an optional subfolder
	File     string
	Abs      string
}

// Source is the public path recorded on cards extracted from the note.
func (n NoteFile) Source() string {
	return scan.NotePath(n.Segments, n.File)
}

// BankFile is a question bank found in the categories tree.
type BankFile struct {
	Category    string
	Subcategory string
	Abs         string
}

// Source is the public path recorded on cards merged from the bank.
func (b BankFile) Source() string {
	return strings.Join([]string{CategoriesPublicPrefix, b.Category, b.Subcategory, questions.BankFile}, "/")
}

// WalkNotes lists the markdown files directly under each category of root
// and one subfolder below it. A missing root has no notes.
func WalkNotes(root string) ([]NoteFile, error) {
	categories, err := scan.Subdirs(root)
	if err != nil {
		return nil, err
	}

	var notes []NoteFile
	for _, category := range categories {
		categoryPath := filepath.Join(root, category)
		files, err := scan.MarkdownFiles(categoryPath)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			notes = append(notes, NoteFile{
				Segments: []string{category},
				File:     f,
				Abs:      filepath.Join(categoryPath, f),
			})
		}

		subs, err := scan.Subdirs(categoryPath)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			subPath := filepath.Join(categoryPath, sub)
			files, err := scan.MarkdownFiles(subPath)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				notes = append(notes, NoteFile{
					Segments: []string{category, sub},
					File:     f,
					Abs:      filepath.Join(subPath, f),
				})
			}
		}
	}
	return notes, nil
}

// WalkBanks lists every root/<category>/<subcategory>/questions.json that
// exists.
func WalkBanks(root string) ([]BankFile, error) {
	categories, err := scan.Subdirs(root)
	if err != nil {
		return nil, err
	}

	var banks []BankFile
	for _, category := range categories {
		subs, err := scan.Subdirs(filepath.Join(root, category))
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			path := filepath.Join(root, category, sub, questions.BankFile)
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			banks = append(banks, BankFile{Category: category, Subcategory: sub, Abs: path})
		}
	}
	return banks, nil
}
