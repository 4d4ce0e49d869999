package scan

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/jsonfile"
	"github.com/conorfennell/quizdeck/internal/questions"
)

// BuildQuestionIndex walks root/<category>/<subcategory>/questions.json and
// counts the well-formed questions of each bank. Subcategories without a bank
// are left out; a malformed bank counts zero.
func (s *Scanner) BuildQuestionIndex(root string) (domain.QuestionIndex, error) {
	index := domain.QuestionIndex{
		Categories:  map[string]map[string]domain.SubcategoryStats{},
		GeneratedAt: s.timestamp(),
	}

	categories, err := Subdirs(root)
	if err != nil {
		return domain.QuestionIndex{}, err
	}

	for _, category := range categories {
		subs, err := Subdirs(filepath.Join(root, category))
		if err != nil {
			return domain.QuestionIndex{}, err
		}

		index.Categories[category] = map[string]domain.SubcategoryStats{}
		for _, sub := range subs {
			path := filepath.Join(root, category, sub, questions.BankFile)
			bank, err := questions.Load(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				s.logger.Warn("Skipping unreadable question bank", "path", path, "error", err)
				index.Categories[category][sub] = domain.SubcategoryStats{Count: 0}
				continue
			}
			if bank.Invalid > 0 {
				s.logger.Debug("Excluded invalid questions", "path", path, "invalid", bank.Invalid)
			}
			index.Categories[category][sub] = domain.SubcategoryStats{Count: bank.Count()}
		}
	}
	return index, nil
}

// Questions rebuilds the question index and writes it to out.
func (s *Scanner) Questions(root, out string) (domain.QuestionIndex, error) {
	index, err := s.BuildQuestionIndex(root)
	if err != nil {
		return domain.QuestionIndex{}, err
	}
	if err := jsonfile.Write(out, index); err != nil {
		return domain.QuestionIndex{}, err
	}
	s.logger.Info("Wrote question index", "path", out, "categories", len(index.Categories))
	return index, nil
}
