// Package questions reads multiple-choice question banks and derives
// flashcards from definitional questions.
package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/conorfennell/quizdeck/internal/domain"
)

// BankFile is the question bank file name inside a subcategory directory.
const BankFile = "questions.json"

// ErrMalformed is returned when a bank is not valid JSON or not an array.
var ErrMalformed = errors.New("malformed question bank")

// Bank is the parsed content of one question bank. Only questions passing
// domain.Question.Validate are kept; the rest are counted in Invalid.
type Bank struct {
	Questions []domain.Question
	Invalid   int
}

// Count is the number of well-formed questions.
func (b Bank) Count() int {
	return len(b.Questions)
}

// Load reads and decodes a bank file. A missing file surfaces as an error
// satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, err
	}
	bank, err := Decode(data)
	if err != nil {
		return Bank{}, fmt.Errorf("%s: %w", path, err)
	}
	return bank, nil
}

// Decode parses bank content. Items that are not valid questions are
// counted in Invalid.
func Decode(data []byte) (Bank, error) {
	if !json.Valid(data) {
		return Bank{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Bank{}, fmt.Errorf("%w: not an array", ErrMalformed)
	}

	var bank Bank
	for _, item := range items {
		var q domain.Question
		if err := json.Unmarshal(item, &q); err != nil {
			bank.Invalid++
			continue
		}
		if err := q.Validate(); err != nil {
			bank.Invalid++
			continue
		}
		bank.Questions = append(bank.Questions, q)
	}
	return bank, nil
}
