package domain

import (
	"encoding/json"
	"testing"
)

func TestQuestionValidate(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{
			name:  "well formed",
			input: `{"question":"What is DNS?","choices":["a","b"],"answerIndex":1}`,
			valid: true,
		},
		{
			name:  "empty prompt is still a prompt",
			input: `{"question":"","choices":["a","b"],"answerIndex":0}`,
			valid: true,
		},
		{
			name:  "missing answerIndex",
			input: `{"question":"Q","choices":["a","b"]}`,
			valid: false,
		},
		{
			name:  "answerIndex out of range",
			input: `{"question":"Q","choices":["a","b"],"answerIndex":2}`,
			valid: false,
		},
		{
			name:  "negative answerIndex",
			input: `{"question":"Q","choices":["a","b"],"answerIndex":-1}`,
			valid: false,
		},
		{
			name:  "single choice",
			input: `{"question":"Q","choices":["a"],"answerIndex":0}`,
			valid: false,
		},
		{
			name:  "missing prompt",
			input: `{"choices":["a","b"],"answerIndex":0}`,
			valid: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var q Question
			if err := json.Unmarshal([]byte(tc.input), &q); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			err := q.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid question, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected invalid question, got nil error")
			}
		})
	}
}

func TestCountValidCards(t *testing.T) {
	cards := []Card{
		{Term: "Go", Definition: "A programming language."},
		{Term: "  ", Definition: "blank term"},
		{Term: "Rust", Definition: ""},
		{Term: "Zig", Definition: "Another language."},
	}
	if got := CountValidCards(cards); got != 2 {
		t.Errorf("expected 2 valid cards, got %d", got)
	}
}

func TestCorrectChoice(t *testing.T) {
	idx := 1
	q := Question{Choices: []string{"a", "b"}, AnswerIndex: &idx}
	choice, ok := q.CorrectChoice()
	if !ok || choice != "b" {
		t.Errorf("expected (b, true), got (%q, %v)", choice, ok)
	}

	q.AnswerIndex = nil
	if _, ok := q.CorrectChoice(); ok {
		t.Error("expected no choice without an answer index")
	}
}
