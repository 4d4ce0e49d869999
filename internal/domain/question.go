package domain

import "strings"

// Question is one multiple-choice entry of a question bank.
// Prompt and AnswerIndex are pointers so a missing key can be told apart
// from an empty or zero value.
type Question struct {
	Prompt      *string  `json:"question" validate:"required"`
	Choices     []string `json:"choices" validate:"min=2"`
	AnswerIndex *int     `json:"answerIndex" validate:"required"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
}

// Validate checks the question shape: a prompt, at least two choices and an
// answer index inside the choices.
func (q Question) Validate() error {
	return validate.Struct(q)
}

// Text returns the trimmed prompt, or "" when the prompt is missing.
func (q Question) Text() string {
	if q.Prompt == nil {
		return ""
	}
	return strings.TrimSpace(*q.Prompt)
}

// CorrectChoice returns the choice selected by AnswerIndex.
func (q Question) CorrectChoice() (string, bool) {
	if q.AnswerIndex == nil {
		return "", false
	}
	i := *q.AnswerIndex
	if i < 0 || i >= len(q.Choices) {
		return "", false
	}
	return q.Choices[i], true
}
