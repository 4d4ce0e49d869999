package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterStructValidation(questionAnswerInRange, Question{})
	return v
}

func questionAnswerInRange(sl validator.StructLevel) {
	q := sl.Current().Interface().(Question)
	if q.AnswerIndex == nil {
		return
	}
	if i := *q.AnswerIndex; i < 0 || i >= len(q.Choices) {
		sl.ReportError(q.AnswerIndex, "answerIndex", "AnswerIndex", "answerrange", "")
	}
}
