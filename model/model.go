package model

import "errors"

// ErrInvalidIndex signals a question index outside a survey's question range.
var ErrInvalidIndex = errors.New("question index out of range")

// Schema is the raw uploaded field schema, before compilation.
type Schema struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field describes one desired question in an uploaded schema.
// Optional constraints stay nil when the schema omits them.
type Field struct {
	Name           string   `json:"field_name"`
	InputType      string   `json:"input_type"`
	ExpectedLength *int     `json:"expected_length"`
	MinValue       *int     `json:"min_value"`
	MaxValue       *int     `json:"max_value"`
	Choices        []string `json:"choices"`
}

// QuestionKind is the closed set of compiled question kinds.
type QuestionKind string

const (
	KindText           QuestionKind = "text"
	KindEmail          QuestionKind = "email"
	KindInteger        QuestionKind = "integer"
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindTextarea       QuestionKind = "textarea"
)

// Question is a compiled survey question, immutable once created.
// Validation is present only for kinds that carry constraints,
// Options only for multiple choice.
type Question struct {
	Text       string       `json:"question"`
	Kind       QuestionKind `json:"type"`
	Validation *Validation  `json:"validation,omitempty"`
	Options    []string     `json:"options,omitempty"`
}

// Validation holds the per-kind constraint payload. A nil field means
// "no limit on that side", never zero.
type Validation struct {
	MaxLength *int `json:"maxLength,omitempty"`
	Min       *int `json:"min,omitempty"`
	Max       *int `json:"max,omitempty"`
}

type Survey struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Verdict is the validator's outcome for one submitted answer.
// NextIndex is set only when the answer is valid and more questions remain.
type Verdict struct {
	Valid     bool `json:"valid"`
	NextIndex *int `json:"next_index,omitempty"`
}
