package survey

import (
	"encoding/json"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/aferrand/survey-sim/model"
)

// local@domain.tld shape, nothing more: no '@' inside either side,
// at least one '.' after the '@'
var reEmail = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// CheckAnswer validates the answer against the question at index and
// computes the verdict. NextIndex is reported only while more questions
// remain. The survey itself is never touched.
func CheckAnswer(sv model.Survey, index int, answer any) (model.Verdict, error) {
	if index < 0 || index >= len(sv.Questions) {
		return model.Verdict{}, model.ErrInvalidIndex
	}

	verdict := model.Verdict{Valid: Validate(sv.Questions[index], answer)}
	if verdict.Valid {
		if next := index + 1; next < len(sv.Questions) {
			verdict.NextIndex = &next
		}
	}
	return verdict, nil
}

// Validate reports whether answer satisfies the question's kind and
// constraints. The type check is strict: numeric strings are not
// integers, and no normalization is applied to choice answers.
func Validate(q model.Question, answer any) bool {
	switch q.Kind {
	case model.KindInteger:
		n, ok := intValue(answer)
		if !ok {
			return false
		}
		if v := q.Validation; v != nil {
			if v.Min != nil && n < int64(*v.Min) {
				return false
			}
			if v.Max != nil && n > int64(*v.Max) {
				return false
			}
		}
		return true

	case model.KindText, model.KindTextarea:
		s, ok := answer.(string)
		if !ok {
			return false
		}
		if v := q.Validation; v != nil && v.MaxLength != nil {
			return utf8.RuneCountInString(s) <= *v.MaxLength
		}
		return true

	case model.KindEmail:
		s, ok := answer.(string)
		return ok && reEmail.MatchString(s)

	case model.KindMultipleChoice:
		s, ok := answer.(string)
		if !ok {
			return false
		}
		for _, option := range q.Options {
			if s == option {
				return true
			}
		}
		return false
	}

	return false
}

// intValue extracts an integral answer value. Decoders hand numbers over
// either as json.Number (UseNumber) or float64; both are accepted as long
// as there is no fractional part. Strings never qualify.
func intValue(answer any) (int64, bool) {
	switch n := answer.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		v, err := n.Int64()
		return v, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}
