package survey

import "github.com/aferrand/survey-sim/model"

// Compile turns raw field descriptors into compiled questions, one per
// recognized descriptor, in input order. Descriptors with an unknown
// input type are skipped without error. A missing field name still
// yields a question, just with an empty prompt.
func Compile(fields []model.Field) []model.Question {
	questions := []model.Question{}

	for _, f := range fields {
		switch f.InputType {
		case "text":
			questions = append(questions, model.Question{
				Text:       f.Name,
				Kind:       model.KindText,
				Validation: lengthValidation(f),
			})

		case "email":
			questions = append(questions, model.Question{
				Text: f.Name,
				Kind: model.KindEmail,
			})

		case "number":
			// a number field is just an integer question with no bounds
			questions = append(questions, model.Question{
				Text: f.Name,
				Kind: model.KindInteger,
			})

		case "integer":
			q := model.Question{
				Text: f.Name,
				Kind: model.KindInteger,
			}
			if f.MinValue != nil || f.MaxValue != nil {
				q.Validation = &model.Validation{Min: f.MinValue, Max: f.MaxValue}
			}
			questions = append(questions, q)

		case "multiple_choice":
			options := f.Choices
			if options == nil {
				options = []string{}
			}
			questions = append(questions, model.Question{
				Text:    f.Name,
				Kind:    model.KindMultipleChoice,
				Options: options,
			})

		case "textarea":
			questions = append(questions, model.Question{
				Text:       f.Name,
				Kind:       model.KindTextarea,
				Validation: lengthValidation(f),
			})
		}
	}

	return questions
}

func lengthValidation(f model.Field) *model.Validation {
	if f.ExpectedLength == nil {
		return nil
	}
	return &model.Validation{MaxLength: f.ExpectedLength}
}
