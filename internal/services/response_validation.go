package services

import (
	"strings"

	"github.com/yukikurage/assessment-api/internal/models"
)

// ResponseValue carries the answer channels of a response; exactly one is kept after validation.
type ResponseValue struct {
	ScaleValue   *float64
	OptionValue  *string
	OptionValues []string
	TextValue    *string
}

const (
	booleanTrue  = "TRUE"
	booleanFalse = "FALSE"
)

var booleanTokens = map[string]string{
	"true": booleanTrue, "t": booleanTrue, "yes": booleanTrue, "y": booleanTrue, "1": booleanTrue, "on": booleanTrue,
	"false": booleanFalse, "f": booleanFalse, "no": booleanFalse, "n": booleanFalse, "0": booleanFalse, "off": booleanFalse,
}

// ValidateResponseValue checks an answer against its question type and returns the normalized value.
func ValidateResponseValue(question models.Question, value ResponseValue) (ResponseValue, error) {
	switch question.Type {
	case models.QuestionTypeScale:
		if value.ScaleValue == nil {
			return ResponseValue{}, ErrScaleValueRequired
		}
		v := *value.ScaleValue
		if (question.MinScale != nil && v < *question.MinScale) || (question.MaxScale != nil && v > *question.MaxScale) {
			return ResponseValue{}, ErrScaleValueOutOfRange.WithDetails(map[string]interface{}{
				"value": v,
				"min":   question.MinScale,
				"max":   question.MaxScale,
			})
		}
		return ResponseValue{ScaleValue: &v}, nil

	case models.QuestionTypeText:
		if value.TextValue == nil || strings.TrimSpace(*value.TextValue) == "" {
			return ResponseValue{}, ErrTextValueRequired
		}
		text := strings.TrimSpace(*value.TextValue)
		return ResponseValue{TextValue: &text}, nil

	case models.QuestionTypeBoolean:
		if value.OptionValue == nil {
			return ResponseValue{}, ErrOptionValueRequired
		}
		normalized, ok := booleanTokens[strings.ToLower(strings.TrimSpace(*value.OptionValue))]
		if !ok {
			return ResponseValue{}, ErrBooleanValueInvalid.WithDetails(map[string]string{"value": *value.OptionValue})
		}
		return ResponseValue{OptionValue: &normalized}, nil

	case models.QuestionTypeSingleChoice:
		if value.OptionValue == nil || *value.OptionValue == "" {
			return ResponseValue{}, ErrOptionValueRequired
		}
		allowed := optionLookup(question)
		if !allowed[*value.OptionValue] {
			return ResponseValue{}, ErrResponseOptionInvalid.WithDetails(map[string]string{"value": *value.OptionValue})
		}
		chosen := *value.OptionValue
		return ResponseValue{OptionValue: &chosen}, nil

	case models.QuestionTypeMultiChoice:
		if len(value.OptionValues) == 0 {
			return ResponseValue{}, ErrOptionValuesRequired
		}
		allowed := optionLookup(question)
		seen := make(map[string]bool, len(value.OptionValues))
		chosen := make([]string, 0, len(value.OptionValues))
		for _, v := range value.OptionValues {
			if !allowed[v] {
				return ResponseValue{}, ErrResponseOptionInvalid.WithDetails(map[string]string{"value": v})
			}
			if seen[v] {
				continue
			}
			seen[v] = true
			chosen = append(chosen, v)
		}
		return ResponseValue{OptionValues: chosen}, nil
	}

	return ResponseValue{}, ErrUnsupportedAnswerType.WithDetails(map[string]string{"type": string(question.Type)})
}

func optionLookup(question models.Question) map[string]bool {
	values := question.OptionValues()
	allowed := make(map[string]bool, len(values))
	for _, v := range values {
		allowed[v] = true
	}
	return allowed
}
