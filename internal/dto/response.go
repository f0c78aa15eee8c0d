package dto

import (
	"github.com/yukikurage/assessment-api/internal/services"
)

// UpsertResponseRequest carries one answer; which value field applies depends on the question type.
type UpsertResponseRequest struct {
	AssignmentID       uint64   `json:"assignment_id" validate:"required"`
	TemplateQuestionID uint64   `json:"template_question_id" validate:"required"`
	ScaleValue         *float64 `json:"scale_value"`
	OptionValue        *string  `json:"option_value"`
	OptionValues       []string `json:"option_values"`
	TextValue          *string  `json:"text_value"`
}

func (r UpsertResponseRequest) ToInput(sessionID uint64) services.UpsertResponseInput {
	return services.UpsertResponseInput{
		SessionID:          sessionID,
		AssignmentID:       r.AssignmentID,
		TemplateQuestionID: r.TemplateQuestionID,
		Value: services.ResponseValue{
			ScaleValue:   r.ScaleValue,
			OptionValue:  r.OptionValue,
			OptionValues: r.OptionValues,
			TextValue:    r.TextValue,
		},
	}
}

type BulkUpsertResponsesRequest struct {
	Responses []UpsertResponseRequest `json:"responses" validate:"required,min=1,max=500,dive"`
}

func (r BulkUpsertResponsesRequest) ToInputs(sessionID uint64) []services.UpsertResponseInput {
	inputs := make([]services.UpsertResponseInput, len(r.Responses))
	for i, item := range r.Responses {
		inputs[i] = item.ToInput(sessionID)
	}
	return inputs
}
