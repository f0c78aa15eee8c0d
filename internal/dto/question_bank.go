package dto

import (
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/services"
)

type CreateQuestionBankRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type OptionRequest struct {
	Value string `json:"value" validate:"required,max=255"`
	Label string `json:"label" validate:"max=255"`
}

type CreateOptionSetRequest struct {
	Name    string          `json:"name" validate:"required,max=255"`
	Options []OptionRequest `json:"options" validate:"required,min=1,dive"`
}

type ReplaceOptionsRequest struct {
	Options []OptionRequest `json:"options" validate:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	Text        string              `json:"text" validate:"required"`
	Type        models.QuestionType `json:"type" validate:"required,oneof=SCALE TEXT MULTI_CHOICE SINGLE_CHOICE BOOLEAN"`
	MinScale    *float64            `json:"min_scale"`
	MaxScale    *float64            `json:"max_scale"`
	OptionSetID *uint64             `json:"option_set_id"`
	Options     []OptionRequest     `json:"options" validate:"omitempty,dive"`
}

func (r CreateQuestionRequest) ToInput(bankID uint64) services.CreateQuestionInput {
	return services.CreateQuestionInput{
		BankID:      bankID,
		Text:        r.Text,
		Type:        r.Type,
		MinScale:    r.MinScale,
		MaxScale:    r.MaxScale,
		OptionSetID: r.OptionSetID,
		Options:     ToOptionInputs(r.Options),
	}
}

type UpdateQuestionRequest struct {
	Text        *string         `json:"text" validate:"omitempty,min=1"`
	MinScale    *float64        `json:"min_scale"`
	MaxScale    *float64        `json:"max_scale"`
	OptionSetID *uint64         `json:"option_set_id"`
	Options     []OptionRequest `json:"options" validate:"omitempty,dive"`
}

func (r UpdateQuestionRequest) ToInput() services.UpdateQuestionInput {
	return services.UpdateQuestionInput{
		Text:        r.Text,
		MinScale:    r.MinScale,
		MaxScale:    r.MaxScale,
		OptionSetID: r.OptionSetID,
		Options:     ToOptionInputs(r.Options),
	}
}

// ToOptionInputs keeps nil as nil so an absent list stays distinguishable from an empty one.
func ToOptionInputs(options []OptionRequest) []services.OptionInput {
	if options == nil {
		return nil
	}
	inputs := make([]services.OptionInput, len(options))
	for i, o := range options {
		inputs[i] = services.OptionInput{Value: o.Value, Label: o.Label}
	}
	return inputs
}
