package dto

import (
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/services"
)

type CreateTemplateRequest struct {
	Name        string                 `json:"name" validate:"required,max=255"`
	Slug        string                 `json:"slug" validate:"omitempty,max=120"`
	Description string                 `json:"description"`
	Meta        map[string]interface{} `json:"meta"`
}

func (r CreateTemplateRequest) ToInput(orgID uint64) services.CreateTemplateInput {
	return services.CreateTemplateInput{
		OrganizationID: orgID,
		Name:           r.Name,
		Slug:           r.Slug,
		Description:    r.Description,
		Meta:           r.Meta,
	}
}

type UpdateTemplateRequest struct {
	Name        *string                `json:"name" validate:"omitempty,max=255"`
	Slug        *string                `json:"slug" validate:"omitempty,max=120"`
	Description *string                `json:"description"`
	Meta        map[string]interface{} `json:"meta"`
	State       *models.TemplateState  `json:"state" validate:"omitempty,oneof=DRAFT ACTIVE CLOSED ARCHIVED"`
	Version     *int                   `json:"version" validate:"omitempty,min=1"`
}

func (r UpdateTemplateRequest) ToInput() services.UpdateTemplateInput {
	return services.UpdateTemplateInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Meta:        r.Meta,
		State:       r.State,
		Version:     r.Version,
	}
}

// LinkRequest shares a template or question bank with another organization.
type LinkRequest struct {
	TargetOrganizationID uint64             `json:"target_organization_id" validate:"required"`
	Level                models.AccessLevel `json:"level" validate:"required,oneof=USE EDIT ADMIN CLONE"`
}

type CreateSectionRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

type UpdateSectionRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

// ReorderRequest lists every sibling id in the new order.
type ReorderRequest struct {
	IDs []uint64 `json:"ids" validate:"required,min=1,dive,required"`
}

type TemplateQuestionRequest struct {
	QuestionID   uint64   `json:"question_id" validate:"required"`
	Required     bool     `json:"required"`
	Perspectives []string `json:"perspectives" validate:"omitempty,dive,required,max=20"`
}

func (r TemplateQuestionRequest) ToInput() services.TemplateQuestionInput {
	return services.TemplateQuestionInput{
		QuestionID:   r.QuestionID,
		Required:     r.Required,
		Perspectives: r.Perspectives,
	}
}

type SetSectionQuestionsRequest struct {
	Questions []TemplateQuestionRequest `json:"questions" validate:"dive"`
}

func (r SetSectionQuestionsRequest) ToInputs() []services.TemplateQuestionInput {
	inputs := make([]services.TemplateQuestionInput, len(r.Questions))
	for i, q := range r.Questions {
		inputs[i] = q.ToInput()
	}
	return inputs
}

type UpdateTemplateQuestionRequest struct {
	Required     *bool     `json:"required"`
	Perspectives *[]string `json:"perspectives"`
}
