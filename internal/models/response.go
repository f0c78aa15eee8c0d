package models

import (
	"time"

	"gorm.io/datatypes"
)

// Response holds one answer per (assignment, template question). Exactly one value channel is set.
type Response struct {
	ID                 uint64                      `gorm:"primarykey" json:"id"`
	AssignmentID       uint64                      `gorm:"not null;uniqueIndex:idx_responses_assignment_question" json:"assignment_id"`
	TemplateQuestionID uint64                      `gorm:"not null;uniqueIndex:idx_responses_assignment_question" json:"template_question_id"`
	ScaleValue         *float64                    `json:"scale_value"`
	OptionValue        *string                     `gorm:"type:varchar(255)" json:"option_value"`
	OptionValues       datatypes.JSONSlice[string] `json:"option_values"`
	TextValue          *string                     `gorm:"type:text" json:"text_value"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}
