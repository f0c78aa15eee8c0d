package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TemplateState string

const (
	TemplateStateDraft    TemplateState = "DRAFT"
	TemplateStateActive   TemplateState = "ACTIVE"
	TemplateStateClosed   TemplateState = "CLOSED"
	TemplateStateArchived TemplateState = "ARCHIVED"
)

func (s TemplateState) IsValid() bool {
	switch s {
	case TemplateStateDraft, TemplateStateActive, TemplateStateClosed, TemplateStateArchived:
		return true
	}
	return false
}

// CanTransitionTo allows any move between valid states except a return to DRAFT.
func (s TemplateState) CanTransitionTo(next TemplateState) bool {
	if !next.IsValid() {
		return false
	}
	if next == s {
		return true
	}
	return next != TemplateStateDraft
}

type Template struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug           string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description    string         `gorm:"type:text" json:"description"`
	Version        int            `gorm:"not null;default:1" json:"version"`
	State          TemplateState  `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"state"`
	Meta           datatypes.JSON `json:"meta,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Sections []Section `gorm:"foreignKey:TemplateID" json:"sections,omitempty"`
}

type Section struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	TemplateID  uint64         `gorm:"not null;index" json:"template_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Order       int            `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Questions []TemplateQuestion `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

// TemplateQuestion places a bank question into a section.
// An empty Perspectives set applies the question to every perspective.
type TemplateQuestion struct {
	ID           uint64                           `gorm:"primarykey" json:"id"`
	SectionID    uint64                           `gorm:"not null;index" json:"section_id"`
	QuestionID   uint64                           `gorm:"not null;index" json:"question_id"`
	Order        int                              `gorm:"column:sort_order;not null" json:"order"`
	Required     bool                             `gorm:"not null;default:false" json:"required"`
	Perspectives datatypes.JSONSlice[Perspective] `json:"perspectives"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt                   `gorm:"index" json:"-"`

	// Relations
	Section  *Section `gorm:"foreignKey:SectionID" json:"-"`
	Question Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

// AppliesTo reports whether respondents answering from p must answer this question.
func (tq TemplateQuestion) AppliesTo(p Perspective) bool {
	if len(tq.Perspectives) == 0 {
		return true
	}
	for _, allowed := range tq.Perspectives {
		if allowed == p {
			return true
		}
	}
	return false
}
