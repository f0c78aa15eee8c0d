package models

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeScale        QuestionType = "SCALE"
	QuestionTypeText         QuestionType = "TEXT"
	QuestionTypeMultiChoice  QuestionType = "MULTI_CHOICE"
	QuestionTypeSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionTypeBoolean      QuestionType = "BOOLEAN"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeScale, QuestionTypeText, QuestionTypeMultiChoice, QuestionTypeSingleChoice, QuestionTypeBoolean:
		return true
	}
	return false
}

// IsChoice reports whether answers must come from an option list.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultiChoice
}

type QuestionBank struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type OptionSet struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	QuestionBankID uint64         `gorm:"not null;index" json:"question_bank_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Options []Option `gorm:"foreignKey:OptionSetID" json:"options,omitempty"`
}

// Option belongs either to an option set or inline to a single question.
type Option struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	OptionSetID *uint64   `gorm:"index" json:"option_set_id,omitempty"`
	QuestionID  *uint64   `gorm:"index" json:"question_id,omitempty"`
	Value       string    `gorm:"type:varchar(255);not null" json:"value"`
	Label       string    `gorm:"type:varchar(255)" json:"label"`
	Order       int       `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

type Question struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	QuestionBankID uint64         `gorm:"not null;index" json:"question_bank_id"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	Type           QuestionType   `gorm:"type:varchar(20);not null" json:"type"`
	MinScale       *float64       `json:"min_scale,omitempty"`
	MaxScale       *float64       `json:"max_scale,omitempty"`
	OptionSetID    *uint64        `gorm:"index" json:"option_set_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	OptionSet *OptionSet `gorm:"foreignKey:OptionSetID" json:"option_set,omitempty"`
	Options   []Option   `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

// OptionValues returns the accepted answer values: the attached option set wins over inline options.
func (q Question) OptionValues() []string {
	source := q.Options
	if q.OptionSet != nil {
		source = q.OptionSet.Options
	}

	values := make([]string, 0, len(source))
	for _, o := range source {
		values = append(values, o.Value)
	}
	return values
}
