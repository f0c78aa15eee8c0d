package models

import (
	"time"

	"gorm.io/gorm"
)

// Assignment is one unit of work: a respondent answering about a subject from a perspective.
// Live rows are unique on (session, respondent, subject, perspective).
type Assignment struct {
	ID               uint64         `gorm:"primarykey" json:"id"`
	SessionID        uint64         `gorm:"not null;index" json:"session_id"`
	RespondentUserID uint64         `gorm:"not null;index" json:"respondent_user_id"`
	SubjectUserID    uint64         `gorm:"not null;index" json:"subject_user_id"`
	Perspective      Perspective    `gorm:"type:varchar(20);not null" json:"perspective"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Respondent *User `gorm:"foreignKey:RespondentUserID" json:"respondent,omitempty"`
	Subject    *User `gorm:"foreignKey:SubjectUserID" json:"subject,omitempty"`
}
