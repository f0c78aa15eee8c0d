package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionState string

const (
	SessionStateScheduled  SessionState = "SCHEDULED"
	SessionStateInProgress SessionState = "IN_PROGRESS"
	SessionStateAnalyzing  SessionState = "ANALYZING"
	SessionStateCompleted  SessionState = "COMPLETED"
	SessionStateCancelled  SessionState = "CANCELLED"
)

var sessionTransitions = map[SessionState][]SessionState{
	SessionStateScheduled:  {SessionStateInProgress, SessionStateCancelled},
	SessionStateInProgress: {SessionStateAnalyzing, SessionStateCompleted, SessionStateCancelled},
	SessionStateAnalyzing:  {SessionStateCompleted, SessionStateCancelled},
}

func (s SessionState) IsValid() bool {
	switch s {
	case SessionStateScheduled, SessionStateInProgress, SessionStateAnalyzing, SessionStateCompleted, SessionStateCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is listed as a successor of s.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SessionState) IsTerminal() bool {
	return s == SessionStateCompleted || s == SessionStateCancelled
}

// AcceptsResponses reports whether respondents may still submit answers.
func (s SessionState) AcceptsResponses() bool {
	return s == SessionStateScheduled || s == SessionStateInProgress
}

type Session struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	TemplateID     uint64         `gorm:"not null;index" json:"template_id"`
	TeamID         *uint64        `gorm:"index" json:"team_id,omitempty"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	StartAt        time.Time      `gorm:"not null" json:"start_at"`
	EndAt          time.Time      `gorm:"not null" json:"end_at"`
	State          SessionState   `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"state"`
	InviteCode     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Template *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}
