package models

import "time"

// AccessLevel is the grade an organization holds over a shared template or question bank.
type AccessLevel string

const (
	AccessUse   AccessLevel = "USE"
	AccessEdit  AccessLevel = "EDIT"
	AccessAdmin AccessLevel = "ADMIN"
	// AccessClone ranks the same as AccessUse.
	AccessClone AccessLevel = "CLONE"
)

// Rank orders levels USE(1) < EDIT(2) < ADMIN(3); unknown levels rank 0.
func (l AccessLevel) Rank() int {
	switch l {
	case AccessUse, AccessClone:
		return 1
	case AccessEdit:
		return 2
	case AccessAdmin:
		return 3
	}
	return 0
}

func (l AccessLevel) IsValid() bool {
	return l.Rank() > 0
}

// Satisfies reports whether l grants at least required.
func (l AccessLevel) Satisfies(required AccessLevel) bool {
	return l.IsValid() && l.Rank() >= required.Rank()
}

type TemplateLink struct {
	TemplateID     uint64      `gorm:"primarykey" json:"template_id"`
	OrganizationID uint64      `gorm:"primarykey" json:"organization_id"`
	AccessLevel    AccessLevel `gorm:"type:varchar(10);not null" json:"access_level"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type QuestionBankLink struct {
	QuestionBankID uint64      `gorm:"primarykey" json:"question_bank_id"`
	OrganizationID uint64      `gorm:"primarykey" json:"organization_id"`
	AccessLevel    AccessLevel `gorm:"type:varchar(10);not null" json:"access_level"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
