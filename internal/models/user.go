package models

import (
	"time"

	"gorm.io/gorm"
)

type GlobalRole string

const (
	GlobalRoleUser       GlobalRole = "USER"
	GlobalRoleSuperAdmin GlobalRole = "SUPER_ADMIN"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	GlobalRole   GlobalRole     `gorm:"type:varchar(20);not null;default:'USER'" json:"global_role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organizations []OrganizationMember `gorm:"foreignKey:UserID" json:"-"`
}
