package models

import (
	"time"

	"gorm.io/datatypes"
)

type OrganizationRole string

const (
	RoleOwner   OrganizationRole = "OWNER"
	RoleManager OrganizationRole = "MANAGER"
	RoleMember  OrganizationRole = "MEMBER"
)

// ManagerRoles may run sessions and assignments for an organization.
var ManagerRoles = []OrganizationRole{RoleOwner, RoleManager}

func (r OrganizationRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleMember:
		return true
	}
	return false
}

type OrganizationMember struct {
	OrganizationID uint64                                `gorm:"primarykey" json:"organization_id"`
	UserID         uint64                                `gorm:"primarykey" json:"user_id"`
	Roles          datatypes.JSONSlice[OrganizationRole] `json:"roles"`
	JoinedAt       time.Time                             `json:"joined_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// HasRole reports whether the member holds role.
func (m OrganizationMember) HasRole(role OrganizationRole) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}
