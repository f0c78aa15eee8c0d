package dto

import (
	"time"

	"github.com/yukikurage/assessment-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code,omitempty"`
}

// OrganizationWithRolesDTO represents an organization with the user's roles
type OrganizationWithRolesDTO struct {
	OrganizationDTO
	Roles []models.OrganizationRole `json:"roles"`
}

// OrganizationMemberDTO represents a member in an organization
type OrganizationMemberDTO struct {
	User     UserDTO                   `json:"user"`
	Roles    []models.OrganizationRole `json:"roles"`
	JoinedAt time.Time                 `json:"joined_at"`
}

// OrganizationDetailDTO represents detailed organization information
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members   []OrganizationMemberDTO   `json:"members"`
	YourRoles []models.OrganizationRole `json:"your_roles"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type JoinOrganizationRequest struct {
	InviteCode string `json:"invite_code" validate:"required,max=50"`
}

type AddMemberRequest struct {
	UserID uint64                    `json:"user_id" validate:"required"`
	Roles  []models.OrganizationRole `json:"roles" validate:"required,min=1,dive,oneof=OWNER MANAGER MEMBER"`
}

type UpdateMemberRolesRequest struct {
	Roles []models.OrganizationRole `json:"roles" validate:"required,min=1,dive,oneof=OWNER MANAGER MEMBER"`
}

type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization, includeInviteCode bool) OrganizationDTO {
	dto := OrganizationDTO{
		ID:   org.ID,
		Name: org.Name,
	}
	if includeInviteCode {
		dto.InviteCode = org.InviteCode
	}
	return dto
}

// ToOrganizationWithRolesDTO converts an organization member to DTO with roles
func ToOrganizationWithRolesDTO(member models.OrganizationMember) OrganizationWithRolesDTO {
	return OrganizationWithRolesDTO{
		OrganizationDTO: ToOrganizationDTO(member.Organization, false),
		Roles:           member.Roles,
	}
}

// ToOrganizationMemberDTO converts a member to DTO
func ToOrganizationMemberDTO(member models.OrganizationMember) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		User:     ToUserDTO(member.User),
		Roles:    member.Roles,
		JoinedAt: member.JoinedAt,
	}
}

// ToOrganizationDetailDTO converts organization with members to detailed DTO.
// The invite code is only shown to managers.
func ToOrganizationDetailDTO(org models.Organization, members []models.OrganizationMember, yourRoles []models.OrganizationRole, showInviteCode bool) OrganizationDetailDTO {
	memberDTOs := make([]OrganizationMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToOrganizationMemberDTO(member)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org, showInviteCode),
		Members:         memberDTOs,
		YourRoles:       yourRoles,
	}
}
