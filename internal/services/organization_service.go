package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"github.com/yukikurage/assessment-api/internal/utils"
	"gorm.io/gorm"
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// CreateOrganization creates a new organization owned by the actor.
func (s *OrganizationService) CreateOrganization(ctx context.Context, actor access.Actor, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidOrganizationName
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org := &models.Organization{
		Name:       name,
		InviteCode: inviteCode,
	}
	owner := &models.OrganizationMember{
		UserID:   actor.UserID,
		Roles:    []models.OrganizationRole{models.RoleOwner},
		JoinedAt: time.Now(),
	}

	if err := s.orgRepo.CreateWithOwner(ctx, org, owner); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// ListOrganizationsForUser returns the memberships of the actor.
func (s *OrganizationService) ListOrganizationsForUser(ctx context.Context, actor access.Actor) ([]models.OrganizationMember, error) {
	memberships, err := s.orgRepo.ListMembersByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(ctx context.Context, actor access.Actor, orgID uint64) (*models.Organization, []models.OrganizationMember, error) {
	if err := access.Authorize(actor, orgID, nil, access.MatchAny); err != nil {
		return nil, nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, nil, lookupError(err, ErrOrganizationNotFound, "organization")
	}

	members, err := s.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	return org, members, nil
}

// UpdateOrganizationName updates an organization's name.
func (s *OrganizationService) UpdateOrganizationName(ctx context.Context, actor access.Actor, orgID uint64, name string) (*models.Organization, error) {
	if err := access.Authorize(actor, orgID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidOrganizationName
	}

	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, lookupError(err, ErrOrganizationNotFound, "organization")
	}

	org.Name = name
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

// RegenerateInviteCode generates a new invite code for the organization.
func (s *OrganizationService) RegenerateInviteCode(ctx context.Context, actor access.Actor, orgID uint64) (*models.Organization, error) {
	if err := access.Authorize(actor, orgID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, lookupError(err, ErrOrganizationNotFound, "organization")
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org.InviteCode = code
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}
	return org, nil
}

// JoinOrganizationByInvite adds the actor to an organization as a MEMBER via its invite code.
func (s *OrganizationService) JoinOrganizationByInvite(ctx context.Context, actor access.Actor, inviteCode string) (*models.Organization, error) {
	org, err := s.orgRepo.FindByInviteCode(ctx, utils.NormalizeInviteCode(inviteCode))
	if err != nil {
		return nil, lookupError(err, ErrInvalidInviteCode, "organization by invite code")
	}

	if _, err := s.orgRepo.FindMember(ctx, org.ID, actor.UserID); err == nil {
		return nil, ErrAlreadyOrganizationMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         actor.UserID,
		Roles:          []models.OrganizationRole{models.RoleMember},
		JoinedAt:       time.Now(),
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyOrganizationMember
		}
		return nil, fmt.Errorf("failed to add member to organization: %w", err)
	}
	return org, nil
}

// AddMember adds an existing user with the given roles. Only owners may grant OWNER.
func (s *OrganizationService) AddMember(ctx context.Context, actor access.Actor, orgID, userID uint64, roles []models.OrganizationRole) (*models.OrganizationMember, error) {
	if err := s.checkRoleGrant(actor, orgID, roles); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}

	member := &models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Roles:          roles,
		JoinedAt:       time.Now(),
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyOrganizationMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return member, nil
}

// UpdateMemberRoles replaces the role set of a member.
func (s *OrganizationService) UpdateMemberRoles(ctx context.Context, actor access.Actor, orgID, userID uint64, roles []models.OrganizationRole) (*models.OrganizationMember, error) {
	if err := s.checkRoleGrant(actor, orgID, roles); err != nil {
		return nil, err
	}

	member, err := s.orgRepo.FindMember(ctx, orgID, userID)
	if err != nil {
		return nil, lookupError(err, ErrOrganizationMemberNotFound, "organization member")
	}
	if member.HasRole(models.RoleOwner) && !hasRole(roles, models.RoleOwner) && !ownsOrganization(actor, orgID) {
		return nil, ErrOwnerRoleRequired
	}

	if err := s.orgRepo.UpdateMemberRoles(ctx, orgID, userID, roles); err != nil {
		return nil, fmt.Errorf("failed to update member roles: %w", err)
	}
	member.Roles = roles
	return member, nil
}

// RemoveMember removes a member from the organization.
func (s *OrganizationService) RemoveMember(ctx context.Context, actor access.Actor, orgID, targetID uint64) error {
	if err := access.Authorize(actor, orgID, models.ManagerRoles, access.MatchAny); err != nil {
		return err
	}
	if targetID == actor.UserID {
		return ErrCannotRemoveYourself
	}

	member, err := s.orgRepo.FindMember(ctx, orgID, targetID)
	if err != nil {
		return lookupError(err, ErrOrganizationMemberNotFound, "organization member")
	}
	if member.HasRole(models.RoleOwner) && !ownsOrganization(actor, orgID) {
		return ErrOwnerRoleRequired
	}

	if err := s.orgRepo.RemoveMember(ctx, orgID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// CreateTeam creates a team that sessions of the organization may be scoped to.
func (s *OrganizationService) CreateTeam(ctx context.Context, actor access.Actor, orgID uint64, name string) (*models.Team, error) {
	if err := access.Authorize(actor, orgID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	team := &models.Team{OrganizationID: orgID, Name: name}
	if err := s.orgRepo.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *OrganizationService) checkRoleGrant(actor access.Actor, orgID uint64, roles []models.OrganizationRole) error {
	if err := access.Authorize(actor, orgID, models.ManagerRoles, access.MatchAny); err != nil {
		return err
	}
	if len(roles) == 0 {
		return ErrInvalidRoles
	}
	for _, r := range roles {
		if !r.IsValid() {
			return ErrInvalidRoles.WithDetails(map[string]string{"role": string(r)})
		}
	}
	if hasRole(roles, models.RoleOwner) && !ownsOrganization(actor, orgID) {
		return ErrOwnerRoleRequired
	}
	return nil
}

func ownsOrganization(actor access.Actor, orgID uint64) bool {
	return access.Authorize(actor, orgID, []models.OrganizationRole{models.RoleOwner}, access.MatchAny) == nil
}

func hasRole(roles []models.OrganizationRole, role models.OrganizationRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
