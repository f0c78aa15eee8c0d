package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"github.com/yukikurage/assessment-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Redemption is the outcome of redeeming a session invite.
type Redemption struct {
	Session            *models.Session    `json:"session"`
	Assignment         *models.Assignment `json:"assignment"`
	JoinedOrganization bool               `json:"joined_organization"`
	AssignmentCreated  bool               `json:"assignment_created"`
}

// InviteService lets users join a session through its invite code.
type InviteService struct {
	sessions    repository.SessionRepository
	orgs        repository.OrganizationRepository
	assignments *AssignmentService
	log         *zap.Logger
}

// NewInviteService creates a new InviteService.
func NewInviteService(
	sessions repository.SessionRepository,
	orgs repository.OrganizationRepository,
	assignments *AssignmentService,
	log *zap.Logger,
) *InviteService {
	return &InviteService{
		sessions:    sessions,
		orgs:        orgs,
		assignments: assignments,
		log:         log,
	}
}

// RedeemInvite makes the actor a member of the session's organization and gives them a
// SELF assignment. Redeeming twice returns the same assignment.
func (s *InviteService) RedeemInvite(ctx context.Context, actor access.Actor, code string) (*Redemption, error) {
	session, err := s.sessions.FindByInviteCode(ctx, utils.NormalizeInviteCode(code))
	if err != nil {
		return nil, lookupError(err, ErrInvalidInviteCode, "session by invite code")
	}
	if session.State.IsTerminal() {
		return nil, ErrSessionClosed.WithDetails(map[string]models.SessionState{"state": session.State})
	}

	joined, err := s.ensureMembership(ctx, session.OrganizationID, actor.UserID)
	if err != nil {
		return nil, err
	}

	assignment, created, err := s.assignments.EnsureSelfAssignment(ctx, session.ID, actor.UserID)
	if err != nil {
		return nil, err
	}

	s.log.Info("invite redeemed",
		zap.Uint64("session_id", session.ID),
		zap.Uint64("user_id", actor.UserID),
		zap.Bool("joined_organization", joined),
		zap.Bool("assignment_created", created),
	)

	return &Redemption{
		Session:            session,
		Assignment:         assignment,
		JoinedOrganization: joined,
		AssignmentCreated:  created,
	}, nil
}

func (s *InviteService) ensureMembership(ctx context.Context, orgID, userID uint64) (bool, error) {
	if _, err := s.orgs.FindMember(ctx, orgID, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Roles:          []models.OrganizationRole{models.RoleMember},
		JoinedAt:       time.Now(),
	}
	if err := s.orgs.AddMember(ctx, member); err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add member: %w", err)
	}
	return true, nil
}
