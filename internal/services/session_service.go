package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"github.com/yukikurage/assessment-api/internal/utils"
	"go.uber.org/zap"
)

const maxInviteCodeAttempts = 5

// SessionService runs sessions through their lifecycle.
type SessionService struct {
	sessions  repository.SessionRepository
	templates repository.TemplateRepository
	orgs      repository.OrganizationRepository
	checker   *access.Checker
	log       *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions repository.SessionRepository,
	templates repository.TemplateRepository,
	orgs repository.OrganizationRepository,
	checker *access.Checker,
	log *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		templates: templates,
		orgs:      orgs,
		checker:   checker,
		log:       log,
	}
}

// CreateSessionInput represents parameters to schedule a session.
type CreateSessionInput struct {
	OrganizationID uint64
	TemplateID     uint64
	TeamID         *uint64
	Name           string
	StartAt        time.Time
	EndAt          time.Time
}

// CreateSession schedules a session against an ACTIVE template.
func (s *SessionService) CreateSession(ctx context.Context, actor access.Actor, input CreateSessionInput) (*models.Session, error) {
	if err := access.Authorize(actor, input.OrganizationID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}

	if _, err := s.orgs.FindByID(ctx, input.OrganizationID); err != nil {
		return nil, lookupError(err, ErrOrganizationNotFound, "organization")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidSessionName
	}
	if !input.EndAt.After(input.StartAt) {
		return nil, ErrInvalidSessionWindow
	}

	if _, err := s.checker.Require(ctx, actor, access.ResourceTemplate, input.TemplateID, input.OrganizationID, models.AccessUse); err != nil {
		return nil, accessError(err, ErrTemplateNotFound)
	}
	template, err := s.templates.FindByID(ctx, input.TemplateID)
	if err != nil {
		return nil, lookupError(err, ErrTemplateNotFound, "template")
	}
	if template.State != models.TemplateStateActive {
		return nil, ErrTemplateNotActive.WithDetails(map[string]models.TemplateState{"state": template.State})
	}

	if input.TeamID != nil {
		if err := s.checkTeam(ctx, input.OrganizationID, *input.TeamID); err != nil {
			return nil, err
		}
	}

	session := &models.Session{
		OrganizationID: input.OrganizationID,
		TemplateID:     input.TemplateID,
		TeamID:         input.TeamID,
		Name:           name,
		StartAt:        input.StartAt.UTC(),
		EndAt:          input.EndAt.UTC(),
		State:          models.SessionStateScheduled,
	}

	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		session.ID = 0
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		session.InviteCode = code

		err = s.sessions.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		s.log.Debug("invite code collision, retrying", zap.Int("attempt", attempt+1))
	}
	return nil, ErrInviteCodeGenerationFailed
}

// GetSession returns a live session of an organization the actor belongs to.
func (s *SessionService) GetSession(ctx context.Context, actor access.Actor, sessionID uint64) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, nil, access.MatchAny); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions lists the sessions of an organization, newest first.
func (s *SessionService) ListSessions(ctx context.Context, actor access.Actor, orgID uint64, state *models.SessionState, pagination utils.PaginationParams) ([]models.Session, int64, error) {
	if err := access.Authorize(actor, orgID, nil, access.MatchAny); err != nil {
		return nil, 0, err
	}
	if state != nil && !state.IsValid() {
		return nil, 0, ErrInvalidSessionState.WithDetails(map[string]string{"state": string(*state)})
	}

	sessions, total, err := s.sessions.List(ctx, repository.SessionFilter{
		OrganizationID: orgID,
		State:          state,
		Pagination:     pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, total, nil
}

// UpdateSessionInput carries optional session changes.
// Force skips the transition table but still writes conditionally on the persisted state.
type UpdateSessionInput struct {
	Name    *string
	StartAt *time.Time
	EndAt   *time.Time
	TeamID  *uint64
	State   *models.SessionState
	Force   bool
}

// UpdateSession edits a session and moves it through the transition table.
func (s *SessionService) UpdateSession(ctx context.Context, actor access.Actor, sessionID uint64, input UpdateSessionInput) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}

	update := repository.SessionUpdate{TeamID: input.TeamID}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidSessionName
		}
		update.Name = &name
	}
	if input.StartAt != nil || input.EndAt != nil {
		startAt, endAt := session.StartAt, session.EndAt
		if input.StartAt != nil {
			startAt = input.StartAt.UTC()
			update.StartAt = &startAt
		}
		if input.EndAt != nil {
			endAt = input.EndAt.UTC()
			update.EndAt = &endAt
		}
		if !endAt.After(startAt) {
			return nil, ErrInvalidSessionWindow
		}
	}
	if input.TeamID != nil {
		if err := s.checkTeam(ctx, session.OrganizationID, *input.TeamID); err != nil {
			return nil, err
		}
	}

	var transition *repository.SessionTransition
	forced := false
	if input.State != nil && *input.State != session.State {
		next := *input.State
		if !next.IsValid() {
			return nil, ErrInvalidSessionState.WithDetails(map[string]string{"state": string(next)})
		}
		if !session.State.CanTransitionTo(next) {
			if !input.Force {
				return nil, ErrIllegalSessionTransition.WithDetails(map[string]models.SessionState{
					"from": session.State,
					"to":   next,
				})
			}
			forced = true
		}
		transition = &repository.SessionTransition{From: session.State, To: next}
	}

	moved, err := s.sessions.Update(ctx, session.ID, update, transition)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if !moved {
		return nil, ErrSessionStateConflict
	}
	if forced {
		s.log.Warn("forced session state change",
			zap.Uint64("session_id", session.ID),
			zap.String("from", string(transition.From)),
			zap.String("to", string(transition.To)),
			zap.Uint64("actor_id", actor.UserID),
		)
	}

	updated, err := s.sessions.FindByID(ctx, session.ID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	return updated, nil
}

// DeleteSession soft deletes a session and forces it to CANCELLED.
func (s *SessionService) DeleteSession(ctx context.Context, actor access.Actor, sessionID uint64) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, models.ManagerRoles, access.MatchAny); err != nil {
		return err
	}

	if err := s.sessions.Cancel(ctx, sessionID); err != nil {
		return lookupError(err, ErrSessionNotFound, "session")
	}
	return nil
}

func (s *SessionService) checkTeam(ctx context.Context, orgID, teamID uint64) error {
	team, err := s.orgs.FindTeam(ctx, teamID)
	if err != nil {
		return lookupError(err, ErrTeamNotFound, "team")
	}
	if team.OrganizationID != orgID {
		return ErrTeamNotInOrganization
	}
	return nil
}
