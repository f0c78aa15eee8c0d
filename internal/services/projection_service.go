package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
)

// SessionProjection is the read-only view exported for analysis: the session,
// its ordered template graph and, when requested, one assignment's answers.
type SessionProjection struct {
	Session    *models.Session    `json:"session"`
	Template   *models.Template   `json:"template"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
	Responses  []models.Response  `json:"responses,omitempty"`
}

// ProjectionService assembles session projections. It never writes.
type ProjectionService struct {
	sessions    repository.SessionRepository
	templates   repository.TemplateRepository
	assignments repository.AssignmentRepository
	responses   repository.ResponseRepository
}

// NewProjectionService creates a new ProjectionService.
func NewProjectionService(
	sessions repository.SessionRepository,
	templates repository.TemplateRepository,
	assignments repository.AssignmentRepository,
	responses repository.ResponseRepository,
) *ProjectionService {
	return &ProjectionService{
		sessions:    sessions,
		templates:   templates,
		assignments: assignments,
		responses:   responses,
	}
}

// BuildSessionProjection loads the projection of a session. With an assignment id the
// caller must be its respondent or a manager; without one the caller must be a manager.
func (s *ProjectionService) BuildSessionProjection(ctx context.Context, actor access.Actor, sessionID uint64, assignmentID *uint64) (*SessionProjection, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, nil, access.MatchAny); err != nil {
		return nil, err
	}
	manager := access.IsManager(actor, session.OrganizationID)

	projection := &SessionProjection{Session: session}

	if assignmentID != nil {
		assignment, err := s.assignments.FindByID(ctx, *assignmentID)
		if err != nil {
			return nil, lookupError(err, ErrAssignmentNotFound, "assignment")
		}
		if assignment.SessionID != session.ID {
			return nil, ErrSessionMismatch
		}
		if assignment.RespondentUserID != actor.UserID && !manager {
			return nil, ErrResponseForbidden
		}
		responses, err := s.responses.ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list responses: %w", err)
		}
		projection.Assignment = assignment
		projection.Responses = responses
	} else if !manager {
		return nil, access.ErrMissingOrganizationRole
	}

	template, err := s.templates.FindGraph(ctx, session.TemplateID)
	if err != nil {
		return nil, lookupError(err, ErrTemplateNotFound, "template")
	}
	projection.Template = template
	return projection, nil
}
