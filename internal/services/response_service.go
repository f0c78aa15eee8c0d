package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/database"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResponseService validates and stores answers, one row per (assignment, template question).
type ResponseService struct {
	sessions    repository.SessionRepository
	assignments repository.AssignmentRepository
	sections    repository.SectionRepository
	responses   repository.ResponseRepository
	log         *zap.Logger
}

// NewResponseService creates a new ResponseService.
func NewResponseService(
	sessions repository.SessionRepository,
	assignments repository.AssignmentRepository,
	sections repository.SectionRepository,
	responses repository.ResponseRepository,
	log *zap.Logger,
) *ResponseService {
	return &ResponseService{
		sessions:    sessions,
		assignments: assignments,
		sections:    sections,
		responses:   responses,
		log:         log,
	}
}

// UpsertResponseInput is one answer submission.
type UpsertResponseInput struct {
	SessionID          uint64
	AssignmentID       uint64
	TemplateQuestionID uint64
	Value              ResponseValue
}

// UpsertResponse validates an answer and writes it in place of any previous answer to the same question.
// It reports whether a new row was created.
func (s *ResponseService) UpsertResponse(ctx context.Context, actor access.Actor, input UpsertResponseInput) (*models.Response, bool, error) {
	assignment, session, err := s.authorizeAssignment(ctx, actor, input.AssignmentID)
	if err != nil {
		return nil, false, err
	}
	if assignment.SessionID != input.SessionID {
		return nil, false, ErrSessionMismatch
	}
	if !session.State.AcceptsResponses() {
		return nil, false, ErrSessionNotAcceptingAnswer.WithDetails(map[string]models.SessionState{"state": session.State})
	}

	link, err := s.sections.FindTemplateQuestion(ctx, input.TemplateQuestionID)
	if err != nil {
		return nil, false, lookupError(err, ErrTemplateQuestionNotFound, "template question")
	}
	if link.Section == nil || link.Section.TemplateID != session.TemplateID {
		return nil, false, ErrTemplateMismatch
	}
	if !link.AppliesTo(assignment.Perspective) {
		return nil, false, ErrPerspectiveNotAllowed.WithDetails(map[string]interface{}{
			"perspective":  assignment.Perspective,
			"perspectives": link.Perspectives,
		})
	}

	value, err := ValidateResponseValue(link.Question, input.Value)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.responses.FindByPair(ctx, assignment.ID, link.ID)
	switch {
	case err == nil:
		applyValue(existing, value)
		if err := s.responses.Save(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to update response: %w", err)
		}
		return existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("failed to find response: %w", err)
	}

	response := &models.Response{
		AssignmentID:       assignment.ID,
		TemplateQuestionID: link.ID,
	}
	applyValue(response, value)
	if err := s.responses.Create(ctx, response); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, false, fmt.Errorf("failed to create response: %w", err)
		}
		// A concurrent submission created the row first; overwrite it.
		existing, err := s.responses.FindByPair(ctx, assignment.ID, link.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reload response: %w", err)
		}
		applyValue(existing, value)
		if err := s.responses.Save(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to update response: %w", err)
		}
		return existing, false, nil
	}
	return response, true, nil
}

// BulkUpsertResult summarizes a bulk submission.
type BulkUpsertResult struct {
	Responses []models.Response `json:"responses"`
	Created   int               `json:"created"`
	Updated   int               `json:"updated"`
}

// BulkUpsertResponses applies submissions in order. The first failure stops the batch and is
// returned as a BulkItemError; earlier items stay written.
func (s *ResponseService) BulkUpsertResponses(ctx context.Context, actor access.Actor, inputs []UpsertResponseInput) (*BulkUpsertResult, error) {
	result := &BulkUpsertResult{Responses: make([]models.Response, 0, len(inputs))}
	for i, input := range inputs {
		response, created, err := s.UpsertResponse(ctx, actor, input)
		if err != nil {
			s.log.Debug("bulk response upsert stopped",
				zap.Int("index", i),
				zap.Int("written", len(result.Responses)),
				zap.Error(err),
			)
			return result, &apierrors.BulkItemError{Index: i, Err: err}
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		result.Responses = append(result.Responses, *response)
	}
	return result, nil
}

// ListResponses lists the answers of an assignment.
func (s *ResponseService) ListResponses(ctx context.Context, actor access.Actor, assignmentID uint64) ([]models.Response, error) {
	if _, _, err := s.authorizeAssignment(ctx, actor, assignmentID); err != nil {
		return nil, err
	}

	responses, err := s.responses.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// DeleteResponse hard deletes one answer.
func (s *ResponseService) DeleteResponse(ctx context.Context, actor access.Actor, responseID uint64) error {
	response, err := s.responses.FindByID(ctx, responseID)
	if err != nil {
		return lookupError(err, ErrResponseNotFound, "response")
	}
	if _, _, err := s.authorizeAssignment(ctx, actor, response.AssignmentID); err != nil {
		return err
	}

	if err := s.responses.Delete(ctx, responseID); err != nil {
		return lookupError(err, ErrResponseNotFound, "response")
	}
	return nil
}

// authorizeAssignment loads an assignment and its session and requires the actor to be
// its respondent or a manager of the session's organization.
func (s *ResponseService) authorizeAssignment(ctx context.Context, actor access.Actor, assignmentID uint64) (*models.Assignment, *models.Session, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, nil, lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	session, err := s.sessions.FindByID(ctx, assignment.SessionID)
	if err != nil {
		return nil, nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, nil, access.MatchAny); err != nil {
		return nil, nil, err
	}
	if assignment.RespondentUserID != actor.UserID && !access.IsManager(actor, session.OrganizationID) {
		return nil, nil, ErrResponseForbidden
	}
	return assignment, session, nil
}

func applyValue(response *models.Response, value ResponseValue) {
	response.ScaleValue = value.ScaleValue
	response.OptionValue = value.OptionValue
	response.TextValue = value.TextValue
	response.OptionValues = nil
	if value.OptionValues != nil {
		response.OptionValues = datatypes.JSONSlice[string](value.OptionValues)
	}
}
