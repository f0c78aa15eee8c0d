package services

import (
	"context"
	"fmt"
	"math"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"go.uber.org/zap"
)

// ProgressStatus summarizes how far a respondent got.
type ProgressStatus string

const (
	ProgressNoQuestions ProgressStatus = "NO_QUESTIONS"
	ProgressNotStarted  ProgressStatus = "NOT_STARTED"
	ProgressInProgress  ProgressStatus = "IN_PROGRESS"
	ProgressCompleted   ProgressStatus = "COMPLETED"
	ProgressNotAssigned ProgressStatus = "NOT_ASSIGNED"
)

// Progress is the ratio of answered to applicable questions.
type Progress struct {
	Total    int            `json:"total"`
	Answered int            `json:"answered"`
	Percent  int            `json:"percent"`
	Status   ProgressStatus `json:"status"`
}

// AssignmentProgress is the progress of one assignment.
type AssignmentProgress struct {
	AssignmentID     uint64             `json:"assignment_id"`
	RespondentUserID uint64             `json:"respondent_user_id"`
	SubjectUserID    uint64             `json:"subject_user_id"`
	Perspective      models.Perspective `json:"perspective"`
	Progress
}

// UserProgressFilter narrows the assignments counted for a user.
type UserProgressFilter struct {
	Perspective   *string
	SubjectUserID *uint64
}

// ProgressService aggregates answered counts against applicable questions.
type ProgressService struct {
	sessions    repository.SessionRepository
	templates   repository.TemplateRepository
	assignments repository.AssignmentRepository
	responses   repository.ResponseRepository
	log         *zap.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	sessions repository.SessionRepository,
	templates repository.TemplateRepository,
	assignments repository.AssignmentRepository,
	responses repository.ResponseRepository,
	log *zap.Logger,
) *ProgressService {
	return &ProgressService{
		sessions:    sessions,
		templates:   templates,
		assignments: assignments,
		responses:   responses,
		log:         log,
	}
}

// computeProgress derives status and percent from the two counts.
func computeProgress(total, answered int) Progress {
	p := Progress{Total: total, Answered: answered}
	switch {
	case total == 0:
		p.Status = ProgressNoQuestions
		return p
	case answered == 0:
		p.Status = ProgressNotStarted
	case answered >= total:
		p.Status = ProgressCompleted
	default:
		p.Status = ProgressInProgress
	}

	p.Percent = int(math.Round(100 * float64(answered) / float64(total)))
	if p.Percent > 100 {
		p.Percent = 100
	}
	return p
}

// AssignmentProgress reports progress of one assignment to its respondent or a manager.
func (s *ProgressService) AssignmentProgress(ctx context.Context, actor access.Actor, assignmentID uint64) (*AssignmentProgress, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	session, err := s.sessions.FindByID(ctx, assignment.SessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := s.authorizeUser(actor, session.OrganizationID, assignment.RespondentUserID); err != nil {
		return nil, err
	}

	totals, err := s.questionTotals(ctx, session.TemplateID)
	if err != nil {
		return nil, err
	}
	counts, err := s.responses.CountByAssignments(ctx, []uint64{assignment.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	return &AssignmentProgress{
		AssignmentID:     assignment.ID,
		RespondentUserID: assignment.RespondentUserID,
		SubjectUserID:    assignment.SubjectUserID,
		Perspective:      assignment.Perspective,
		Progress:         computeProgress(totals.forPerspective(assignment.Perspective), int(counts[assignment.ID])),
	}, nil
}

// UserProgress reports a user's combined progress over their assignments in a session.
// Each distinct perspective contributes its question count once.
func (s *ProgressService) UserProgress(ctx context.Context, actor access.Actor, sessionID, userID uint64, filter UserProgressFilter) (*Progress, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := s.authorizeUser(actor, session.OrganizationID, userID); err != nil {
		return nil, err
	}

	assignmentFilter := repository.AssignmentFilter{
		SessionID:        sessionID,
		RespondentUserID: &userID,
		SubjectUserID:    filter.SubjectUserID,
	}
	if filter.Perspective != nil {
		perspective, err := parsePerspective(*filter.Perspective)
		if err != nil {
			return nil, err
		}
		assignmentFilter.Perspective = &perspective
	}

	assignments, err := s.assignments.List(ctx, assignmentFilter, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	if len(assignments) == 0 {
		return &Progress{Status: ProgressNotAssigned}, nil
	}

	totals, err := s.questionTotals(ctx, session.TemplateID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, len(assignments))
	perspectives := make(map[models.Perspective]bool)
	total := 0
	for i, a := range assignments {
		ids[i] = a.ID
		if !perspectives[a.Perspective] {
			perspectives[a.Perspective] = true
			total += totals.forPerspective(a.Perspective)
		}
	}

	counts, err := s.responses.CountByAssignments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	answered := 0
	for _, c := range counts {
		answered += int(c)
	}

	progress := computeProgress(total, answered)
	return &progress, nil
}

// SessionProgress reports every assignment's progress in a session. Managers only.
func (s *ProgressService) SessionProgress(ctx context.Context, actor access.Actor, sessionID uint64) ([]AssignmentProgress, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{SessionID: sessionID}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	totals, err := s.questionTotals(ctx, session.TemplateID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	counts, err := s.responses.CountByAssignments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	result := make([]AssignmentProgress, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, AssignmentProgress{
			AssignmentID:     a.ID,
			RespondentUserID: a.RespondentUserID,
			SubjectUserID:    a.SubjectUserID,
			Perspective:      a.Perspective,
			Progress:         computeProgress(totals.forPerspective(a.Perspective), int(counts[a.ID])),
		})
	}
	return result, nil
}

func (s *ProgressService) authorizeUser(actor access.Actor, orgID, userID uint64) error {
	if err := access.Authorize(actor, orgID, nil, access.MatchAny); err != nil {
		return err
	}
	if actor.UserID != userID && !access.IsManager(actor, orgID) {
		return ErrProgressForbidden
	}
	return nil
}

// questionSet holds the perspective sets of a template's live questions.
type questionSet []models.TemplateQuestion

func (q questionSet) forPerspective(p models.Perspective) int {
	n := 0
	for _, link := range q {
		if link.AppliesTo(p) {
			n++
		}
	}
	return n
}

func (s *ProgressService) questionTotals(ctx context.Context, templateID uint64) (questionSet, error) {
	links, err := s.templates.ListQuestionPerspectives(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template questions: %w", err)
	}
	return questionSet(links), nil
}
