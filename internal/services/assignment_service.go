package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService maintains the respondent/subject/perspective matrix of a session.
type AssignmentService struct {
	sessions    repository.SessionRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	log         *zap.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	sessions repository.SessionRepository,
	assignments repository.AssignmentRepository,
	users repository.UserRepository,
	log *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		sessions:    sessions,
		assignments: assignments,
		users:       users,
		log:         log,
	}
}

// AddAssignmentInput represents parameters to add one assignment.
type AddAssignmentInput struct {
	SessionID        uint64
	RespondentUserID uint64
	SubjectUserID    *uint64
	Perspective      string
}

// AddAssignment adds one assignment. SELF without a subject assigns the respondent to themself.
func (s *AssignmentService) AddAssignment(ctx context.Context, actor access.Actor, input AddAssignmentInput) (*models.Assignment, error) {
	if _, err := s.managedSession(ctx, actor, input.SessionID); err != nil {
		return nil, err
	}

	perspective, err := parsePerspective(input.Perspective)
	if err != nil {
		return nil, err
	}

	subjectID, err := resolveSubject(perspective, input.RespondentUserID, input.SubjectUserID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUsers(ctx, input.RespondentUserID, subjectID); err != nil {
		return nil, err
	}

	if _, err := s.assignments.FindLive(ctx, input.SessionID, input.RespondentUserID, subjectID, perspective); err == nil {
		return nil, ErrAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}

	assignment := &models.Assignment{
		SessionID:        input.SessionID,
		RespondentUserID: input.RespondentUserID,
		SubjectUserID:    subjectID,
		Perspective:      perspective,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return assignment, nil
}

// BulkAssignInput selects one of two modes: a single respondent fanned out
// across SubjectUserIDs, or RespondentUserIDs each assigned to themselves.
type BulkAssignInput struct {
	SessionID         uint64
	RespondentUserID  *uint64
	SubjectUserIDs    []uint64
	RespondentUserIDs []uint64
	Perspective       string
}

// BulkAssign creates the missing assignments of a batch in one transaction and returns how many were new.
func (s *AssignmentService) BulkAssign(ctx context.Context, actor access.Actor, input BulkAssignInput) (int, error) {
	if _, err := s.managedSession(ctx, actor, input.SessionID); err != nil {
		return 0, err
	}

	fanOut := input.RespondentUserID != nil && len(input.SubjectUserIDs) > 0
	selfAssign := len(input.RespondentUserIDs) > 0
	if fanOut == selfAssign {
		return 0, ErrInvalidBulkMode
	}

	perspective, err := parsePerspective(input.Perspective)
	if err != nil {
		return 0, err
	}

	var batch []models.Assignment
	if fanOut {
		batch, err = s.planFanOut(ctx, input.SessionID, *input.RespondentUserID, input.SubjectUserIDs, perspective)
	} else {
		batch, err = s.planSelfAssign(ctx, input.SessionID, input.RespondentUserIDs, perspective)
	}
	if err != nil {
		return 0, err
	}

	if err := s.assignments.CreateBatch(ctx, batch); err != nil {
		if database.IsUniqueViolation(err) {
			return 0, ErrAlreadyAssigned
		}
		return 0, fmt.Errorf("failed to create assignments: %w", err)
	}

	s.log.Info("bulk assignment",
		zap.Uint64("session_id", input.SessionID),
		zap.String("perspective", string(perspective)),
		zap.Int("created", len(batch)),
	)
	return len(batch), nil
}

func (s *AssignmentService) planFanOut(ctx context.Context, sessionID, respondentID uint64, subjectIDs []uint64, perspective models.Perspective) ([]models.Assignment, error) {
	if perspective == models.PerspectiveSelf {
		return nil, ErrSelfFanOut
	}

	subjects := uniqueUint64(subjectIDs)
	if err := s.requireUsers(ctx, append([]uint64{respondentID}, subjects...)...); err != nil {
		return nil, err
	}

	existing, err := s.assignments.List(ctx, repository.AssignmentFilter{
		SessionID:        sessionID,
		RespondentUserID: &respondentID,
		Perspective:      &perspective,
	}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	assigned := make(map[uint64]bool, len(existing))
	for _, a := range existing {
		assigned[a.SubjectUserID] = true
	}

	batch := make([]models.Assignment, 0, len(subjects))
	for _, subjectID := range subjects {
		if assigned[subjectID] {
			continue
		}
		batch = append(batch, models.Assignment{
			SessionID:        sessionID,
			RespondentUserID: respondentID,
			SubjectUserID:    subjectID,
			Perspective:      perspective,
		})
	}
	return batch, nil
}

func (s *AssignmentService) planSelfAssign(ctx context.Context, sessionID uint64, respondentIDs []uint64, perspective models.Perspective) ([]models.Assignment, error) {
	respondents := uniqueUint64(respondentIDs)
	if err := s.requireUsers(ctx, respondents...); err != nil {
		return nil, err
	}

	existing, err := s.assignments.List(ctx, repository.AssignmentFilter{
		SessionID:   sessionID,
		Perspective: &perspective,
	}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	assigned := make(map[uint64]bool, len(existing))
	for _, a := range existing {
		if a.RespondentUserID == a.SubjectUserID {
			assigned[a.RespondentUserID] = true
		}
	}

	batch := make([]models.Assignment, 0, len(respondents))
	for _, userID := range respondents {
		if assigned[userID] {
			continue
		}
		batch = append(batch, models.Assignment{
			SessionID:        sessionID,
			RespondentUserID: userID,
			SubjectUserID:    userID,
			Perspective:      perspective,
		})
	}
	return batch, nil
}

// ListAssignments lists a session's assignments with respondent and subject identities.
// Members who do not manage the organization only see the assignments they answer.
func (s *AssignmentService) ListAssignments(ctx context.Context, actor access.Actor, sessionID uint64) ([]models.Assignment, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, nil, access.MatchAny); err != nil {
		return nil, err
	}

	filter := repository.AssignmentFilter{SessionID: sessionID}
	if !access.IsManager(actor, session.OrganizationID) {
		filter.RespondentUserID = &actor.UserID
	}

	assignments, err := s.assignments.List(ctx, filter, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// GetAssignment returns one assignment to its respondent or a manager.
func (s *AssignmentService) GetAssignment(ctx context.Context, actor access.Actor, assignmentID uint64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	session, err := s.sessions.FindByID(ctx, assignment.SessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, nil, access.MatchAny); err != nil {
		return nil, err
	}
	if assignment.RespondentUserID != actor.UserID && !access.IsManager(actor, session.OrganizationID) {
		return nil, ErrAssignmentForbidden
	}
	return assignment, nil
}

// UpdateAssignmentInput carries optional assignment changes.
type UpdateAssignmentInput struct {
	SubjectUserID *uint64
	Perspective   *string
}

// UpdateAssignment changes the subject or perspective of an assignment. The tuple is not
// re-checked here; the live-tuple unique index rejects a duplicate.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, actor access.Actor, assignmentID uint64, input UpdateAssignmentInput) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	if _, err := s.managedSession(ctx, actor, assignment.SessionID); err != nil {
		return nil, err
	}

	if input.Perspective != nil {
		perspective, err := parsePerspective(*input.Perspective)
		if err != nil {
			return nil, err
		}
		assignment.Perspective = perspective
	}
	if input.SubjectUserID != nil {
		if err := s.requireUsers(ctx, *input.SubjectUserID); err != nil {
			return nil, err
		}
		assignment.SubjectUserID = *input.SubjectUserID
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	return assignment, nil
}

// RemoveAssignment soft deletes an assignment, or hard deletes it with its responses when purge is set.
func (s *AssignmentService) RemoveAssignment(ctx context.Context, actor access.Actor, assignmentID uint64, purge bool) error {
	var (
		assignment *models.Assignment
		err        error
	)
	if purge {
		assignment, err = s.findAny(ctx, assignmentID)
	} else {
		assignment, err = s.assignments.FindByID(ctx, assignmentID)
	}
	if err != nil {
		return lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	if _, err := s.managedSession(ctx, actor, assignment.SessionID); err != nil {
		return err
	}

	if purge {
		err = s.assignments.Purge(ctx, assignmentID)
	} else {
		err = s.assignments.SoftDelete(ctx, assignmentID)
	}
	if err != nil {
		return lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	return nil
}

// RestoreAssignment brings back a soft-deleted assignment unless its tuple is live again.
func (s *AssignmentService) RestoreAssignment(ctx context.Context, actor access.Actor, assignmentID uint64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindDeleted(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	if _, err := s.managedSession(ctx, actor, assignment.SessionID); err != nil {
		return nil, err
	}

	if _, err := s.assignments.FindLive(ctx, assignment.SessionID, assignment.RespondentUserID, assignment.SubjectUserID, assignment.Perspective); err == nil {
		return nil, ErrAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}

	if err := s.assignments.Restore(ctx, assignmentID); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyAssigned
		}
		return nil, lookupError(err, ErrAssignmentNotFound, "assignment")
	}

	restored, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, ErrAssignmentNotFound, "assignment")
	}
	return restored, nil
}

// EnsureSelfAssignment returns the live SELF assignment of a user, creating it when missing.
// A concurrent creator is tolerated: the existing row is returned with created=false.
func (s *AssignmentService) EnsureSelfAssignment(ctx context.Context, sessionID, userID uint64) (*models.Assignment, bool, error) {
	existing, err := s.assignments.FindLive(ctx, sessionID, userID, userID, models.PerspectiveSelf)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check assignment: %w", err)
	}

	assignment := &models.Assignment{
		SessionID:        sessionID,
		RespondentUserID: userID,
		SubjectUserID:    userID,
		Perspective:      models.PerspectiveSelf,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, false, fmt.Errorf("failed to create assignment: %w", err)
		}
		existing, err := s.assignments.FindLive(ctx, sessionID, userID, userID, models.PerspectiveSelf)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reload assignment: %w", err)
		}
		return existing, false, nil
	}
	return assignment, true, nil
}

// managedSession loads a live session and requires the actor to manage its organization.
func (s *AssignmentService) managedSession(ctx context.Context, actor access.Actor, sessionID uint64) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound, "session")
	}
	if err := access.Authorize(actor, session.OrganizationID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *AssignmentService) findAny(ctx context.Context, id uint64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.assignments.FindDeleted(ctx, id)
	}
	return assignment, err
}

// requireUsers fails with ErrUserNotFound unless every id names a live user.
func (s *AssignmentService) requireUsers(ctx context.Context, ids ...uint64) error {
	unique := uniqueUint64(ids)
	if len(unique) == 0 {
		return nil
	}
	count, err := s.users.CountByIDs(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	if count != int64(len(unique)) {
		return ErrUserNotFound
	}
	return nil
}

func resolveSubject(perspective models.Perspective, respondentID uint64, subjectID *uint64) (uint64, error) {
	if subjectID != nil {
		return *subjectID, nil
	}
	if perspective == models.PerspectiveSelf {
		return respondentID, nil
	}
	return 0, ErrSubjectRequired
}
