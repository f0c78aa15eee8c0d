package dto

import (
	"time"

	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/services"
	"github.com/yukikurage/assessment-api/internal/utils"
)

type CreateSessionRequest struct {
	TemplateID uint64    `json:"template_id" validate:"required"`
	TeamID     *uint64   `json:"team_id"`
	Name       string    `json:"name" validate:"required,max=255"`
	StartAt    time.Time `json:"start_at" validate:"required"`
	EndAt      time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
}

func (r CreateSessionRequest) ToInput(orgID uint64) services.CreateSessionInput {
	return services.CreateSessionInput{
		OrganizationID: orgID,
		TemplateID:     r.TemplateID,
		TeamID:         r.TeamID,
		Name:           r.Name,
		StartAt:        r.StartAt,
		EndAt:          r.EndAt,
	}
}

type UpdateSessionRequest struct {
	Name    *string              `json:"name" validate:"omitempty,max=255"`
	StartAt *time.Time           `json:"start_at"`
	EndAt   *time.Time           `json:"end_at"`
	TeamID  *uint64              `json:"team_id"`
	State   *models.SessionState `json:"state" validate:"omitempty,oneof=SCHEDULED IN_PROGRESS ANALYZING COMPLETED CANCELLED"`
	Force   bool                 `json:"force"`
}

func (r UpdateSessionRequest) ToInput() services.UpdateSessionInput {
	return services.UpdateSessionInput{
		Name:    r.Name,
		StartAt: r.StartAt,
		EndAt:   r.EndAt,
		TeamID:  r.TeamID,
		State:   r.State,
		Force:   r.Force,
	}
}

// SessionListResponse represents a paginated list of sessions
type SessionListResponse struct {
	Sessions   []models.Session         `json:"sessions"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

type AddAssignmentRequest struct {
	RespondentUserID uint64  `json:"respondent_user_id" validate:"required"`
	SubjectUserID    *uint64 `json:"subject_user_id"`
	Perspective      string  `json:"perspective" validate:"max=20"`
}

func (r AddAssignmentRequest) ToInput(sessionID uint64) services.AddAssignmentInput {
	return services.AddAssignmentInput{
		SessionID:        sessionID,
		RespondentUserID: r.RespondentUserID,
		SubjectUserID:    r.SubjectUserID,
		Perspective:      r.Perspective,
	}
}

// BulkAssignRequest either fans one respondent out to subjects or self-assigns a list of respondents.
type BulkAssignRequest struct {
	RespondentUserID  *uint64  `json:"respondent_user_id"`
	SubjectUserIDs    []uint64 `json:"subject_user_ids" validate:"omitempty,dive,required"`
	RespondentUserIDs []uint64 `json:"respondent_user_ids" validate:"omitempty,dive,required"`
	Perspective       string   `json:"perspective" validate:"max=20"`
}

func (r BulkAssignRequest) ToInput(sessionID uint64) services.BulkAssignInput {
	return services.BulkAssignInput{
		SessionID:         sessionID,
		RespondentUserID:  r.RespondentUserID,
		SubjectUserIDs:    r.SubjectUserIDs,
		RespondentUserIDs: r.RespondentUserIDs,
		Perspective:       r.Perspective,
	}
}

type BulkAssignResponse struct {
	Created int `json:"created"`
}

type UpdateAssignmentRequest struct {
	SubjectUserID *uint64 `json:"subject_user_id"`
	Perspective   *string `json:"perspective" validate:"omitempty,max=20"`
}

func (r UpdateAssignmentRequest) ToInput() services.UpdateAssignmentInput {
	return services.UpdateAssignmentInput{
		SubjectUserID: r.SubjectUserID,
		Perspective:   r.Perspective,
	}
}

type RedeemInviteRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}
