package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/dto"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/services"
	"github.com/yukikurage/assessment-api/internal/utils"
	"go.uber.org/zap"
)

// SessionHandler serves sessions and the read models built on them.
type SessionHandler struct {
	sessionService    *services.SessionService
	progressService   *services.ProgressService
	projectionService *services.ProjectionService
	inviteService     *services.InviteService
	log               *zap.Logger
}

func NewSessionHandler(
	sessionService *services.SessionService,
	progressService *services.ProgressService,
	projectionService *services.ProjectionService,
	inviteService *services.InviteService,
	log *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessionService:    sessionService,
		progressService:   progressService,
		projectionService: projectionService,
		inviteService:     inviteService,
		log:               log,
	}
}

// CreateSession schedules a session of a template in the resolved organization
func (h *SessionHandler) CreateSession(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), s.actor, req.ToInput(s.orgID))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ListSessions returns a page of sessions, optionally filtered by ?state=
func (h *SessionHandler) ListSessions(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}

	var state *models.SessionState
	if raw := c.Query("state"); raw != "" {
		st := models.SessionState(raw)
		if !st.IsValid() {
			apierrors.BadRequest(c, "Invalid state")
			return
		}
		state = &st
	}

	pagination := utils.GetPaginationParams(c)
	sessions, total, err := h.sessionService.ListSessions(c.Request.Context(), s.actor, s.orgID, state, pagination)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.SessionListResponse{
		Sessions:   sessions,
		Pagination: pagination.Response(total),
	})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), actor, sessionID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// UpdateSession edits the window or moves the state machine
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.UpdateSession(c.Request.Context(), actor, sessionID, req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), actor, sessionID); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session deleted successfully",
	})
}

// SessionProgress lists the progress of every assignment in the session
func (h *SessionHandler) SessionProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	progress, err := h.progressService.SessionProgress(c.Request.Context(), actor, sessionID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": progress,
	})
}

// UserProgress aggregates one respondent's progress, filtered by ?perspective= and ?subject_user_id=
func (h *SessionHandler) UserProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	subjectID, ok := optionalQueryID(c, "subject_user_id")
	if !ok {
		return
	}

	filter := services.UserProgressFilter{SubjectUserID: subjectID}
	if p := c.Query("perspective"); p != "" {
		filter.Perspective = &p
	}

	progress, err := h.progressService.UserProgress(c.Request.Context(), actor, sessionID, userID, filter)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Projection exports the session graph, with one assignment's answers when ?assignment_id= is set
func (h *SessionHandler) Projection(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}
	assignmentID, ok := optionalQueryID(c, "assignment_id")
	if !ok {
		return
	}

	projection, err := h.projectionService.BuildSessionProjection(c.Request.Context(), actor, sessionID, assignmentID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, projection)
}

// RedeemInvite joins the caller to a session through its invite code
func (h *SessionHandler) RedeemInvite(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.RedeemInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	redemption, err := h.inviteService.RedeemInvite(c.Request.Context(), actor, req.Code)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if redemption.AssignmentCreated {
		status = http.StatusCreated
	}
	c.JSON(status, redemption)
}
