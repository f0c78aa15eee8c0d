package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/dto"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/services"
	"go.uber.org/zap"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	progressService   *services.ProgressService
	log               *zap.Logger
}

func NewAssignmentHandler(assignmentService *services.AssignmentService, progressService *services.ProgressService, log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		progressService:   progressService,
		log:               log,
	}
}

func (h *AssignmentHandler) AddAssignment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	var req dto.AddAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentService.AddAssignment(c.Request.Context(), actor, req.ToInput(sessionID))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// BulkAssign creates the planned assignments in one transaction
func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	var req dto.BulkAssignRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.assignmentService.BulkAssign(c.Request.Context(), actor, req.ToInput(sessionID))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.BulkAssignResponse{Created: created})
}

func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.ListAssignments(c.Request.Context(), actor, sessionID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": assignments,
	})
}

func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetAssignment(c.Request.Context(), actor, assignmentID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	var req dto.UpdateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentService.UpdateAssignment(c.Request.Context(), actor, assignmentID, req.ToInput())
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// RemoveAssignment soft deletes; ?purge=true removes the row and its responses
func (h *AssignmentHandler) RemoveAssignment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	purge := c.Query("purge") == "true"
	if err := h.assignmentService.RemoveAssignment(c.Request.Context(), actor, assignmentID, purge); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Assignment removed successfully",
	})
}

func (h *AssignmentHandler) RestoreAssignment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.RestoreAssignment(c.Request.Context(), actor, assignmentID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) AssignmentProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	progress, err := h.progressService.AssignmentProgress(c.Request.Context(), actor, assignmentID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
