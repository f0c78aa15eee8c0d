package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/dto"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/services"
	"go.uber.org/zap"
)

type ResponseHandler struct {
	responseService *services.ResponseService
	log             *zap.Logger
}

func NewResponseHandler(responseService *services.ResponseService, log *zap.Logger) *ResponseHandler {
	return &ResponseHandler{
		responseService: responseService,
		log:             log,
	}
}

// UpsertResponse records an answer; 201 when created, 200 when an earlier answer was replaced
func (h *ResponseHandler) UpsertResponse(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	var req dto.UpsertResponseRequest
	if !bindJSON(c, &req) {
		return
	}

	response, created, err := h.responseService.UpsertResponse(c.Request.Context(), actor, req.ToInput(sessionID))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, response)
}

func (h *ResponseHandler) BulkUpsertResponses(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessionID, ok := parseID(c, "sessionId")
	if !ok {
		return
	}

	var req dto.BulkUpsertResponsesRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.responseService.BulkUpsertResponses(c.Request.Context(), actor, req.ToInputs(sessionID))
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ResponseHandler) ListResponses(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}

	responses, err := h.responseService.ListResponses(c.Request.Context(), actor, assignmentID)
	if err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"responses": responses,
	})
}

func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	responseID, ok := parseID(c, "responseId")
	if !ok {
		return
	}

	if err := h.responseService.DeleteResponse(c.Request.Context(), actor, responseID); err != nil {
		apierrors.RespondWithServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Response deleted successfully",
	})
}
