package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/dto"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/middleware"
)

type actorOrg struct {
	actor access.Actor
	orgID uint64
}

// bindJSON decodes the body into req and runs its validate tags. It writes the 400 itself.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	if err := dto.Validate(req); err != nil {
		apierrors.BadRequestWithDetails(c, "Validation failed", dto.ValidationDetails(err))
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+param)
		return 0, false
	}
	return id, true
}

// optionalQueryID parses an optional positive id from the query string.
func optionalQueryID(c *gin.Context, key string) (*uint64, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+key)
		return nil, false
	}
	return &id, true
}

func currentActor(c *gin.Context) (access.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return actor, ok
}

func currentOrganization(c *gin.Context) (uint64, bool) {
	orgID, ok := middleware.GetOrganizationID(c)
	if !ok {
		apierrors.RespondWithError(c, apierrors.StatusForCode(apierrors.ErrCodeInvalidInput), access.ErrOrganizationIDRequired)
	}
	return orgID, ok
}

// scope returns the actor and acting organization, writing the error response when either is missing.
func scope(c *gin.Context) (actorOrg, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return actorOrg{}, false
	}
	orgID, ok := currentOrganization(c)
	if !ok {
		return actorOrg{}, false
	}
	return actorOrg{actor: actor, orgID: orgID}, true
}
