package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/constants"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"go.uber.org/zap"
)

// ActorLoader builds the actor of an authenticated user.
type ActorLoader interface {
	LoadActor(ctx context.Context, userID uint64) (access.Actor, error)
}

// LoadActor resolves the authenticated user's memberships once per request. Must run after RequireAuth.
func LoadActor(loader ActorLoader, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actor, err := loader.LoadActor(c.Request.Context(), userID)
		if err != nil {
			if apierrors.CodeOf(err) == apierrors.ErrCodeNotFound {
				// the account behind a still-valid session or token is gone
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.RespondWithServiceError(c, log, err)
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// GetActor returns the actor stored by LoadActor.
func GetActor(c *gin.Context) (access.Actor, bool) {
	v, ok := c.Get(constants.ContextKeyActor)
	if !ok {
		return access.Actor{}, false
	}
	actor, ok := v.(access.Actor)
	return actor, ok
}
