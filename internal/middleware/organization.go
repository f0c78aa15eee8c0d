package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/constants"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"go.uber.org/zap"
)

// ResolveOrganization stores the authorized organization id of the request. Must run after LoadActor.
func ResolveOrganization(resolver *access.Resolver, opts access.Options, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		orgID, err := resolver.Resolve(c.Request.Context(), requestView(c), actor, opts)
		if err != nil {
			apierrors.RespondWithServiceError(c, log, err)
			c.Abort()
			return
		}

		if orgID != 0 {
			c.Set(constants.ContextKeyOrganizationID, orgID)
		}
		c.Next()
	}
}

// GetOrganizationID returns the organization id stored by ResolveOrganization.
func GetOrganizationID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(constants.ContextKeyOrganizationID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// requestView snapshots params, query, header and a JSON object body. The body is restored for the handler.
func requestView(c *gin.Context) access.Request {
	req := access.Request{
		Params: make(map[string]string, len(c.Params)),
		Query:  make(map[string]string),
		Header: c.Request.Header,
	}
	for _, p := range c.Params {
		req.Params[p.Key] = p.Value
	}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			req.Query[key] = values[0]
		}
	}

	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return req
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return req
	}

	var body map[string]interface{}
	if json.Unmarshal(raw, &body) == nil {
		req.Body = body
	}
	return req
}
