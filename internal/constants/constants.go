package constants

// Context and session keys
const (
	ContextKeyUserID         = "user_id"
	ContextKeyActor          = "actor"
	ContextKeyOrganizationID = "organization_id"
	ContextKeyRequestID      = "request_id"

	SessionKeyUserID = "user_id"
	SessionName      = "assessment_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Authentication
const (
	MinPasswordLength = 8
	BearerPrefix      = "Bearer "
)

// Slugs
const (
	SlugMaxLength          = 60
	SlugSuffixLength       = 6
	SlugGenerationAttempts = 5
)

// Conventional organization id keys tried when a route declares no explicit source.
const (
	OrganizationIDParam      = "orgId"
	OrganizationIDLongParam  = "organizationId"
	OrganizationIDHeader     = "X-Org-Id"
	OrganizationIDSnakeParam = "organization_id"
)
