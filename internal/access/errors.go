package access

import apierrors "github.com/yukikurage/assessment-api/internal/errors"

var (
	ErrOrganizationIDRequired  = apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, "organization id is required")
	ErrInvalidOrganizationID   = apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, "organization id must be a positive integer")
	ErrNotOrganizationMember   = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "not a member of this organization")
	ErrMissingOrganizationRole = apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions, "missing required organization role")
	ErrResourceNotFound        = apierrors.NewAPIError(apierrors.ErrCodeNotFound, "resource not found")
	ErrNoResourceLink          = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "organization has no access to this resource")
	ErrInsufficientAccessLevel = apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions, "insufficient access level for this resource")
	ErrAmbiguousTemplateTarget = apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, "pass a template, section or template question id")
)
