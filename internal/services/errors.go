package services

import apierrors "github.com/yukikurage/assessment-api/internal/errors"

func notFound(message string) *apierrors.APIError {
	return apierrors.NewAPIError(apierrors.ErrCodeNotFound, message)
}

func invalidInput(message string) *apierrors.APIError {
	return apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, message)
}

func invalidOperation(message string) *apierrors.APIError {
	return apierrors.NewAPIError(apierrors.ErrCodeInvalidOperation, message)
}

func alreadyExists(message string) *apierrors.APIError {
	return apierrors.NewAPIError(apierrors.ErrCodeAlreadyExists, message)
}

func forbidden(message string) *apierrors.APIError {
	return apierrors.NewAPIError(apierrors.ErrCodeForbidden, message)
}

func invalidCredentials(message string) *apierrors.APIError {
	return apierrors.NewAPIError(apierrors.ErrCodeInvalidCredentials, message)
}

// Shared validation errors
var (
	ErrInvalidPerspective = invalidInput("invalid perspective")
	ErrUserNotFound       = notFound("user not found")
)

// Organization errors
var (
	ErrOrganizationNotFound       = notFound("organization not found")
	ErrInvalidOrganizationName    = invalidInput("organization name cannot be empty")
	ErrInviteCodeGenerationFailed = apierrors.NewAPIError(apierrors.ErrCodeInternalError, "failed to generate invite code")
	ErrInvalidInviteCode          = notFound("invalid invite code")
	ErrAlreadyOrganizationMember  = alreadyExists("user is already a member of this organization")
	ErrCannotRemoveYourself       = invalidOperation("cannot remove yourself from the organization")
	ErrOrganizationMemberNotFound = notFound("organization member not found")
	ErrInvalidRoles               = invalidInput("at least one valid role is required")
	ErrOwnerRoleRequired          = apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions, "only owners may grant the owner role")
	ErrTeamNotFound               = notFound("team not found")
	ErrInvalidTeamName            = invalidInput("team name cannot be empty")
	ErrTeamNotInOrganization      = invalidInput("team does not belong to the session organization")
)

// Question bank errors
var (
	ErrQuestionBankNotFound = notFound("question bank not found")
	ErrOptionSetNotFound    = notFound("option set not found")
	ErrQuestionNotFound     = notFound("question not found")
	ErrInvalidBankName      = invalidInput("question bank name cannot be empty")
	ErrInvalidOptionSetName = invalidInput("option set name cannot be empty")
	ErrInvalidQuestionText  = invalidInput("question text cannot be empty")
	ErrInvalidQuestionType  = invalidInput("invalid question type")
	ErrInvalidScaleRange    = invalidInput("min scale must not exceed max scale")
	ErrOptionsRequired      = invalidInput("choice questions need an option set or inline options")
	ErrOptionSourceConflict = invalidInput("option set and inline options are mutually exclusive")
	ErrOptionsNotAllowed    = invalidInput("only choice questions take options")
	ErrInvalidOptionValue   = invalidInput("option values must be non-empty")
	ErrDuplicateOptionValue = invalidInput("option values must be unique")
	ErrOptionSetForeignBank = invalidInput("option set belongs to another question bank")
	ErrInvalidAccessLevel   = invalidInput("invalid access level")
	ErrCannotLinkToOwner    = invalidInput("the owning organization already has full access")
)

// Template errors
var (
	ErrTemplateNotFound         = notFound("template not found")
	ErrSectionNotFound          = notFound("section not found")
	ErrTemplateQuestionNotFound = notFound("template question not found")
	ErrInvalidTemplateName      = invalidInput("template name cannot be empty")
	ErrInvalidSlug              = invalidInput("slug must contain letters or digits")
	ErrSlugTaken                = alreadyExists("slug already in use")
	ErrSlugGenerationFailed     = apierrors.NewAPIError(apierrors.ErrCodeInternalError, "failed to generate a unique slug")
	ErrInvalidTemplateState     = invalidInput("invalid template state")
	ErrTemplateBackToDraft      = invalidOperation("a template cannot return to DRAFT")
	ErrInvalidVersion           = invalidInput("version must be positive")
	ErrInvalidSectionTitle      = invalidInput("section title cannot be empty")
	ErrNotAPermutation          = invalidInput("ids must list every existing item exactly once")
	ErrInvalidMeta              = invalidInput("meta must be a JSON object")
)

// Session errors
var (
	ErrSessionNotFound           = notFound("session not found")
	ErrInvalidSessionName        = invalidInput("session name cannot be empty")
	ErrInvalidSessionWindow      = invalidInput("end must be after start")
	ErrTemplateNotActive         = invalidOperation("template must be ACTIVE to schedule a session")
	ErrInvalidSessionState       = invalidInput("invalid session state")
	ErrIllegalSessionTransition  = invalidOperation("illegal session state transition")
	ErrSessionStateConflict      = invalidOperation("session state changed concurrently")
	ErrSessionClosed             = invalidOperation("session no longer accepts participants")
	ErrSessionNotAcceptingAnswer = invalidOperation("session is not accepting responses")
)

// Assignment errors
var (
	ErrAssignmentNotFound  = notFound("assignment not found")
	ErrSubjectRequired     = invalidInput("subject is required for non-SELF perspectives")
	ErrAlreadyAssigned     = alreadyExists("assignment already exists")
	ErrInvalidBulkMode     = invalidInput("pass either one respondent with subject ids or a list of respondent ids")
	ErrSelfFanOut          = invalidInput("fanning out to subjects requires a non-SELF perspective")
	ErrAssignmentForbidden = forbidden("only the respondent or a manager may view this assignment")
)

// Response errors
var (
	ErrResponseNotFound      = notFound("response not found")
	ErrResponseForbidden     = forbidden("only the respondent or a manager may act on these responses")
	ErrSessionMismatch       = invalidInput("assignment does not belong to this session")
	ErrTemplateMismatch      = invalidInput("question does not belong to the session template")
	ErrPerspectiveNotAllowed = invalidInput("question does not apply to the assignment perspective")
	ErrScaleValueRequired    = invalidInput("scale value is required")
	ErrScaleValueOutOfRange  = invalidInput("scale value is out of range")
	ErrTextValueRequired     = invalidInput("text value is required")
	ErrBooleanValueInvalid   = invalidInput("boolean value is not recognised")
	ErrOptionValueRequired   = invalidInput("option value is required")
	ErrOptionValuesRequired  = invalidInput("at least one option value is required")
	ErrResponseOptionInvalid = invalidInput("option value is not offered by the question")
	ErrUnsupportedAnswerType = invalidInput("unsupported question type")
)

// Progress errors
var (
	ErrProgressForbidden = forbidden("only the user or a manager may read this progress")
)
