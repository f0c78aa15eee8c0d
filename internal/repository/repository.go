package repository

import (
	"context"
	"time"

	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithPersonalOrganization creates a user, their personal organization,
	// and corresponding membership within a single transaction.
	CreateWithPersonalOrganization(ctx context.Context, user *models.User, org *models.Organization, member *models.OrganizationMember) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ctx context.Context, ids []uint64) (int64, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization and its first member atomically
	CreateWithOwner(ctx context.Context, org *models.Organization, owner *models.OrganizationMember) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	// FindByInviteCode finds an organization by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Organization, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// AddMember adds a member to an organization
	AddMember(ctx context.Context, member *models.OrganizationMember) error

	// UpdateMemberRoles replaces the role set of a member
	UpdateMemberRoles(ctx context.Context, organizationID, userID uint64, roles []models.OrganizationRole) error

	// RemoveMember removes a member from an organization
	RemoveMember(ctx context.Context, organizationID, userID uint64) error

	// FindMember finds a specific organization member
	FindMember(ctx context.Context, organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembersByUserID lists all organizations a user is a member of
	ListMembersByUserID(ctx context.Context, userID uint64) ([]models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(ctx context.Context, organizationID uint64) ([]models.OrganizationMember, error)

	// CreateTeam creates a team inside an organization
	CreateTeam(ctx context.Context, team *models.Team) error

	// FindTeam finds a team by ID
	FindTeam(ctx context.Context, id uint64) (*models.Team, error)
}

// QuestionBankRepository defines the interface for question bank, option set and question data access
type QuestionBankRepository interface {
	// CreateWithOwnerLink creates a bank and the ADMIN link of its owning organization
	CreateWithOwnerLink(ctx context.Context, bank *models.QuestionBank) error

	FindByID(ctx context.Context, id uint64) (*models.QuestionBank, error)

	// ListForOrganization lists banks owned by or linked to the organization
	ListForOrganization(ctx context.Context, organizationID uint64) ([]models.QuestionBank, error)

	// UpsertLink creates or updates the link of an organization to a bank
	UpsertLink(ctx context.Context, link *models.QuestionBankLink) error

	// CreateOptionSet creates an option set with its options
	CreateOptionSet(ctx context.Context, set *models.OptionSet) error

	// FindOptionSet finds an option set with its ordered options
	FindOptionSet(ctx context.Context, id uint64) (*models.OptionSet, error)

	// ReplaceOptions deletes the options of a set and recreates them in one transaction
	ReplaceOptions(ctx context.Context, setID uint64, options []models.Option) error

	// CreateQuestion creates a question with its inline options
	CreateQuestion(ctx context.Context, question *models.Question) error

	// FindQuestion finds a question with its option set and inline options
	FindQuestion(ctx context.Context, id uint64) (*models.Question, error)

	// UpdateQuestion saves a question; a non-nil options slice replaces its inline options
	UpdateQuestion(ctx context.Context, question *models.Question, options []models.Option) error

	// DeleteQuestion soft deletes a question
	DeleteQuestion(ctx context.Context, id uint64) error

	// ListQuestions lists the live questions of a bank
	ListQuestions(ctx context.Context, bankID uint64) ([]models.Question, error)
}

// TemplateRepository defines the interface for template data access
type TemplateRepository interface {
	// CreateWithOwnerLink creates a template and the ADMIN link of its owning organization
	CreateWithOwnerLink(ctx context.Context, template *models.Template) error

	FindByID(ctx context.Context, id uint64) (*models.Template, error)

	// FindGraph loads a template with ordered sections, ordered questions and their options
	FindGraph(ctx context.Context, id uint64) (*models.Template, error)

	// SlugExists reports whether any template, live or deleted, uses slug
	SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error)

	// ListForOrganization lists templates owned by or linked to the organization
	ListForOrganization(ctx context.Context, organizationID uint64) ([]models.Template, error)

	Update(ctx context.Context, template *models.Template) error

	// Delete soft deletes a template
	Delete(ctx context.Context, id uint64) error

	// UpsertLink creates or updates the link of an organization to a template
	UpsertLink(ctx context.Context, link *models.TemplateLink) error

	// ListQuestionPerspectives returns the perspective sets of every live template question
	ListQuestionPerspectives(ctx context.Context, templateID uint64) ([]models.TemplateQuestion, error)
}

// SectionRepository defines the interface for section and template question data access
type SectionRepository interface {
	// CreateSection appends a section after the existing ones
	CreateSection(ctx context.Context, section *models.Section) error
	FindSection(ctx context.Context, id uint64) (*models.Section, error)
	UpdateSection(ctx context.Context, section *models.Section) error
	DeleteSection(ctx context.Context, id uint64) error
	ListSections(ctx context.Context, templateID uint64) ([]models.Section, error)

	// ReorderSections sets order = index in ids within one transaction
	ReorderSections(ctx context.Context, templateID uint64, ids []uint64) error

	// CompactSectionOrder renumbers live sections 0..n-1
	CompactSectionOrder(ctx context.Context, templateID uint64) error

	// CreateTemplateQuestion appends a question link after the existing ones
	CreateTemplateQuestion(ctx context.Context, link *models.TemplateQuestion) error

	// FindTemplateQuestion finds a link with its section and question (options included)
	FindTemplateQuestion(ctx context.Context, id uint64) (*models.TemplateQuestion, error)
	UpdateTemplateQuestion(ctx context.Context, link *models.TemplateQuestion) error
	DeleteTemplateQuestion(ctx context.Context, id uint64) error
	ListSectionQuestions(ctx context.Context, sectionID uint64) ([]models.TemplateQuestion, error)

	// ReplaceSectionQuestions soft deletes every link of a section and recreates links in one transaction
	ReplaceSectionQuestions(ctx context.Context, sectionID uint64, links []models.TemplateQuestion) error

	// ReorderSectionQuestions sets order = index in ids within one transaction
	ReorderSectionQuestions(ctx context.Context, sectionID uint64, ids []uint64) error

	// CompactQuestionOrder renumbers live links of a section 0..n-1
	CompactQuestionOrder(ctx context.Context, sectionID uint64) error
}

// SessionFilter holds filtering options for listing sessions
type SessionFilter struct {
	OrganizationID uint64
	State          *models.SessionState
	Pagination     utils.PaginationParams
}

// SessionUpdate carries the non-state fields of a session update
type SessionUpdate struct {
	Name    *string
	StartAt *time.Time
	EndAt   *time.Time
	TeamID  *uint64
}

// SessionTransition moves a session from From to To
type SessionTransition struct {
	From models.SessionState
	To   models.SessionState
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uint64) (*models.Session, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]models.Session, int64, error)

	// Update applies field changes and an optional conditional transition atomically.
	// It reports false when another writer changed the state first.
	Update(ctx context.Context, id uint64, update SessionUpdate, transition *SessionTransition) (bool, error)

	// Cancel forces the state to CANCELLED and soft deletes the session
	Cancel(ctx context.Context, id uint64) error
}

// AssignmentFilter narrows assignment listings; nil fields match everything
type AssignmentFilter struct {
	SessionID        uint64
	RespondentUserID *uint64
	SubjectUserID    *uint64
	Perspective      *models.Perspective
}

// AssignmentRepository defines the interface for assignment data access
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error

	// CreateBatch inserts all assignments in one transaction
	CreateBatch(ctx context.Context, assignments []models.Assignment) error

	FindByID(ctx context.Context, id uint64) (*models.Assignment, error)

	// FindDeleted finds a soft-deleted assignment
	FindDeleted(ctx context.Context, id uint64) (*models.Assignment, error)

	// FindLive finds the live assignment with the given tuple
	FindLive(ctx context.Context, sessionID, respondentUserID, subjectUserID uint64, perspective models.Perspective) (*models.Assignment, error)

	// List lists live assignments, optionally with respondent and subject identities
	List(ctx context.Context, filter AssignmentFilter, withUsers bool) ([]models.Assignment, error)

	Update(ctx context.Context, assignment *models.Assignment) error

	// SoftDelete marks an assignment deleted, keeping its responses
	SoftDelete(ctx context.Context, id uint64) error

	// Restore clears the deleted mark
	Restore(ctx context.Context, id uint64) error

	// Purge hard deletes an assignment and its responses in one transaction
	Purge(ctx context.Context, id uint64) error
}

// ResponseRepository defines the interface for response data access
type ResponseRepository interface {
	Create(ctx context.Context, response *models.Response) error
	FindByID(ctx context.Context, id uint64) (*models.Response, error)

	// FindByPair finds the response of an assignment to a template question
	FindByPair(ctx context.Context, assignmentID, templateQuestionID uint64) (*models.Response, error)

	// Save writes every value channel of an existing response
	Save(ctx context.Context, response *models.Response) error

	// Delete hard deletes a response
	Delete(ctx context.Context, id uint64) error

	ListByAssignment(ctx context.Context, assignmentID uint64) ([]models.Response, error)

	// CountByAssignments counts responses per assignment id
	CountByAssignments(ctx context.Context, assignmentIDs []uint64) (map[uint64]int64, error)
}
