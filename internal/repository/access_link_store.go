package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
)

var _ access.LinkStore = (*GormAccessLinkStore)(nil)

// GormAccessLinkStore answers ownership and link lookups for access.Checker.
type GormAccessLinkStore struct {
	db *gorm.DB
}

// NewAccessLinkStore creates a new GormAccessLinkStore
func NewAccessLinkStore(db *gorm.DB) *GormAccessLinkStore {
	return &GormAccessLinkStore{db: db}
}

// ResourceOwner returns the creating organization of a live template or question bank
func (s *GormAccessLinkStore) ResourceOwner(ctx context.Context, kind access.ResourceKind, resourceID uint64) (uint64, error) {
	var owner struct{ OrganizationID uint64 }

	var model interface{}
	switch kind {
	case access.ResourceTemplate:
		model = &models.Template{}
	case access.ResourceQuestionBank:
		model = &models.QuestionBank{}
	default:
		return 0, fmt.Errorf("unknown resource kind %q", kind)
	}

	if err := s.db.WithContext(ctx).Model(model).
		Select("organization_id").
		Where("id = ?", resourceID).
		Take(&owner).Error; err != nil {
		return 0, err
	}
	return owner.OrganizationID, nil
}

// LinkLevel returns the level linked to orgID for the resource
func (s *GormAccessLinkStore) LinkLevel(ctx context.Context, kind access.ResourceKind, resourceID, orgID uint64) (models.AccessLevel, error) {
	switch kind {
	case access.ResourceTemplate:
		var link models.TemplateLink
		if err := s.db.WithContext(ctx).
			Where("template_id = ? AND organization_id = ?", resourceID, orgID).
			Take(&link).Error; err != nil {
			return "", err
		}
		return link.AccessLevel, nil
	case access.ResourceQuestionBank:
		var link models.QuestionBankLink
		if err := s.db.WithContext(ctx).
			Where("question_bank_id = ? AND organization_id = ?", resourceID, orgID).
			Take(&link).Error; err != nil {
			return "", err
		}
		return link.AccessLevel, nil
	}
	return "", fmt.Errorf("unknown resource kind %q", kind)
}

// TemplateOfSection returns the template owning a live section
func (s *GormAccessLinkStore) TemplateOfSection(ctx context.Context, sectionID uint64) (uint64, error) {
	var section models.Section
	if err := s.db.WithContext(ctx).Select("id", "template_id").Take(&section, sectionID).Error; err != nil {
		return 0, err
	}
	return section.TemplateID, nil
}

// TemplateOfTemplateQuestion returns the template owning a live template question through its section
func (s *GormAccessLinkStore) TemplateOfTemplateQuestion(ctx context.Context, templateQuestionID uint64) (uint64, error) {
	var row struct{ TemplateID uint64 }
	err := s.db.WithContext(ctx).Model(&models.TemplateQuestion{}).
		Select("sections.template_id").
		Joins("JOIN sections ON sections.id = template_questions.section_id").
		Where("template_questions.id = ?", templateQuestionID).
		Take(&row).Error
	if err != nil {
		return 0, err
	}
	return row.TemplateID, nil
}

// SessionOwner returns the organization running a live session, for organization inference from
// session-scoped routes
func (s *GormAccessLinkStore) SessionOwner(ctx context.Context, sessionID uint64) (uint64, error) {
	var session models.Session
	err := s.db.WithContext(ctx).Select("id", "organization_id").Take(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, access.ErrResourceNotFound
		}
		return 0, err
	}
	return session.OrganizationID, nil
}

// TemplateOwner returns the organization owning a live template, for organization inference from
// template routes
func (s *GormAccessLinkStore) TemplateOwner(ctx context.Context, templateID uint64) (uint64, error) {
	orgID, err := s.ResourceOwner(ctx, access.ResourceTemplate, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, access.ErrResourceNotFound
		}
		return 0, err
	}
	return orgID, nil
}
