package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
)

type ResourceKind string

const (
	ResourceTemplate     ResourceKind = "template"
	ResourceQuestionBank ResourceKind = "question_bank"
)

// LinkStore exposes ownership and link records. Lookups return gorm.ErrRecordNotFound when absent.
type LinkStore interface {
	ResourceOwner(ctx context.Context, kind ResourceKind, resourceID uint64) (uint64, error)
	LinkLevel(ctx context.Context, kind ResourceKind, resourceID, orgID uint64) (models.AccessLevel, error)
	TemplateOfSection(ctx context.Context, sectionID uint64) (uint64, error)
	TemplateOfTemplateQuestion(ctx context.Context, templateQuestionID uint64) (uint64, error)
}

// Checker computes the access level an organization holds over a shared resource.
type Checker struct {
	links LinkStore
}

func NewChecker(links LinkStore) *Checker {
	return &Checker{links: links}
}

// Level returns ADMIN for the creating organization and the linked level otherwise.
func (c *Checker) Level(ctx context.Context, kind ResourceKind, resourceID, orgID uint64) (models.AccessLevel, error) {
	owner, err := c.links.ResourceOwner(ctx, kind, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrResourceNotFound
		}
		return "", fmt.Errorf("failed to load %s owner: %w", kind, err)
	}
	if owner == orgID {
		return models.AccessAdmin, nil
	}

	level, err := c.links.LinkLevel(ctx, kind, resourceID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoResourceLink
		}
		return "", fmt.Errorf("failed to load %s link: %w", kind, err)
	}
	return level, nil
}

// Require checks that actor belongs to orgID and that orgID holds at least required over the resource.
func (c *Checker) Require(ctx context.Context, actor Actor, kind ResourceKind, resourceID, orgID uint64, required models.AccessLevel) (models.AccessLevel, error) {
	if err := Authorize(actor, orgID, nil, MatchAny); err != nil {
		return "", err
	}

	level, err := c.Level(ctx, kind, resourceID, orgID)
	if actor.IsSuperAdmin() && (err == nil || errors.Is(err, ErrNoResourceLink)) {
		return models.AccessAdmin, nil
	}
	if err != nil {
		return "", err
	}
	if !level.Satisfies(required) {
		return level, ErrInsufficientAccessLevel.WithDetails(map[string]models.AccessLevel{
			"required": required,
			"granted":  level,
		})
	}
	return level, nil
}

// TemplateTarget names a template directly or through one of its nested resources.
type TemplateTarget struct {
	TemplateID         uint64
	SectionID          uint64
	TemplateQuestionID uint64
}

// ResolveTemplateID walks nested resources up to their template.
func (c *Checker) ResolveTemplateID(ctx context.Context, target TemplateTarget) (uint64, error) {
	var (
		id  uint64
		err error
	)
	switch {
	case target.TemplateID != 0:
		return target.TemplateID, nil
	case target.SectionID != 0:
		id, err = c.links.TemplateOfSection(ctx, target.SectionID)
	case target.TemplateQuestionID != 0:
		id, err = c.links.TemplateOfTemplateQuestion(ctx, target.TemplateQuestionID)
	default:
		return 0, ErrAmbiguousTemplateTarget
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrResourceNotFound
		}
		return 0, fmt.Errorf("failed to resolve template: %w", err)
	}
	return id, nil
}

// RequireTemplate resolves target to its template and checks the organization's level over it.
func (c *Checker) RequireTemplate(ctx context.Context, actor Actor, target TemplateTarget, orgID uint64, required models.AccessLevel) (uint64, error) {
	templateID, err := c.ResolveTemplateID(ctx, target)
	if err != nil {
		return 0, err
	}
	if _, err := c.Require(ctx, actor, ResourceTemplate, templateID, orgID, required); err != nil {
		return 0, err
	}
	return templateID, nil
}
