package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/constants"
	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"github.com/yukikurage/assessment-api/internal/repository"
	"github.com/yukikurage/assessment-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// TemplateService manages templates and their ordered section/question graph.
type TemplateService struct {
	templates repository.TemplateRepository
	sections  repository.SectionRepository
	banks     repository.QuestionBankRepository
	orgs      repository.OrganizationRepository
	checker   *access.Checker
	log       *zap.Logger
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(
	templates repository.TemplateRepository,
	sections repository.SectionRepository,
	banks repository.QuestionBankRepository,
	orgs repository.OrganizationRepository,
	checker *access.Checker,
	log *zap.Logger,
) *TemplateService {
	return &TemplateService{
		templates: templates,
		sections:  sections,
		banks:     banks,
		orgs:      orgs,
		checker:   checker,
		log:       log,
	}
}

// CreateTemplateInput represents parameters to create a new template.
type CreateTemplateInput struct {
	OrganizationID uint64
	Name           string
	Slug           string
	Description    string
	Meta           map[string]interface{}
}

// CreateTemplate creates a DRAFT template owned by the organization.
func (s *TemplateService) CreateTemplate(ctx context.Context, actor access.Actor, input CreateTemplateInput) (*models.Template, error) {
	if err := access.Authorize(actor, input.OrganizationID, nil, access.MatchAny); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidTemplateName
	}

	meta, err := encodeMeta(input.Meta)
	if err != nil {
		return nil, err
	}

	var slug string
	if strings.TrimSpace(input.Slug) != "" {
		slug, err = s.claimSlug(ctx, input.Slug, 0)
	} else {
		slug, err = s.generateSlug(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	template := &models.Template{
		OrganizationID: input.OrganizationID,
		Name:           name,
		Slug:           slug,
		Description:    input.Description,
		Version:        1,
		State:          models.TemplateStateDraft,
		Meta:           meta,
	}

	if err := s.templates.CreateWithOwnerLink(ctx, template); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return template, nil
}

// ListTemplates returns templates owned by or shared with the organization.
func (s *TemplateService) ListTemplates(ctx context.Context, actor access.Actor, orgID uint64) ([]models.Template, error) {
	if err := access.Authorize(actor, orgID, nil, access.MatchAny); err != nil {
		return nil, err
	}

	templates, err := s.templates.ListForOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// GetTemplate returns the ordered template graph.
func (s *TemplateService) GetTemplate(ctx context.Context, actor access.Actor, orgID, templateID uint64) (*models.Template, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateID: templateID}, orgID, models.AccessUse); err != nil {
		return nil, err
	}

	template, err := s.templates.FindGraph(ctx, templateID)
	if err != nil {
		return nil, lookupError(err, ErrTemplateNotFound, "template")
	}
	return template, nil
}

// UpdateTemplateInput carries optional template changes.
type UpdateTemplateInput struct {
	Name        *string
	Slug        *string
	Description *string
	Meta        map[string]interface{}
	State       *models.TemplateState
	Version     *int
}

// UpdateTemplate applies changes; a template that left DRAFT never returns to it.
func (s *TemplateService) UpdateTemplate(ctx context.Context, actor access.Actor, orgID, templateID uint64, input UpdateTemplateInput) (*models.Template, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateID: templateID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, lookupError(err, ErrTemplateNotFound, "template")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidTemplateName
		}
		template.Name = name
	}
	if input.Slug != nil {
		slug, err := s.claimSlug(ctx, *input.Slug, template.ID)
		if err != nil {
			return nil, err
		}
		template.Slug = slug
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if input.Meta != nil {
		meta, err := encodeMeta(input.Meta)
		if err != nil {
			return nil, err
		}
		template.Meta = meta
	}
	if input.Version != nil {
		if *input.Version < 1 {
			return nil, ErrInvalidVersion
		}
		template.Version = *input.Version
	}
	if input.State != nil {
		next := *input.State
		if !next.IsValid() {
			return nil, ErrInvalidTemplateState.WithDetails(map[string]string{"state": string(next)})
		}
		if !template.State.CanTransitionTo(next) {
			return nil, ErrTemplateBackToDraft
		}
		template.State = next
	}

	if err := s.templates.Update(ctx, template); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

// DeleteTemplate soft deletes a template; only organizations with ADMIN access may do so.
func (s *TemplateService) DeleteTemplate(ctx context.Context, actor access.Actor, orgID, templateID uint64) error {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateID: templateID}, orgID, models.AccessAdmin); err != nil {
		return err
	}

	if err := s.templates.Delete(ctx, templateID); err != nil {
		return lookupError(err, ErrTemplateNotFound, "template")
	}
	return nil
}

// LinkTemplateInput shares a template with another organization.
type LinkTemplateInput struct {
	TemplateID           uint64
	TargetOrganizationID uint64
	Level                models.AccessLevel
}

// LinkTemplate grants or changes another organization's access level.
func (s *TemplateService) LinkTemplate(ctx context.Context, actor access.Actor, orgID uint64, input LinkTemplateInput) (*models.TemplateLink, error) {
	if err := access.Authorize(actor, orgID, models.ManagerRoles, access.MatchAny); err != nil {
		return nil, err
	}
	if !input.Level.IsValid() {
		return nil, ErrInvalidAccessLevel
	}
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateID: input.TemplateID}, orgID, models.AccessAdmin); err != nil {
		return nil, err
	}

	template, err := s.templates.FindByID(ctx, input.TemplateID)
	if err != nil {
		return nil, lookupError(err, ErrTemplateNotFound, "template")
	}
	if template.OrganizationID == input.TargetOrganizationID {
		return nil, ErrCannotLinkToOwner
	}
	if _, err := s.orgs.FindByID(ctx, input.TargetOrganizationID); err != nil {
		return nil, lookupError(err, ErrOrganizationNotFound, "organization")
	}

	link := &models.TemplateLink{
		TemplateID:     input.TemplateID,
		OrganizationID: input.TargetOrganizationID,
		AccessLevel:    input.Level,
	}
	if err := s.templates.UpsertLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to link template: %w", err)
	}
	return link, nil
}

// CreateSectionInput represents parameters to append a section.
type CreateSectionInput struct {
	TemplateID  uint64
	Title       string
	Description string
}

// CreateSection appends a section at the end of the template.
func (s *TemplateService) CreateSection(ctx context.Context, actor access.Actor, orgID uint64, input CreateSectionInput) (*models.Section, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateID: input.TemplateID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidSectionTitle
	}

	section := &models.Section{
		TemplateID:  input.TemplateID,
		Title:       title,
		Description: input.Description,
	}
	if err := s.sections.CreateSection(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return section, nil
}

// UpdateSectionInput carries optional section changes.
type UpdateSectionInput struct {
	Title       *string
	Description *string
}

// UpdateSection renames or re-describes a section.
func (s *TemplateService) UpdateSection(ctx context.Context, actor access.Actor, orgID, sectionID uint64, input UpdateSectionInput) (*models.Section, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{SectionID: sectionID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	section, err := s.sections.FindSection(ctx, sectionID)
	if err != nil {
		return nil, lookupError(err, ErrSectionNotFound, "section")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidSectionTitle
		}
		section.Title = title
	}
	if input.Description != nil {
		section.Description = *input.Description
	}

	if err := s.sections.UpdateSection(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}
	return section, nil
}

// DeleteSection soft deletes a section and compacts the order of the remaining ones.
func (s *TemplateService) DeleteSection(ctx context.Context, actor access.Actor, orgID, sectionID uint64) error {
	templateID, err := s.requireTemplate(ctx, actor, access.TemplateTarget{SectionID: sectionID}, orgID, models.AccessEdit)
	if err != nil {
		return err
	}

	if err := s.sections.DeleteSection(ctx, sectionID); err != nil {
		return lookupError(err, ErrSectionNotFound, "section")
	}

	if err := s.sections.CompactSectionOrder(ctx, templateID); err != nil {
		s.log.Warn("failed to compact section order",
			zap.Uint64("template_id", templateID),
			zap.Error(err),
		)
	}
	return nil
}

// ReorderSections reorders all live sections of a template; ids must be a permutation of them.
func (s *TemplateService) ReorderSections(ctx context.Context, actor access.Actor, orgID, templateID uint64, ids []uint64) ([]models.Section, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateID: templateID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	current, err := s.sections.ListSections(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	if !isPermutation(sectionIDs(current), ids) {
		return nil, ErrNotAPermutation
	}

	if err := s.sections.ReorderSections(ctx, templateID, ids); err != nil {
		return nil, fmt.Errorf("failed to reorder sections: %w", err)
	}

	sections, err := s.sections.ListSections(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

// TemplateQuestionInput places one bank question into a section.
type TemplateQuestionInput struct {
	QuestionID   uint64
	Required     bool
	Perspectives []string
}

// AddTemplateQuestion appends a question link to a section.
func (s *TemplateService) AddTemplateQuestion(ctx context.Context, actor access.Actor, orgID, sectionID uint64, input TemplateQuestionInput) (*models.TemplateQuestion, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{SectionID: sectionID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	link, err := s.buildLink(ctx, actor, orgID, input)
	if err != nil {
		return nil, err
	}
	link.SectionID = sectionID

	if err := s.sections.CreateTemplateQuestion(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to add question to section: %w", err)
	}
	return link, nil
}

// SetSectionQuestions atomically replaces every question link of a section.
func (s *TemplateService) SetSectionQuestions(ctx context.Context, actor access.Actor, orgID, sectionID uint64, inputs []TemplateQuestionInput) ([]models.TemplateQuestion, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{SectionID: sectionID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	links := make([]models.TemplateQuestion, 0, len(inputs))
	for _, input := range inputs {
		link, err := s.buildLink(ctx, actor, orgID, input)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}

	if err := s.sections.ReplaceSectionQuestions(ctx, sectionID, links); err != nil {
		return nil, fmt.Errorf("failed to replace section questions: %w", err)
	}
	return links, nil
}

// UpdateTemplateQuestionInput carries optional link changes.
type UpdateTemplateQuestionInput struct {
	Required     *bool
	Perspectives *[]string
}

// UpdateTemplateQuestion changes the required flag or the perspective set of a link.
func (s *TemplateService) UpdateTemplateQuestion(ctx context.Context, actor access.Actor, orgID, linkID uint64, input UpdateTemplateQuestionInput) (*models.TemplateQuestion, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateQuestionID: linkID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	link, err := s.sections.FindTemplateQuestion(ctx, linkID)
	if err != nil {
		return nil, lookupError(err, ErrTemplateQuestionNotFound, "template question")
	}

	if input.Required != nil {
		link.Required = *input.Required
	}
	if input.Perspectives != nil {
		perspectives, err := parsePerspectiveSet(*input.Perspectives)
		if err != nil {
			return nil, err
		}
		link.Perspectives = perspectives
	}

	if err := s.sections.UpdateTemplateQuestion(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to update template question: %w", err)
	}
	return link, nil
}

// DeleteTemplateQuestion soft deletes a link and compacts its siblings' order.
// A failed compaction only affects display order and is logged.
func (s *TemplateService) DeleteTemplateQuestion(ctx context.Context, actor access.Actor, orgID, linkID uint64) error {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{TemplateQuestionID: linkID}, orgID, models.AccessEdit); err != nil {
		return err
	}

	link, err := s.sections.FindTemplateQuestion(ctx, linkID)
	if err != nil {
		return lookupError(err, ErrTemplateQuestionNotFound, "template question")
	}

	if err := s.sections.DeleteTemplateQuestion(ctx, linkID); err != nil {
		return lookupError(err, ErrTemplateQuestionNotFound, "template question")
	}

	if err := s.sections.CompactQuestionOrder(ctx, link.SectionID); err != nil {
		s.log.Warn("failed to compact template question order",
			zap.Uint64("section_id", link.SectionID),
			zap.Error(err),
		)
	}
	return nil
}

// ReorderSectionQuestions reorders all live links of a section; ids must be a permutation of them.
func (s *TemplateService) ReorderSectionQuestions(ctx context.Context, actor access.Actor, orgID, sectionID uint64, ids []uint64) ([]models.TemplateQuestion, error) {
	if _, err := s.requireTemplate(ctx, actor, access.TemplateTarget{SectionID: sectionID}, orgID, models.AccessEdit); err != nil {
		return nil, err
	}

	current, err := s.sections.ListSectionQuestions(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list section questions: %w", err)
	}
	currentIDs := make([]uint64, len(current))
	for i, link := range current {
		currentIDs[i] = link.ID
	}
	if !isPermutation(currentIDs, ids) {
		return nil, ErrNotAPermutation
	}

	if err := s.sections.ReorderSectionQuestions(ctx, sectionID, ids); err != nil {
		return nil, fmt.Errorf("failed to reorder section questions: %w", err)
	}

	links, err := s.sections.ListSectionQuestions(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list section questions: %w", err)
	}
	return links, nil
}

func (s *TemplateService) requireTemplate(ctx context.Context, actor access.Actor, target access.TemplateTarget, orgID uint64, level models.AccessLevel) (uint64, error) {
	templateID, err := s.checker.RequireTemplate(ctx, actor, target, orgID, level)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrResourceNotFound) && target.TemplateQuestionID != 0 && target.SectionID == 0 && target.TemplateID == 0:
			return 0, ErrTemplateQuestionNotFound
		case errors.Is(err, access.ErrResourceNotFound) && target.SectionID != 0 && target.TemplateID == 0:
			return 0, ErrSectionNotFound
		}
		return 0, accessError(err, ErrTemplateNotFound)
	}
	return templateID, nil
}

// buildLink validates a question link, requiring USE access on the question's bank.
func (s *TemplateService) buildLink(ctx context.Context, actor access.Actor, orgID uint64, input TemplateQuestionInput) (*models.TemplateQuestion, error) {
	perspectives, err := parsePerspectiveSet(input.Perspectives)
	if err != nil {
		return nil, err
	}

	question, err := s.banks.FindQuestion(ctx, input.QuestionID)
	if err != nil {
		return nil, lookupError(err, ErrQuestionNotFound, "question")
	}
	if _, err := s.checker.Require(ctx, actor, access.ResourceQuestionBank, question.QuestionBankID, orgID, models.AccessUse); err != nil {
		return nil, accessError(err, ErrQuestionBankNotFound)
	}

	return &models.TemplateQuestion{
		QuestionID:   question.ID,
		Required:     input.Required,
		Perspectives: perspectives,
	}, nil
}

// claimSlug normalizes a caller-supplied slug and checks it is free.
func (s *TemplateService) claimSlug(ctx context.Context, raw string, excludeID uint64) (string, error) {
	slug := utils.Slugify(raw)
	if strings.Trim(raw, " -_") == "" {
		return "", ErrInvalidSlug
	}

	taken, err := s.templates.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return "", ErrSlugTaken
	}
	return slug, nil
}

// generateSlug derives a slug from the name plus a random suffix, retrying on collisions.
func (s *TemplateService) generateSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	for attempt := 0; attempt < constants.SlugGenerationAttempts; attempt++ {
		candidate := utils.SlugWithSuffix(base)
		taken, err := s.templates.SlugExists(ctx, candidate, 0)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugGenerationFailed
}

func encodeMeta(meta map[string]interface{}) (datatypes.JSON, error) {
	if meta == nil {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, ErrInvalidMeta
	}
	return datatypes.JSON(raw), nil
}

func sectionIDs(sections []models.Section) []uint64 {
	ids := make([]uint64, len(sections))
	for i, section := range sections {
		ids[i] = section.ID
	}
	return ids
}
