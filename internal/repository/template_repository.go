package repository

import (
	"context"

	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTemplateRepository is a GORM implementation of TemplateRepository
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &GormTemplateRepository{db: db}
}

// CreateWithOwnerLink creates a template and the ADMIN link of its owning organization
func (r *GormTemplateRepository) CreateWithOwnerLink(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(template).Error; err != nil {
			return err
		}
		return tx.Create(&models.TemplateLink{
			TemplateID:     template.ID,
			OrganizationID: template.OrganizationID,
			AccessLevel:    models.AccessAdmin,
		}).Error
	})
}

// FindByID finds a template by ID
func (r *GormTemplateRepository) FindByID(ctx context.Context, id uint64) (*models.Template, error) {
	var template models.Template
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// FindGraph loads a template with ordered sections, ordered questions and their options
func (r *GormTemplateRepository) FindGraph(ctx context.Context, id uint64) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).
		Preload("Sections", database.Ordered).
		Preload("Sections.Questions", database.Ordered).
		Preload("Sections.Questions.Question", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Sections.Questions.Question.Options", database.Ordered).
		Preload("Sections.Questions.Question.OptionSet", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Sections.Questions.Question.OptionSet.Options", database.Ordered).
		First(&template, id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// SlugExists reports whether any template, live or deleted, uses slug
func (r *GormTemplateRepository) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&models.Template{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForOrganization lists templates owned by or linked to the organization
func (r *GormTemplateRepository) ListForOrganization(ctx context.Context, organizationID uint64) ([]models.Template, error) {
	linked := r.db.Model(&models.TemplateLink{}).
		Select("template_id").
		Where("organization_id = ?", organizationID)

	var templates []models.Template
	err := r.db.WithContext(ctx).
		Where("organization_id = ? OR id IN (?)", organizationID, linked).
		Order("created_at DESC").
		Order("id DESC").
		Find(&templates).Error
	return templates, err
}

// Update updates a template
func (r *GormTemplateRepository) Update(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(template).Error
}

// Delete soft deletes a template
func (r *GormTemplateRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Template{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertLink creates or updates the link of an organization to a template
func (r *GormTemplateRepository) UpsertLink(ctx context.Context, link *models.TemplateLink) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "template_id"}, {Name: "organization_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_level", "updated_at"}),
		}).
		Create(link).Error
}

// ListQuestionPerspectives returns the perspective sets of every live template question
func (r *GormTemplateRepository) ListQuestionPerspectives(ctx context.Context, templateID uint64) ([]models.TemplateQuestion, error) {
	var links []models.TemplateQuestion
	err := r.db.WithContext(ctx).
		Select("template_questions.id", "template_questions.perspectives").
		Joins("JOIN sections ON sections.id = template_questions.section_id AND sections.deleted_at IS NULL").
		Where("sections.template_id = ?", templateID).
		Find(&links).Error
	return links, err
}
