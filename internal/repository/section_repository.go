package repository

import (
	"context"

	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSectionRepository is a GORM implementation of SectionRepository
type GormSectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &GormSectionRepository{db: db}
}

// CreateSection appends a section after the existing ones
func (r *GormSectionRepository) CreateSection(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Section{}).Where("template_id = ?", section.TemplateID).Count(&count).Error; err != nil {
			return err
		}
		section.Order = int(count)
		return tx.Omit(clause.Associations).Create(section).Error
	})
}

// FindSection finds a section by ID
func (r *GormSectionRepository) FindSection(ctx context.Context, id uint64) (*models.Section, error) {
	var section models.Section
	if err := r.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// UpdateSection updates a section's title and description
func (r *GormSectionRepository) UpdateSection(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Model(section).
		Select("title", "description").
		Updates(section).Error
}

// DeleteSection soft deletes a section and its question links
func (r *GormSectionRepository) DeleteSection(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", id).Delete(&models.TemplateQuestion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Section{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListSections lists the live sections of a template in order
func (r *GormSectionRepository) ListSections(ctx context.Context, templateID uint64) ([]models.Section, error) {
	var sections []models.Section
	err := r.db.WithContext(ctx).
		Scopes(database.Ordered).
		Where("template_id = ?", templateID).
		Find(&sections).Error
	return sections, err
}

// ReorderSections sets order = index in ids within one transaction
func (r *GormSectionRepository) ReorderSections(ctx context.Context, templateID uint64, ids []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyOrder(tx, &models.Section{}, "template_id", templateID, ids)
	})
}

// CompactSectionOrder renumbers live sections 0..n-1
func (r *GormSectionRepository) CompactSectionOrder(ctx context.Context, templateID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := tx.Model(&models.Section{}).
			Scopes(database.Ordered).
			Where("template_id = ?", templateID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		return applyOrder(tx, &models.Section{}, "template_id", templateID, ids)
	})
}

// CreateTemplateQuestion appends a question link after the existing ones
func (r *GormSectionRepository) CreateTemplateQuestion(ctx context.Context, link *models.TemplateQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TemplateQuestion{}).Where("section_id = ?", link.SectionID).Count(&count).Error; err != nil {
			return err
		}
		link.Order = int(count)
		return tx.Omit(clause.Associations).Create(link).Error
	})
}

// FindTemplateQuestion finds a link with its section and question (options included)
func (r *GormSectionRepository) FindTemplateQuestion(ctx context.Context, id uint64) (*models.TemplateQuestion, error) {
	var link models.TemplateQuestion
	err := r.db.WithContext(ctx).
		Preload("Section").
		Preload("Question", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Question.Options", database.Ordered).
		Preload("Question.OptionSet", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Question.OptionSet.Options", database.Ordered).
		First(&link, id).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// UpdateTemplateQuestion updates the required flag and perspectives of a link
func (r *GormSectionRepository) UpdateTemplateQuestion(ctx context.Context, link *models.TemplateQuestion) error {
	return r.db.WithContext(ctx).Model(link).
		Select("required", "perspectives").
		Updates(link).Error
}

// DeleteTemplateQuestion soft deletes a link
func (r *GormSectionRepository) DeleteTemplateQuestion(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.TemplateQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListSectionQuestions lists the live links of a section in order
func (r *GormSectionRepository) ListSectionQuestions(ctx context.Context, sectionID uint64) ([]models.TemplateQuestion, error) {
	var links []models.TemplateQuestion
	err := r.db.WithContext(ctx).
		Scopes(database.Ordered).
		Where("section_id = ?", sectionID).
		Find(&links).Error
	return links, err
}

// ReplaceSectionQuestions soft deletes every link of a section and recreates links in one transaction
func (r *GormSectionRepository) ReplaceSectionQuestions(ctx context.Context, sectionID uint64, links []models.TemplateQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", sectionID).Delete(&models.TemplateQuestion{}).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		for i := range links {
			links[i].ID = 0
			links[i].SectionID = sectionID
			links[i].Order = i
		}
		return tx.Omit(clause.Associations).Create(&links).Error
	})
}

// ReorderSectionQuestions sets order = index in ids within one transaction
func (r *GormSectionRepository) ReorderSectionQuestions(ctx context.Context, sectionID uint64, ids []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyOrder(tx, &models.TemplateQuestion{}, "section_id", sectionID, ids)
	})
}

// CompactQuestionOrder renumbers live links of a section 0..n-1
func (r *GormSectionRepository) CompactQuestionOrder(ctx context.Context, sectionID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := tx.Model(&models.TemplateQuestion{}).
			Scopes(database.Ordered).
			Where("section_id = ?", sectionID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		return applyOrder(tx, &models.TemplateQuestion{}, "section_id", sectionID, ids)
	})
}

// applyOrder writes sort_order = position for each id under the given parent.
func applyOrder(tx *gorm.DB, model interface{}, parentColumn string, parentID uint64, ids []uint64) error {
	for position, id := range ids {
		if err := tx.Model(model).
			Where("id = ? AND "+parentColumn+" = ?", id, parentID).
			Update("sort_order", position).Error; err != nil {
			return err
		}
	}
	return nil
}
