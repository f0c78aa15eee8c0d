package repository

import (
	"context"

	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQuestionBankRepository is a GORM implementation of QuestionBankRepository
type GormQuestionBankRepository struct {
	db *gorm.DB
}

// NewQuestionBankRepository creates a new QuestionBankRepository
func NewQuestionBankRepository(db *gorm.DB) QuestionBankRepository {
	return &GormQuestionBankRepository{db: db}
}

// CreateWithOwnerLink creates a bank and the ADMIN link of its owning organization
func (r *GormQuestionBankRepository) CreateWithOwnerLink(ctx context.Context, bank *models.QuestionBank) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bank).Error; err != nil {
			return err
		}
		return tx.Create(&models.QuestionBankLink{
			QuestionBankID: bank.ID,
			OrganizationID: bank.OrganizationID,
			AccessLevel:    models.AccessAdmin,
		}).Error
	})
}

// FindByID finds a question bank by ID
func (r *GormQuestionBankRepository) FindByID(ctx context.Context, id uint64) (*models.QuestionBank, error) {
	var bank models.QuestionBank
	if err := r.db.WithContext(ctx).First(&bank, id).Error; err != nil {
		return nil, err
	}
	return &bank, nil
}

// ListForOrganization lists banks owned by or linked to the organization
func (r *GormQuestionBankRepository) ListForOrganization(ctx context.Context, organizationID uint64) ([]models.QuestionBank, error) {
	linked := r.db.Model(&models.QuestionBankLink{}).
		Select("question_bank_id").
		Where("organization_id = ?", organizationID)

	var banks []models.QuestionBank
	err := r.db.WithContext(ctx).
		Where("organization_id = ? OR id IN (?)", organizationID, linked).
		Order("id ASC").
		Find(&banks).Error
	return banks, err
}

// UpsertLink creates or updates the link of an organization to a bank
func (r *GormQuestionBankRepository) UpsertLink(ctx context.Context, link *models.QuestionBankLink) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_bank_id"}, {Name: "organization_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_level", "updated_at"}),
		}).
		Create(link).Error
}

// CreateOptionSet creates an option set with its options
func (r *GormQuestionBankRepository) CreateOptionSet(ctx context.Context, set *models.OptionSet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

// FindOptionSet finds an option set with its ordered options
func (r *GormQuestionBankRepository) FindOptionSet(ctx context.Context, id uint64) (*models.OptionSet, error) {
	var set models.OptionSet
	if err := r.db.WithContext(ctx).
		Preload("Options", database.Ordered).
		First(&set, id).Error; err != nil {
		return nil, err
	}
	return &set, nil
}

// ReplaceOptions deletes the options of a set and recreates them in one transaction
func (r *GormQuestionBankRepository) ReplaceOptions(ctx context.Context, setID uint64, options []models.Option) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("option_set_id = ?", setID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if len(options) == 0 {
			return nil
		}
		for i := range options {
			options[i].ID = 0
			options[i].OptionSetID = &setID
			options[i].QuestionID = nil
			options[i].Order = i
		}
		return tx.Create(&options).Error
	})
}

// CreateQuestion creates a question with its inline options
func (r *GormQuestionBankRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Omit("OptionSet").Create(question).Error
}

// FindQuestion finds a question with its option set and inline options
func (r *GormQuestionBankRepository) FindQuestion(ctx context.Context, id uint64) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).
		Preload("Options", database.Ordered).
		Preload("OptionSet.Options", database.Ordered).
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// UpdateQuestion saves a question; a non-nil options slice replaces its inline options
func (r *GormQuestionBankRepository) UpdateQuestion(ctx context.Context, question *models.Question, options []models.Option) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(question).Error; err != nil {
			return err
		}
		if options == nil {
			return nil
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if len(options) == 0 {
			return nil
		}
		for i := range options {
			options[i].ID = 0
			options[i].QuestionID = &question.ID
			options[i].OptionSetID = nil
			options[i].Order = i
		}
		return tx.Create(&options).Error
	})
}

// DeleteQuestion soft deletes a question
func (r *GormQuestionBankRepository) DeleteQuestion(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListQuestions lists the live questions of a bank
func (r *GormQuestionBankRepository) ListQuestions(ctx context.Context, bankID uint64) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Preload("Options", database.Ordered).
		Preload("OptionSet.Options", database.Ordered).
		Where("question_bank_id = ?", bankID).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}
