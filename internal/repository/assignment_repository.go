package repository

import (
	"context"

	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create creates a single assignment
func (r *GormAssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

// CreateBatch inserts all assignments in one transaction
func (r *GormAssignmentRepository) CreateBatch(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&assignments).Error
	})
}

// FindByID finds a live assignment by ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uint64) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindDeleted finds a soft-deleted assignment
func (r *GormAssignmentRepository) FindDeleted(ctx context.Context, id uint64) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindLive finds the live assignment with the given tuple
func (r *GormAssignmentRepository) FindLive(ctx context.Context, sessionID, respondentUserID, subjectUserID uint64, perspective models.Perspective) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND respondent_user_id = ? AND subject_user_id = ? AND perspective = ?",
			sessionID, respondentUserID, subjectUserID, perspective).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// List lists live assignments, optionally with respondent and subject identities
func (r *GormAssignmentRepository) List(ctx context.Context, filter AssignmentFilter, withUsers bool) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Where("session_id = ?", filter.SessionID)
	if filter.RespondentUserID != nil {
		query = query.Where("respondent_user_id = ?", *filter.RespondentUserID)
	}
	if filter.SubjectUserID != nil {
		query = query.Where("subject_user_id = ?", *filter.SubjectUserID)
	}
	if filter.Perspective != nil {
		query = query.Where("perspective = ?", *filter.Perspective)
	}
	if withUsers {
		identity := func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Select("id", "email", "name")
		}
		query = query.Preload("Respondent", identity).Preload("Subject", identity)
	}

	var assignments []models.Assignment
	err := query.Order("id ASC").Find(&assignments).Error
	return assignments, err
}

// Update saves the perspective and subject of an assignment
func (r *GormAssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Model(assignment).
		Select("subject_user_id", "perspective").
		Updates(assignment).Error
}

// SoftDelete marks an assignment deleted, keeping its responses
func (r *GormAssignmentRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore clears the deleted mark
func (r *GormAssignmentRepository) Restore(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Unscoped().Model(&models.Assignment{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Purge hard deletes an assignment and its responses in one transaction
func (r *GormAssignmentRepository) Purge(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Delete(&models.Assignment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
