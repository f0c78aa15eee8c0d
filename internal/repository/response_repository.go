package repository

import (
	"context"

	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
)

// GormResponseRepository is a GORM implementation of ResponseRepository
type GormResponseRepository struct {
	db *gorm.DB
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &GormResponseRepository{db: db}
}

// Create creates a new response
func (r *GormResponseRepository) Create(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Create(response).Error
}

// FindByID finds a response by ID
func (r *GormResponseRepository) FindByID(ctx context.Context, id uint64) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).First(&response, id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

// FindByPair finds the response of an assignment to a template question
func (r *GormResponseRepository) FindByPair(ctx context.Context, assignmentID, templateQuestionID uint64) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND template_question_id = ?", assignmentID, templateQuestionID).
		First(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

// Save writes every value channel of an existing response
func (r *GormResponseRepository) Save(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Model(response).
		Select("scale_value", "option_value", "option_values", "text_value").
		Updates(response).Error
}

// Delete hard deletes a response
func (r *GormResponseRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Response{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByAssignment lists the responses of an assignment
func (r *GormResponseRepository) ListByAssignment(ctx context.Context, assignmentID uint64) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("template_question_id ASC").
		Find(&responses).Error
	return responses, err
}

// CountByAssignments counts responses per assignment id
func (r *GormResponseRepository) CountByAssignments(ctx context.Context, assignmentIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AssignmentID uint64
		Total        int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Response{}).
		Select("assignment_id, COUNT(*) AS total").
		Where("assignment_id IN ?", assignmentIDs).
		Group("assignment_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.AssignmentID] = row.Total
	}
	return counts, nil
}
