package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/assessment-api/internal/database"
	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository is a GORM implementation of SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

// Create creates a new session
func (r *GormSessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error
}

// FindByID finds a session by ID
func (r *GormSessionRepository) FindByID(ctx context.Context, id uint64) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByInviteCode finds a live session by invite code
func (r *GormSessionRepository) FindByInviteCode(ctx context.Context, code string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// List retrieves sessions with filtering and pagination
func (r *GormSessionRepository) List(ctx context.Context, filter SessionFilter) ([]models.Session, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Session{}).Where("organization_id = ?", filter.OrganizationID)
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []models.Session
	listQuery := query.Order("start_at DESC").Order("id DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}
	if err := listQuery.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// Update applies the field changes and the optional transition in one transaction.
// It reports false, writing nothing, when the state no longer equals transition.From.
func (r *GormSessionRepository) Update(ctx context.Context, id uint64, update SessionUpdate, transition *SessionTransition) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if transition != nil {
			result := tx.Model(&models.Session{}).
				Where("id = ? AND state = ?", id, transition.From).
				Update("state", transition.To)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected != 1 {
				return errStateMoved
			}
		}

		changes := sessionChanges(update)
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&models.Session{}).Where("id = ?", id).Updates(changes).Error
	})
	if errors.Is(err, errStateMoved) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var errStateMoved = errors.New("session state changed concurrently")

func sessionChanges(update SessionUpdate) map[string]interface{} {
	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.StartAt != nil {
		changes["start_at"] = *update.StartAt
	}
	if update.EndAt != nil {
		changes["end_at"] = *update.EndAt
	}
	if update.TeamID != nil {
		changes["team_id"] = *update.TeamID
	}
	return changes
}

// Cancel forces the state to CANCELLED and soft deletes the session
func (r *GormSessionRepository) Cancel(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Session{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"state":      models.SessionStateCancelled,
				"deleted_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
