package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/assessment-api/internal/config"
	"github.com/yukikurage/assessment-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db, zap.NewNop()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrate_IsRepeatable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db, zap.NewNop()))
	require.True(t, db.Migrator().HasIndex("assignments", "uq_assignments_live_tuple"))
}

func TestMigrate_LiveAssignmentTupleIsUnique(t *testing.T) {
	db := openTestDB(t)

	user := models.User{Email: "a@example.com", Name: "A", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	first := models.Assignment{SessionID: 1, RespondentUserID: user.ID, SubjectUserID: user.ID, Perspective: models.PerspectiveSelf}
	require.NoError(t, db.Create(&first).Error)

	dup := first
	dup.ID = 0
	err := db.Create(&dup).Error
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))

	// a soft-deleted row no longer blocks the tuple
	require.NoError(t, db.Delete(&first).Error)
	dup.ID = 0
	require.NoError(t, db.Create(&dup).Error)
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.True(t, IsUniqueViolation(errors.New("Error 1062: Duplicate entry 'x' for key 'slug'")))
	require.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
}
