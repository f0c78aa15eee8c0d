package database

import (
	"fmt"
	"strings"

	"github.com/yukikurage/assessment-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type indexSpec struct {
	table   string
	name    string
	columns string
	unique  bool
	// where turns the index into a partial index; dialects without partial indexes skip it.
	where string
}

var indexes = []indexSpec{
	// Live assignment tuples are unique; soft-deleted rows may repeat a tuple.
	{
		table:   "assignments",
		name:    "uq_assignments_live_tuple",
		columns: "session_id, respondent_user_id, subject_user_id, perspective",
		unique:  true,
		where:   "deleted_at IS NULL",
	},
	{table: "assignments", name: "idx_assignments_session_respondent", columns: "session_id, respondent_user_id"},
	{table: "sessions", name: "idx_sessions_org_state", columns: "organization_id, state"},
	{table: "sections", name: "idx_sections_template_order", columns: "template_id, sort_order"},
	{table: "template_questions", name: "idx_template_questions_section_order", columns: "section_id, sort_order"},
	{table: "organization_members", name: "idx_org_members_user_id", columns: "user_id"},
}

// Migrate creates or updates all tables and then the indexes GORM tags cannot express.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Team{},
		&models.QuestionBank{},
		&models.QuestionBankLink{},
		&models.OptionSet{},
		&models.Question{},
		&models.Option{},
		&models.Template{},
		&models.TemplateLink{},
		&models.Section{},
		&models.TemplateQuestion{},
		&models.Session{},
		&models.Assignment{},
		&models.Response{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// AddIndexes adds composite and partial indexes, skipping those that already exist.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	supportsPartial := db.Dialector.Name() != "mysql"

	for _, idx := range indexes {
		if idx.where != "" && !supportsPartial {
			log.Warn("dialect has no partial indexes, uniqueness relies on application checks",
				zap.String("index", idx.name))
			continue
		}

		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		if err := db.Exec(idx.sql()).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}

func (idx indexSpec) sql() string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, "INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
	if idx.where != "" {
		fmt.Fprintf(&b, " WHERE %s", idx.where)
	}
	return b.String()
}
