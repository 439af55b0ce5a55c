package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/types"
	"github.com/yungbote/planboard-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "planboard", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(Models()...)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct{ table, name, column, refTable, refColumn string }{
		{"milestone", "fk_milestone_subject_id", "subject_id", "subject", "id"},
		{"activity", "fk_activity_milestone_id", "milestone_id", "milestone", "id"},
		{"timetable_slot", "fk_timetable_slot_subject_id", "subject_id", "subject", "id"},
		{"scheduled_entry", "fk_scheduled_entry_plan_id", "plan_id", "weekly_lesson_plan", "id"},
		{"scheduled_entry", "fk_scheduled_entry_activity_id", "activity_id", "activity", "id"},
		{"scheduled_entry", "fk_scheduled_entry_slot_id", "slot_id", "timetable_slot", "id"},
		{"user_token", "fk_user_token_user_id", "user_id", "user", "id"},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`
			ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q;
			ALTER TABLE %q ADD CONSTRAINT %q
			FOREIGN KEY (%q) REFERENCES %q(%q) ON DELETE CASCADE
		`, c.table, c.name, c.table, c.name, c.column, c.refTable, c.refColumn)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// Models lists every persisted model; shared with the sqlite test harness so
// both databases migrate the same schema.
func Models() []interface{} {
	return []interface{}{
		&types.User{},
		&types.UserToken{},
		&types.Subject{},
		&types.Milestone{},
		&types.Activity{},
		&types.TimetableSlot{},
		&types.CalendarEvent{},
		&types.WeeklyLessonPlan{},
		&types.ScheduledEntry{},
	}
}
