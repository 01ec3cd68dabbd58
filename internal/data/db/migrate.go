package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/caddie-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// EnsureGolfIndexes creates indexes gorm tags cannot express. The statements
// are valid on both Postgres and SQLite.
func EnsureGolfIndexes(db *gorm.DB) error {
	// At most one round in progress per golfer.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_golf_round_active_user
		ON golf_round (user_id)
		WHERE is_completed = false;
	`).Error; err != nil {
		return fmt.Errorf("create ux_golf_round_active_user: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_golf_round_handicap_window
		ON golf_round (user_id, end_time DESC)
		WHERE is_completed = true AND score_differential IS NOT NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_golf_round_handicap_window: %w", err)
	}
	return nil
}
