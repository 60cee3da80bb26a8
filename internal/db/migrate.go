package db

import (
	"fmt"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Task{},
		&models.Doer{},
		&models.Notification{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedDoers upserts doer rows by name, assigning each to a department and
// marking them approved. Used to preload the office roster so the boss can
// assign tasks before anyone has self-registered.
func SeedDoers(db *gorm.DB, nameToDepartment map[string]string) error {
	for name, department := range nameToDepartment {
		doer := models.Doer{
			Name:           name,
			Department:     department,
			IsActive:       true,
			ApprovalStatus: models.ApprovalApproved,
			IsApproved:     true,
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"department", "is_active"}),
		}).Create(&doer)
		if result.Error != nil {
			return fmt.Errorf("db: seed doer %q: %w", name, result.Error)
		}
	}
	return nil
}
