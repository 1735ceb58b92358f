package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/cloudlab-api/internal/models"
)

// Migrate creates or updates the observation and profile tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.UserProfile{}, &models.Observation{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
