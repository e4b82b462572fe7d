package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projecthub/internal/model"
)

// addMember inserts the membership row if missing and bumps the project's updated_at.
func addMember(tx *gorm.DB, projectID, userID uuid.UUID) error {
	member := model.ProjectMember{ProjectID: projectID, UserID: userID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		return err
	}
	return touch(tx, projectID)
}
