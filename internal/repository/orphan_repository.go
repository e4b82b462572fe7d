package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"projecthub/internal/model"
)

// OrphanRepository removes rows whose project no longer exists.
type OrphanRepository struct {
	db *gorm.DB
}

func NewOrphanRepository(db *gorm.DB) *OrphanRepository {
	return &OrphanRepository{db: db}
}

var projectScoped = map[string]any{
	"invites":         &model.Invite{},
	"tasks":           &model.Task{},
	"notes":           &model.Note{},
	"project_files":   &model.ProjectFile{},
	"project_members": &model.ProjectMember{},
}

// Tables lists the project-scoped tables in the order they are swept.
func (r *OrphanRepository) Tables() []string {
	return []string{"invites", "tasks", "notes", "project_files", "project_members"}
}

// Sweep deletes rows of the named table that reference a missing project.
func (r *OrphanRepository) Sweep(ctx context.Context, table string) (int64, error) {
	target, ok := projectScoped[table]
	if !ok {
		return 0, fmt.Errorf("table %q is not project scoped", table)
	}
	existing := r.db.Model(&model.Project{}).Select("id")
	result := r.db.WithContext(ctx).
		Where("project_id NOT IN (?)", existing).
		Delete(target)
	return result.RowsAffected, result.Error
}
