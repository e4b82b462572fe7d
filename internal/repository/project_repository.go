package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projecthub/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project, the owner's membership and the given invites atomically.
// An invite is skipped when a pending one already exists for the same invitee.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project, invites []model.Invite) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}
		owner := model.ProjectMember{ProjectID: project.ID, UserID: project.OwnerID}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		for i := range invites {
			invites[i].ProjectID = project.ID
			var pending int64
			err := tx.Model(&model.Invite{}).
				Where("project_id = ? AND to_user_id = ? AND status = ?", project.ID, invites[i].ToUserID, model.InvitePending).
				Count(&pending).Error
			if err != nil {
				return err
			}
			if pending > 0 {
				continue
			}
			if err := tx.Omit(clause.Associations).Create(&invites[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID loads the project with owner, members and files.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at") }).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}

	projects := []model.Project{project}
	if err := r.loadMembers(ctx, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

// ListForUser returns projects the user owns or belongs to, most recently updated first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	memberOf := r.db.Model(&model.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("updated_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update persists the scalar columns and bumps updated_at.
func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := r.db.WithContext(ctx).
		Model(project).
		Select("*").
		Omit("id", "owner_id", "created_at", clause.Associations).
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes the project together with everything that hangs off it.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []any{
			&model.Invite{},
			&model.Task{},
			&model.Note{},
			&model.ProjectFile{},
			&model.ProjectMember{},
		}
		for _, m := range steps {
			if err := tx.Where("project_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", id).Delete(&model.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}

func (r *ProjectRepository) loadMembers(ctx context.Context, projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(projects))
	index := make(map[uuid.UUID]int, len(projects))
	for i := range projects {
		ids = append(ids, projects[i].ID)
		index[projects[i].ID] = i
		projects[i].Members = []model.User{}
	}

	type memberRow struct {
		ProjectID uuid.UUID
		model.User
	}
	var rows []memberRow
	err := r.db.WithContext(ctx).
		Table("project_members").
		Select("project_members.project_id, users.*").
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id IN ?", ids).
		Order("project_members.created_at").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		if i, ok := index[row.ProjectID]; ok {
			projects[i].Members = append(projects[i].Members, row.User)
		}
	}
	return nil
}

func touch(tx *gorm.DB, projectID uuid.UUID) error {
	return tx.Model(&model.Project{}).Where("id = ?", projectID).UpdateColumn("updated_at", time.Now()).Error
}
