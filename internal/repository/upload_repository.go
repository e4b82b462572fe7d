package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"projecthub/internal/model"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create records the upload and, when attach is given, lists it on that project.
func (r *UploadRepository) Create(ctx context.Context, upload *model.Upload, attach *model.ProjectFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(upload).Error; err != nil {
			return err
		}
		if attach == nil {
			return nil
		}
		attach.Filename = upload.Filename
		if err := tx.Create(attach).Error; err != nil {
			return err
		}
		return touch(tx, attach.ProjectID)
	})
}

func (r *UploadRepository) GetByFilename(ctx context.Context, filename string) (*model.Upload, error) {
	var upload model.Upload
	if err := r.db.WithContext(ctx).First(&upload, "filename = ?", filename).Error; err != nil {
		return nil, notFound(err, ErrUploadNotFound)
	}
	return &upload, nil
}

// OwnersOf returns the owners of every project that lists the file.
func (r *UploadRepository) OwnersOf(ctx context.Context, filename string) ([]uuid.UUID, error) {
	var owners []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Distinct("projects.owner_id").
		Joins("JOIN project_files ON project_files.project_id = projects.id").
		Where("project_files.filename = ?", filename).
		Pluck("projects.owner_id", &owners).Error
	return owners, err
}

// Delete removes the upload row and every project file entry pointing at it.
func (r *UploadRepository) Delete(ctx context.Context, filename string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projectIDs []uuid.UUID
		if err := tx.Model(&model.ProjectFile{}).Where("filename = ?", filename).Distinct().Pluck("project_id", &projectIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("filename = ?", filename).Delete(&model.ProjectFile{}).Error; err != nil {
			return err
		}
		for _, id := range projectIDs {
			if err := touch(tx, id); err != nil {
				return err
			}
		}
		result := tx.Where("filename = ?", filename).Delete(&model.Upload{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUploadNotFound
		}
		return nil
	})
}

// ListFilenames returns every stored upload name. The orphan sweeper compares it with the disk.
func (r *UploadRepository) ListFilenames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.Upload{}).Pluck("filename", &names).Error
	return names, err
}
