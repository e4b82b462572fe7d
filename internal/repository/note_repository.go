package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projecthub/internal/model"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create stores the note and loads its author for the response.
func (r *NoteRepository) Create(ctx context.Context, note *model.Note) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(note).Error; err != nil {
		return err
	}
	return db.First(&note.Creator, "id = ?", note.CreatedBy).Error
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).Preload("Creator").First(&note, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrNoteNotFound)
	}
	return &note, nil
}

// ListByProject returns the project's notes, newest first.
func (r *NoteRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Note, error) {
	notes := []model.Note{}
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Note{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
