package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"projecthub/internal/access"
	"projecthub/internal/apperrors"
	"projecthub/internal/model"
	"projecthub/internal/repository"
	"projecthub/internal/validator"
)

type CreateNoteInput struct {
	Body string `json:"body" validate:"required,max=10000"`
}

type NoteService struct {
	gate  gate
	notes *repository.NoteRepository
}

func NewNoteService(projects *repository.ProjectRepository, notes *repository.NoteRepository) *NoteService {
	return &NoteService{gate: gate{projects: projects}, notes: notes}
}

func (s *NoteService) Create(ctx context.Context, userID, projectID uuid.UUID, in CreateNoteInput) (*model.Note, error) {
	in.Body = strings.TrimSpace(in.Body)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	project, err := s.gate.accessible(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	note := &model.Note{ProjectID: project.ID, Body: in.Body, CreatedBy: userID}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperrors.Wrap(err, "failed to create note")
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, userID, projectID uuid.UUID) ([]model.Note, error) {
	project, err := s.gate.accessible(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notes")
	}
	return notes, nil
}

// Delete is allowed for the note's author and the project owner.
func (s *NoteService) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return apperrors.ErrNotFound.WithMessage("Note not found")
		}
		return apperrors.Wrap(err, "failed to load note")
	}
	project, err := s.gate.accessible(ctx, userID, note.ProjectID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrNotFound.Code) {
			return apperrors.ErrNotFound.WithMessage("Note not found")
		}
		return err
	}
	if !access.CanDeleteNote(userID, project, note) {
		return apperrors.ErrForbidden.WithMessage("You can only delete your own notes or you must be the project owner")
	}

	if err := s.notes.Delete(ctx, note.ID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return apperrors.ErrNotFound.WithMessage("Note not found")
		}
		return apperrors.Wrap(err, "failed to delete note")
	}
	return nil
}
