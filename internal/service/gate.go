package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"projecthub/internal/access"
	"projecthub/internal/apperrors"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// gate loads projects and applies the access predicates. A project the user
// cannot see is reported exactly like a missing one.
type gate struct {
	projects *repository.ProjectRepository
}

func (g gate) accessible(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	project, err := g.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Project not found")
		}
		return nil, apperrors.Wrap(err, "failed to load project")
	}
	if !access.CanAccess(userID, project) {
		return nil, apperrors.ErrNotFound.WithMessage("Project not found")
	}
	return project, nil
}

func (g gate) owned(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	project, err := g.accessible(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanMutateProject(userID, project) {
		return nil, apperrors.ErrForbidden.WithMessage("Only the project owner can do this")
	}
	return project, nil
}
