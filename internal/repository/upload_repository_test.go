package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/database/testutil"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

func TestUploadRepository_OwnersAndDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()
	repo := repository.NewUploadRepository(db)
	owner := createUser(t, db, "owner@example.com")
	uploader := createUser(t, db, "uploader@example.com")
	project := createProject(t, db, owner, "Files")

	require.NoError(t, repo.Create(ctx,
		&model.Upload{Filename: "file-a.png", MimeType: "image/png", UploadedBy: uploader.ID},
		&model.ProjectFile{ProjectID: project.ID, URL: "/api/uploads/file-a.png"},
	))

	owners, err := repo.OwnersOf(ctx, "file-a.png")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{owner.ID}, owners)

	names, err := repo.ListFilenames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"file-a.png"}, names)

	require.NoError(t, repo.Delete(ctx, "file-a.png"))

	_, err = repo.GetByFilename(ctx, "file-a.png")
	assert.ErrorIs(t, err, repository.ErrUploadNotFound)

	loaded, err := repository.NewProjectRepository(db).GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Files)

	assert.ErrorIs(t, repo.Delete(ctx, "file-a.png"), repository.ErrUploadNotFound)
}
