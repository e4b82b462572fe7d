package service

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/repository"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func TestUploadService_UploadAndServe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")

	file, err := env.uploads.Upload(ctx, alice.ID, bytes.NewReader(pdfBytes), "brief.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.MimeType)
	assert.Equal(t, "/api/uploads/"+file.Filename, file.URL)
	assert.Equal(t, "brief.pdf", file.OriginalName)

	path, err := env.uploads.Path(file.Filename)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)

	_, err = env.uploads.Path("../etc/passwd")
	requireCode(t, err, "NOT_FOUND")
}

func TestUploadService_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	mallory := env.user(t, "mallory@example.com")
	project := env.project(t, alice, "Launch")

	_, err := env.uploads.Upload(ctx, alice.ID, strings.NewReader("#!/bin/sh\necho hi\n"), "run.sh", nil)
	requireCode(t, err, "BAD_REQUEST")

	_, err = env.uploads.Upload(ctx, alice.ID, strings.NewReader(strings.Repeat("a", 1<<20+1)), "big.txt", nil)
	requireCode(t, err, "BAD_REQUEST")

	_, err = env.uploads.Upload(ctx, mallory.ID, bytes.NewReader(pdfBytes), "x.pdf", &project.ID)
	requireCode(t, err, "NOT_FOUND")

	names, err := env.store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestUploadService_ProjectAttachmentAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	member := env.user(t, "member@example.com")
	other := env.user(t, "other@example.com")
	project := env.project(t, owner, "Launch", member, other)

	file, err := env.uploads.Upload(ctx, member.ID, bytes.NewReader(pdfBytes), "brief.pdf", &project.ID)
	require.NoError(t, err)

	detail, err := env.projects.Get(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	require.Len(t, detail.Project.Files, 1)
	assert.Equal(t, file.Filename, detail.Project.Files[0].Filename)
	assert.Equal(t, "brief.pdf", detail.Project.Files[0].OriginalName)

	requireCode(t, env.uploads.Delete(ctx, other.ID, file.Filename), "FORBIDDEN")
	require.NoError(t, env.uploads.Delete(ctx, owner.ID, file.Filename))
	requireCode(t, env.uploads.Delete(ctx, owner.ID, file.Filename), "NOT_FOUND")

	_, err = env.uploads.Path(file.Filename)
	requireCode(t, err, "NOT_FOUND")

	detail, err = env.projects.Get(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Project.Files)
}

func TestUploadService_DeleteToleratesMissingDiskFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")

	file, err := env.uploads.Upload(ctx, alice.ID, bytes.NewReader(pdfBytes), "a.pdf", nil)
	require.NoError(t, err)
	require.NoError(t, env.store.Remove(file.Filename))

	require.NoError(t, env.uploads.Delete(ctx, alice.ID, file.Filename))

	_, err = repository.NewUploadRepository(env.db).GetByFilename(ctx, file.Filename)
	assert.ErrorIs(t, err, repository.ErrUploadNotFound)

	requireCode(t, env.uploads.Delete(ctx, uuid.New(), "file-unknown.pdf"), "NOT_FOUND")
}
