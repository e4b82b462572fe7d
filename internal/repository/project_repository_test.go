package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/internal/database/testutil"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: email, HashedPassword: "x"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createProject(t *testing.T, db *gorm.DB, owner *model.User, title string, invitees ...uuid.UUID) *model.Project {
	t.Helper()
	project := &model.Project{Title: title, OwnerID: owner.ID}
	invites := make([]model.Invite, 0, len(invitees))
	for _, id := range invitees {
		invites = append(invites, model.Invite{FromUserID: owner.ID, ToUserID: id})
	}
	require.NoError(t, repository.NewProjectRepository(db).Create(context.Background(), project, invites))
	return project
}

func TestProjectRepository_CreateAddsOwnerMembershipAndInvites(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	bob := createUser(t, db, "bob@example.com")

	project := createProject(t, db, owner, "Launch", bob.ID)

	loaded, err := repository.NewProjectRepository(db).GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectOngoing, loaded.Status)
	assert.Equal(t, owner.Email, loaded.Owner.Email)
	assert.Equal(t, []uuid.UUID{owner.ID}, loaded.MemberIDs())

	pending, err := repository.NewInviteRepository(db).HasPending(ctx, project.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestProjectRepository_GetByIDNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	_, err := repository.NewProjectRepository(db).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)
}

func TestProjectRepository_ListForUserOrdersByUpdatedAt(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(db)
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	stranger := createUser(t, db, "stranger@example.com")

	first := createProject(t, db, owner, "First")
	second := createProject(t, db, owner, "Second")
	createProject(t, db, stranger, "Hidden")

	invite := &model.Invite{ProjectID: first.ID, FromUserID: owner.ID, ToUserID: member.ID}
	invites := repository.NewInviteRepository(db)
	require.NoError(t, invites.Create(ctx, invite))
	require.NoError(t, invites.Accept(ctx, invite))

	projects, err := repo.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, first.ID, projects[0].ID, "membership growth bumps updated_at")
	assert.Equal(t, second.ID, projects[1].ID)

	projects, err = repo.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.ElementsMatch(t, []uuid.UUID{owner.ID, member.ID}, projects[0].MemberIDs())
}

func TestProjectRepository_UpdateClearsDates(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()
	repo := repository.NewProjectRepository(db)
	owner := createUser(t, db, "owner@example.com")
	project := createProject(t, db, owner, "Dated")

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	project.StartDate = &start
	project.Price = 12.5
	require.NoError(t, repo.Update(ctx, project))

	project.StartDate = nil
	require.NoError(t, repo.Update(ctx, project))

	loaded, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.StartDate)
	assert.Equal(t, 12.5, loaded.Price)
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	bob := createUser(t, db, "bob@example.com")
	project := createProject(t, db, owner, "Doomed", bob.ID)

	require.NoError(t, repository.NewTaskRepository(db).Create(ctx, &model.Task{ProjectID: project.ID, Title: "t", CreatedBy: owner.ID}))
	require.NoError(t, repository.NewNoteRepository(db).Create(ctx, &model.Note{ProjectID: project.ID, Body: "n", CreatedBy: owner.ID}))
	require.NoError(t, repository.NewUploadRepository(db).Create(ctx,
		&model.Upload{Filename: "file-a.pdf", UploadedBy: owner.ID},
		&model.ProjectFile{ProjectID: project.ID},
	))

	require.NoError(t, repository.NewProjectRepository(db).Delete(ctx, project.ID))

	for _, m := range []any{&model.Invite{}, &model.Task{}, &model.Note{}, &model.ProjectFile{}, &model.ProjectMember{}, &model.Project{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}

	assert.ErrorIs(t, repository.NewProjectRepository(db).Delete(ctx, project.ID), repository.ErrProjectNotFound)
}
