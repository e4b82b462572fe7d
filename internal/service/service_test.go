package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/internal/apperrors"
	"projecthub/internal/auth"
	"projecthub/internal/database/testutil"
	"projecthub/internal/model"
	"projecthub/internal/repository"
	"projecthub/internal/storage"
)

type testEnv struct {
	db       *gorm.DB
	users    *repository.UserRepository
	projects *ProjectService
	invites  *InviteService
	tasks    *TaskService
	notes    *NoteService
	uploads  *UploadService
	accounts *UserService
	store    *storage.Local
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	users := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	store, err := storage.NewLocal(filepath.Join(t.TempDir(), "uploads"), 1<<20)
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		users:    users,
		projects: NewProjectService(projectRepo, users, taskRepo, noteRepo, inviteRepo),
		invites:  NewInviteService(inviteRepo),
		tasks:    NewTaskService(projectRepo, taskRepo),
		notes:    NewNoteService(projectRepo, noteRepo),
		uploads:  NewUploadService(projectRepo, uploadRepo, store),
		accounts: NewUserService(users, auth.NewManager("test-secret", time.Hour)),
		store:    store,
	}
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email, HashedPassword: "x"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) project(t *testing.T, owner *model.User, title string, members ...*model.User) *model.Project {
	t.Helper()
	ctx := context.Background()
	p, err := e.projects.Create(ctx, owner.ID, CreateProjectInput{Title: title})
	require.NoError(t, err)
	for _, m := range members {
		invite, err := e.projects.Invite(ctx, owner.ID, p.ID, InviteInput{Email: m.Email})
		require.NoError(t, err)
		_, err = e.invites.Respond(ctx, m.ID, invite.ID, RespondInput{Action: ActionAccept})
		require.NoError(t, err)
	}
	return p
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func ptr[T any](v T) *T { return &v }
