package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/apperrors"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

func TestProjectService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice@example.com")

	project, err := env.projects.Create(context.Background(), alice.ID, CreateProjectInput{Title: "  Launch  "})
	require.NoError(t, err)

	assert.Equal(t, "Launch", project.Title)
	assert.Equal(t, model.ProjectOngoing, project.Status)
	assert.Equal(t, alice.ID, project.OwnerID)
	assert.Equal(t, []uuid.UUID{alice.ID}, project.MemberIDs())
	assert.Zero(t, project.Price)
}

func TestProjectService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice@example.com")
	ctx := context.Background()

	_, err := env.projects.Create(ctx, alice.ID, CreateProjectInput{Title: "   "})
	requireCode(t, err, "VALIDATION_FAILED")

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	_, err = env.projects.Create(ctx, alice.ID, CreateProjectInput{Title: string(long)})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = env.projects.Create(ctx, alice.ID, CreateProjectInput{Title: "p", Price: ptr(-1.0)})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = env.projects.Create(ctx, alice.ID, CreateProjectInput{Title: "p", StartDate: "2025-03-01", EndDate: "2025-02-01"})
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestProjectService_CreateRejectsUnknownMembersAtomically(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice@example.com")
	env.user(t, "bob@example.com")

	_, err := env.projects.Create(context.Background(), alice.ID, CreateProjectInput{
		Title:        "Launch",
		MemberEmails: []string{"BOB@example.com", "ghost@example.com"},
	})
	requireCode(t, err, "MEMBERS_NOT_FOUND")

	appErr := apperrors.FromError(err)
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Equal(t, []string{"ghost@example.com"}, appErr.Details["missingEmails"])

	var projects, invites int64
	require.NoError(t, env.db.Model(&model.Project{}).Count(&projects).Error)
	require.NoError(t, env.db.Model(&model.Invite{}).Count(&invites).Error)
	assert.Zero(t, projects)
	assert.Zero(t, invites)
}

func TestProjectService_CreateInvitesResolvedMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")

	project, err := env.projects.Create(ctx, alice.ID, CreateProjectInput{
		Title:        "Launch",
		MemberEmails: []string{"bob@example.com", " Bob@Example.com ", "alice@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID}, project.MemberIDs(), "invitees join only on accept")

	pending, err := env.invites.ListPending(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, project.ID, pending[0].ProjectID)

	own, err := env.invites.ListPending(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, own, "owner is never invited")
}

func TestProjectService_GetHidesInaccessibleProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	mallory := env.user(t, "mallory@example.com")
	project := env.project(t, alice, "Secret")

	_, err := env.projects.Get(ctx, mallory.ID, project.ID)
	requireCode(t, err, "NOT_FOUND")

	_, err = env.projects.Get(ctx, alice.ID, uuid.New())
	requireCode(t, err, "NOT_FOUND")

	detail, err := env.projects.Get(ctx, alice.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, detail.Project.ID)
	assert.Empty(t, detail.Tasks)
	assert.Empty(t, detail.Notes)
}

func TestProjectService_ListCountsTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	carol := env.user(t, "carol@example.com")

	shared := env.project(t, alice, "Shared", bob)
	env.project(t, carol, "Carol's")

	for _, status := range []model.TaskStatus{model.TaskDone, model.TaskTodo, model.TaskDone} {
		_, err := env.tasks.Create(ctx, bob.ID, shared.ID, CreateTaskInput{Title: "t", Status: status})
		require.NoError(t, err)
	}

	list, err := env.projects.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shared.ID, list[0].Project.ID)
	assert.Equal(t, int64(3), list[0].TasksTotal)
	assert.Equal(t, int64(2), list[0].TasksCompleted)

	list, err = env.projects.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestProjectService_UpdatePermissionsAndFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	mallory := env.user(t, "mallory@example.com")
	project := env.project(t, alice, "Launch", bob)

	_, err := env.projects.Update(ctx, bob.ID, project.ID, UpdateProjectInput{Title: ptr("Hijack")})
	requireCode(t, err, "FORBIDDEN")

	_, err = env.projects.Update(ctx, mallory.ID, project.ID, UpdateProjectInput{Title: ptr("Hijack")})
	requireCode(t, err, "NOT_FOUND")

	status := model.ProjectStatus("paused")
	_, err = env.projects.Update(ctx, alice.ID, project.ID, UpdateProjectInput{Status: &status})
	requireCode(t, err, "VALIDATION_FAILED")

	var in UpdateProjectInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":" Relaunch ","status":"on-hold","startDate":"2025-01-01","endDate":"2025-06-30","price":99.5}`), &in))
	updated, err := env.projects.Update(ctx, alice.ID, project.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", updated.Title)
	assert.Equal(t, model.ProjectOnHold, updated.Status)
	assert.Equal(t, 99.5, updated.Price)
	require.NotNil(t, updated.StartDate)
	assert.True(t, updated.UpdatedAt.After(project.UpdatedAt) || updated.UpdatedAt.Equal(project.UpdatedAt))

	var bad UpdateProjectInput
	require.NoError(t, json.Unmarshal([]byte(`{"endDate":"2024-12-31"}`), &bad))
	_, err = env.projects.Update(ctx, alice.ID, project.ID, bad)
	requireCode(t, err, "VALIDATION_FAILED")

	var clear UpdateProjectInput
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":null}`), &clear))
	updated, err = env.projects.Update(ctx, alice.ID, project.ID, clear)
	require.NoError(t, err)
	assert.Nil(t, updated.StartDate)
	assert.NotNil(t, updated.EndDate)
	assert.Equal(t, []uuid.UUID{alice.ID, bob.ID}, updated.MemberIDs())
}

func TestProjectService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	project := env.project(t, alice, "Launch", bob)

	task, err := env.tasks.Create(ctx, bob.ID, project.ID, CreateTaskInput{Title: "t"})
	require.NoError(t, err)
	_, err = env.notes.Create(ctx, bob.ID, project.ID, CreateNoteInput{Body: "n"})
	require.NoError(t, err)

	requireCode(t, env.projects.Delete(ctx, bob.ID, project.ID), "FORBIDDEN")
	require.NoError(t, env.projects.Delete(ctx, alice.ID, project.ID))

	_, err = env.tasks.Get(ctx, bob.ID, task.ID)
	requireCode(t, err, "NOT_FOUND")

	var tasks, notes int64
	require.NoError(t, env.db.Model(&model.Task{}).Where("project_id = ?", project.ID).Count(&tasks).Error)
	require.NoError(t, env.db.Model(&model.Note{}).Where("project_id = ?", project.ID).Count(&notes).Error)
	assert.Zero(t, tasks)
	assert.Zero(t, notes)

	requireCode(t, env.projects.Delete(ctx, alice.ID, project.ID), "NOT_FOUND")
}

func TestProjectService_Invite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	carol := env.user(t, "carol@example.com")
	project := env.project(t, alice, "Launch", bob)

	_, err := env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: "nobody@example.com"})
	requireCode(t, err, "NOT_FOUND")

	_, err = env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: "BOB@example.com"})
	requireCode(t, err, "ALREADY_MEMBER")

	_, err = env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: "alice@example.com"})
	requireCode(t, err, "ALREADY_MEMBER")

	_, err = env.projects.Invite(ctx, bob.ID, project.ID, InviteInput{Email: carol.Email})
	requireCode(t, err, "FORBIDDEN")

	invite, err := env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: " Carol@example.com "})
	require.NoError(t, err)
	assert.Equal(t, model.InvitePending, invite.Status)
	assert.Equal(t, carol.ID, invite.ToUserID)

	_, err = env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: carol.Email})
	requireCode(t, err, "INVITE_PENDING")
}

// Launch walks the lifecycle from project creation to deletion across two users.
func TestLaunchScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a@x.com")
	b := env.user(t, "b@x.com")

	project, err := env.projects.Create(ctx, a.ID, CreateProjectInput{Title: "Launch"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, project.OwnerID)
	assert.Equal(t, []uuid.UUID{a.ID}, project.MemberIDs())
	assert.Equal(t, model.ProjectOngoing, project.Status)

	invite, err := env.projects.Invite(ctx, a.ID, project.ID, InviteInput{Email: "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, model.InvitePending, invite.Status)

	accepted, err := env.invites.Respond(ctx, b.ID, invite.ID, RespondInput{Action: ActionAccept})
	require.NoError(t, err)
	assert.Equal(t, model.InviteAccepted, accepted.Status)

	detail, err := env.projects.Get(ctx, a.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, detail.Project.MemberIDs())

	_, err = env.tasks.Create(ctx, b.ID, project.ID, CreateTaskInput{Title: "Write copy", DueDate: "2025-01-01", StartDate: "2025-02-01"})
	requireCode(t, err, "VALIDATION_FAILED")

	task, err := env.tasks.Create(ctx, b.ID, project.ID, CreateTaskInput{Title: "Write copy", DueDate: "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, []uuid.UUID{b.ID}, []uuid.UUID(task.Assignees))

	require.NoError(t, env.projects.Delete(ctx, a.ID, project.ID))

	for _, u := range []*model.User{a, b} {
		_, err = env.projects.Get(ctx, u.ID, project.ID)
		requireCode(t, err, "NOT_FOUND")
		_, err = env.tasks.List(ctx, u.ID, project.ID, ListTasksInput{})
		requireCode(t, err, "NOT_FOUND")
	}

	remaining, err := repository.NewTaskRepository(env.db).ListByProject(ctx, project.ID, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
