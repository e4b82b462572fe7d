package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/internal/model"
)

func TestInviteService_AcceptTwiceIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	project := env.project(t, alice, "Launch")

	invite, err := env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: bob.Email})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := env.invites.Respond(ctx, bob.ID, invite.ID, RespondInput{Action: ActionAccept})
		require.NoError(t, err)
		assert.Equal(t, model.InviteAccepted, got.Status)
	}

	detail, err := env.projects.Get(ctx, bob.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID, bob.ID}, detail.Project.MemberIDs())

	_, err = env.invites.Respond(ctx, bob.ID, invite.ID, RespondInput{Action: ActionDecline})
	requireCode(t, err, "INVITE_RESOLVED")
}

func TestInviteService_DeclineThenReinvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	project := env.project(t, alice, "Launch")

	first, err := env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: bob.Email})
	require.NoError(t, err)
	declined, err := env.invites.Respond(ctx, bob.ID, first.ID, RespondInput{Action: ActionDecline})
	require.NoError(t, err)
	assert.Equal(t, model.InviteDeclined, declined.Status)

	_, err = env.projects.Get(ctx, bob.ID, project.ID)
	requireCode(t, err, "NOT_FOUND")

	second, err := env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: bob.Email})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.InvitePending, second.Status)

	_, err = env.invites.Respond(ctx, bob.ID, first.ID, RespondInput{Action: ActionAccept})
	requireCode(t, err, "INVITE_RESOLVED")

	pending, err := env.invites.ListPending(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, "Launch", pending[0].Project.Title)
	assert.Equal(t, alice.Email, pending[0].From.Email)
}

func TestInviteService_RespondErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	mallory := env.user(t, "mallory@example.com")
	project := env.project(t, alice, "Launch")

	invite, err := env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: bob.Email})
	require.NoError(t, err)

	_, err = env.invites.Respond(ctx, bob.ID, invite.ID, RespondInput{Action: "maybe"})
	requireCode(t, err, "INVALID_ACTION")

	_, err = env.invites.Respond(ctx, mallory.ID, invite.ID, RespondInput{Action: ActionAccept})
	requireCode(t, err, "NOT_FOUND")

	_, err = env.invites.Respond(ctx, bob.ID, uuid.New(), RespondInput{Action: ActionAccept})
	requireCode(t, err, "NOT_FOUND")
}

// answerFirst makes another answer land between Respond's read and its update.
func answerFirst(t *testing.T, db *gorm.DB, status model.InviteStatus) {
	t.Helper()
	var fired bool
	err := db.Callback().Update().Before("gorm:update").Register("test:answer_first", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "invites" {
			return
		}
		fired = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE invites SET status = ? WHERE status = ?", status, model.InvitePending)
	})
	require.NoError(t, err)
}

func TestInviteService_ConcurrentAnswers(t *testing.T) {
	tests := []struct {
		name    string
		first   model.InviteStatus
		action  string
		want    model.InviteStatus
		wantErr string
	}{
		{name: "same answer wins", first: model.InviteDeclined, action: ActionDecline, want: model.InviteDeclined},
		{name: "opposite answer loses", first: model.InviteAccepted, action: ActionDecline, wantErr: "INVITE_RESOLVED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			alice := env.user(t, "alice@example.com")
			bob := env.user(t, "bob@example.com")
			project := env.project(t, alice, "Launch")

			invite, err := env.projects.Invite(ctx, alice.ID, project.ID, InviteInput{Email: bob.Email})
			require.NoError(t, err)

			answerFirst(t, env.db, tt.first)
			got, err := env.invites.Respond(ctx, bob.ID, invite.ID, RespondInput{Action: tt.action})
			if tt.wantErr != "" {
				requireCode(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}
