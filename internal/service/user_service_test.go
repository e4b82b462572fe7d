package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, token, err := env.accounts.Register(ctx, RegisterInput{Name: " Ada ", Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.HashedPassword)

	_, _, err = env.accounts.Register(ctx, RegisterInput{Name: "Ada", Email: "ADA@example.com", Password: "secret1"})
	requireCode(t, err, "CONFLICT")

	logged, token, err := env.accounts.Login(ctx, LoginInput{Email: "ada@EXAMPLE.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token)

	_, _, err = env.accounts.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-password"})
	requireCode(t, err, "INVALID_CREDENTIALS")

	_, _, err = env.accounts.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	requireCode(t, err, "INVALID_CREDENTIALS")

	me, err := env.accounts.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, me.Email)

	_, err = env.accounts.Me(ctx, uuid.New())
	requireCode(t, err, "UNAUTHORIZED")
}

func TestUserService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, in := range []RegisterInput{
		{Name: "A", Email: "a@example.com", Password: "secret1"},
		{Name: "Ada", Email: "not-an-email", Password: "secret1"},
		{Name: "Ada", Email: "a@example.com", Password: "short"},
	} {
		_, _, err := env.accounts.Register(ctx, in)
		requireCode(t, err, "VALIDATION_FAILED")
	}
}
