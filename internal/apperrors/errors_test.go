package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, "Failed to load project")

	assert.Equal(t, "Failed to load project: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestWithInternalCopies(t *testing.T) {
	with := ErrNotFound.WithInternal(errors.New("no rows"))

	assert.NotSame(t, ErrNotFound, with)
	assert.Nil(t, ErrNotFound.Internal)
	assert.NotNil(t, with.Internal)
}

func TestFromError(t *testing.T) {
	assert.Same(t, ErrForbidden, FromError(ErrForbidden))

	out := FromError(errors.New("raw"))
	assert.Equal(t, ErrInternalServer.Code, out.Code)
	assert.Error(t, out.Internal)

	assert.Nil(t, FromError(nil))
}

func TestConflictRendersAsBadRequest(t *testing.T) {
	err := NewConflict("INVITE_PENDING", "An invite is already pending")

	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.True(t, HasCode(err, "INVITE_PENDING"))
	assert.False(t, HasCode(errors.New("x"), "INVITE_PENDING"))
}

func TestNewValidation(t *testing.T) {
	err := NewValidation(FieldError{Field: "title", Message: "title is required"})

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Len(t, err.Fields, 1)
	assert.Equal(t, "VALIDATION_FAILED", err.Code)
}
