package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"projecthub/internal/apperrors"
	"projecthub/internal/middleware"
	"projecthub/internal/response"
)

// currentUser reads the id set by the auth middleware. On failure the 401 is
// already written.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized.WithMessage("Not authenticated"))
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a uuid path parameter. On failure the 400 is already written.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperrors.NewBadRequest("Invalid "+what+" ID format"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into dst. Field rules are enforced by the
// services; this only rejects malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.Error(c, apperrors.NewBadRequest("Request body is required"))
			return false
		}
		response.Error(c, apperrors.NewBadRequest("Invalid request body").WithInternal(err))
		return false
	}
	return true
}
