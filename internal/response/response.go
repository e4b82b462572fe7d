package response

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecthub/internal/apperrors"
	"projecthub/internal/logger"
)

var exposeInternal atomic.Bool

// SetExposeInternal controls whether 5xx bodies carry the internal error text.
// It is switched on outside production.
func SetExposeInternal(enabled bool) {
	exposeInternal.Store(enabled)
}

// ErrorBody is the JSON shape of every error reply.
type ErrorBody struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
	Details map[string]any         `json:"details,omitempty"`
	Detail  string                 `json:"detail,omitempty"`
}

// MessageBody is returned by operations that have nothing else to report.
type MessageBody struct {
	Message string `json:"message"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}

// Error renders err and aborts the chain. Server errors are logged with the
// request path.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = apperrors.ErrInternalServer
	}

	appErr := apperrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := ErrorBody{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Fields:  appErr.Fields,
		Details: appErr.Details,
	}

	if status >= http.StatusInternalServerError {
		logger.WithModule("http").Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(appErr.Internal),
		)
		if exposeInternal.Load() && appErr.Internal != nil {
			body.Detail = appErr.Internal.Error()
		}
	}

	c.AbortWithStatusJSON(status, body)
}
