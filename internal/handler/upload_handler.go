package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"projecthub/internal/apperrors"
	"projecthub/internal/response"
	"projecthub/internal/service"
)

// multipartOverhead is the room left for boundaries and the other form fields.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploads *service.UploadService
}

func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

type UploadEnvelope struct {
	Message string       `json:"message"`
	File    FileResponse `json:"file"`
}

func (h *UploadHandler) tooLarge() *apperrors.AppError {
	return apperrors.NewBadRequest(fmt.Sprintf("File too large. Maximum size is %dMB.", h.uploads.MaxSize()>>20))
}

// Upload godoc
// @Summary      Upload a file, optionally attaching it to a project
// @Tags         Uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    true   "File (PDF, image, Word or text)"
// @Param        projectId  formData  string  false  "Project to attach the file to"
// @Success      200        {object}  UploadEnvelope
// @Failure      400        {object}  response.ErrorBody
// @Failure      404        {object}  response.ErrorBody
// @Router       /api/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploads.MaxSize()+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			response.Error(c, h.tooLarge())
		case errors.Is(err, http.ErrMissingFile):
			response.Error(c, apperrors.NewBadRequest("No file uploaded"))
		default:
			response.Error(c, apperrors.NewBadRequest("Invalid multipart form").WithInternal(err))
		}
		return
	}

	var projectID *uuid.UUID
	if raw := strings.TrimSpace(c.PostForm("projectId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest("Invalid project ID format"))
			return
		}
		projectID = &id
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to read upload"))
		return
	}
	defer src.Close()

	file, err := h.uploads.Upload(c.Request.Context(), userID, src, header.Filename, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, UploadEnvelope{
		Message: "File uploaded successfully",
		File:    toFileResponse(file),
	})
}

// Serve godoc
// @Summary      Download a stored file
// @Tags         Uploads
// @Produce      octet-stream
// @Param        filename  path  string  true  "Stored file name"
// @Success      200
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/uploads/{filename} [get]
func (h *UploadHandler) Serve(c *gin.Context) {
	path, err := h.uploads.Path(c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.File(path)
}

// Delete godoc
// @Summary      Delete a stored file (uploader or owner of a project listing it)
// @Tags         Uploads
// @Produce      json
// @Security     BearerAuth
// @Param        filename  path      string  true  "Stored file name"
// @Success      200       {object}  response.MessageBody
// @Failure      403       {object}  response.ErrorBody
// @Failure      404       {object}  response.ErrorBody
// @Router       /api/uploads/{filename} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.uploads.Delete(c.Request.Context(), userID, c.Param("filename")); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "File deleted successfully")
}
