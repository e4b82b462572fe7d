package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/response"
	"projecthub/internal/service"
)

type NoteHandler struct {
	notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type NoteEnvelope struct {
	Message string       `json:"message"`
	Note    NoteResponse `json:"note"`
}

// List godoc
// @Summary      Notes of a project, newest first
// @Tags         Notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {array}   NoteResponse
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/projects/{id}/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	notes, err := h.notes.List(c.Request.Context(), userID, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, toNoteResponses(notes))
}

// Create godoc
// @Summary      Add a note to a project
// @Tags         Notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Project ID"
// @Param        body  body      service.CreateNoteInput  true  "Note"
// @Success      201   {object}  NoteEnvelope
// @Failure      400   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /api/projects/{id}/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	var req service.CreateNoteInput
	if !bindJSON(c, &req) {
		return
	}

	note, err := h.notes.Create(c.Request.Context(), userID, projectID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, NoteEnvelope{
		Message: "Note created successfully",
		Note:    toNoteResponse(*note),
	})
}

// Delete godoc
// @Summary      Delete a note (author or project owner)
// @Tags         Notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note ID"
// @Success      200  {object}  response.MessageBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	noteID, ok := pathID(c, "id", "note")
	if !ok {
		return
	}

	if err := h.notes.Delete(c.Request.Context(), userID, noteID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Note deleted successfully")
}
