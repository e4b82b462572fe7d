package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/response"
	"projecthub/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	users    *service.UserService
}

func NewProjectHandler(projects *service.ProjectService, users *service.UserService) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users}
}

type ProjectEnvelope struct {
	Message string          `json:"message"`
	Project ProjectResponse `json:"project"`
}

type InviteEnvelope struct {
	Message string         `json:"message"`
	Invite  InviteResponse `json:"invite"`
}

// List godoc
// @Summary      Projects the caller owns or belongs to
// @Tags         Projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ProjectListItem
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summaries, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, toProjectListItems(summaries))
}

// Create godoc
// @Summary      Create a project and invite members by email
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      service.CreateProjectInput  true  "Project"
// @Success      201   {object}  ProjectEnvelope
// @Failure      400   {object}  response.ErrorBody
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreateProjectInput
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projects.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, ProjectEnvelope{
		Message: "Project created successfully",
		Project: toProjectResponse(project),
	})
}

// Get godoc
// @Summary      Project with its tasks and notes
// @Tags         Projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  ProjectDetailResponse
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	detail, err := h.projects.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	users, err := h.users.Directory(c.Request.Context(), taskUserIDs(detail.Tasks))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ProjectDetailResponse{
		Project: toProjectResponse(detail.Project),
		Tasks:   toDisplayTasks(detail.Tasks, users),
		Notes:   toNoteResponses(detail.Notes),
	})
}

// Update godoc
// @Summary      Update project fields (owner only)
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                      true  "Project ID"
// @Param        body  body      service.UpdateProjectInput  true  "Fields to change; null clears a date"
// @Success      200   {object}  ProjectEnvelope
// @Failure      400   {object}  response.ErrorBody
// @Failure      403   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /api/projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	var req service.UpdateProjectInput
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projects.Update(c.Request.Context(), userID, projectID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ProjectEnvelope{
		Message: "Project updated successfully",
		Project: toProjectResponse(project),
	})
}

// Delete godoc
// @Summary      Delete a project and everything in it (owner only)
// @Tags         Projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.MessageBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), userID, projectID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Project and all associated data deleted successfully")
}

// Invite godoc
// @Summary      Invite a registered user by email (owner only)
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Project ID"
// @Param        body  body      service.InviteInput  true  "Invitee"
// @Success      201   {object}  InviteEnvelope
// @Failure      400   {object}  response.ErrorBody
// @Failure      403   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /api/projects/{id}/invite [post]
func (h *ProjectHandler) Invite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	var req service.InviteInput
	if !bindJSON(c, &req) {
		return
	}

	invite, err := h.projects.Invite(c.Request.Context(), userID, projectID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, InviteEnvelope{
		Message: "Invite sent",
		Invite:  toInviteResponse(*invite),
	})
}
