package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/internal/apperrors"
	"projecthub/internal/model"
	"projecthub/internal/response"
	"projecthub/internal/service"
)

type TaskHandler struct {
	tasks *service.TaskService
	users *service.UserService
}

func NewTaskHandler(tasks *service.TaskService, users *service.UserService) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users}
}

type TaskEnvelope struct {
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

// render loads the users a task mentions and writes it with the given status.
func (h *TaskHandler) render(c *gin.Context, status int, message string, task *model.Task) {
	users, err := h.users.Directory(c.Request.Context(), taskUserIDs([]model.Task{*task}))
	if err != nil {
		response.Error(c, err)
		return
	}
	resp := toTaskResponse(*task, users)
	if message == "" {
		response.JSON(c, status, resp)
		return
	}
	response.JSON(c, status, TaskEnvelope{Message: message, Task: resp})
}

// List godoc
// @Summary      Tasks of a project, newest first
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Project ID"
// @Param        status    query     string  false  "todo, in-progress or done"
// @Param        priority  query     string  false  "low, medium or high"
// @Param        search    query     string  false  "Substring of title or description"
// @Success      200       {array}   TaskResponse
// @Failure      400       {object}  response.ErrorBody
// @Failure      404       {object}  response.ErrorBody
// @Router       /api/projects/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	var filter service.ListTasksInput
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, apperrors.NewBadRequest("Invalid query parameters").WithInternal(err))
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, projectID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	users, err := h.users.Directory(c.Request.Context(), taskUserIDs(tasks))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toTaskResponses(tasks, users))
}

// Create godoc
// @Summary      Create a task in a project
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Project ID"
// @Param        body  body      service.CreateTaskInput  true  "Task"
// @Success      201   {object}  TaskEnvelope
// @Failure      400   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /api/projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	var req service.CreateTaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, projectID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.render(c, http.StatusCreated, "Task created successfully", task)
}

// GetByID godoc
// @Summary      A single task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.render(c, http.StatusOK, "", task)
}

// Update godoc
// @Summary      Update task fields
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Task ID"
// @Param        body  body      service.UpdateTaskInput  true  "Fields to change; null clears a date"
// @Success      200   {object}  TaskEnvelope
// @Failure      400   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /api/tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req service.UpdateTaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.render(c, http.StatusOK, "Task updated successfully", task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.MessageBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Task deleted successfully")
}
