package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projecthub/internal/access"
	"projecthub/internal/apperrors"
	"projecthub/internal/logger"
	"projecthub/internal/model"
	"projecthub/internal/patch"
	"projecthub/internal/repository"
	"projecthub/internal/validator"
)

type AttachmentInput struct {
	Filename string `json:"filename" validate:"required,max=255"`
	URL      string `json:"url" validate:"required,max=2048"`
	MimeType string `json:"mimeType" validate:"required,max=255"`
}

type CreateTaskInput struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Description string             `json:"description" validate:"max=2000"`
	Status      model.TaskStatus   `json:"status" validate:"omitempty,oneof=todo in-progress done"`
	Priority    model.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	StartDate   string             `json:"startDate"`
	DueDate     string             `json:"dueDate"`
	Price       *float64           `json:"price" validate:"omitempty,gte=0"`
	Attachments []AttachmentInput  `json:"attachments" validate:"max=20,dive"`
}

type UpdateTaskInput struct {
	Title       *string             `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=2000"`
	Status      *model.TaskStatus   `json:"status" validate:"omitempty,oneof=todo in-progress done"`
	Priority    *model.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	StartDate   patch.Field[string] `json:"startDate"`
	DueDate     patch.Field[string] `json:"dueDate"`
	Price       *float64            `json:"price" validate:"omitempty,gte=0"`
	Attachments *[]AttachmentInput  `json:"attachments" validate:"omitempty,max=20,dive"`
	Assignees   *[]uuid.UUID        `json:"assignees" validate:"omitempty,max=50"`
}

type ListTasksInput struct {
	Status   string `form:"status" json:"status" validate:"omitempty,oneof=todo in-progress done"`
	Priority string `form:"priority" json:"priority" validate:"omitempty,oneof=low medium high"`
	Search   string `form:"search" json:"search" validate:"max=100"`
}

var errDateOrder = apperrors.NewValidation(apperrors.FieldError{
	Field:   "startDate",
	Message: "startDate must not be after dueDate",
})

type TaskService struct {
	gate  gate
	tasks *repository.TaskRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewTaskService(projects *repository.ProjectRepository, tasks *repository.TaskRepository) *TaskService {
	return &TaskService{
		gate:  gate{projects: projects},
		tasks: tasks,
		log:   logger.WithModule("tasks"),
		now:   time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, userID, projectID uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	start, err := parseDate("startDate", in.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDate("dueDate", in.DueDate)
	if err != nil {
		return nil, err
	}
	if !datesOrdered(start, due) {
		return nil, errDateOrder
	}

	project, err := s.gate.accessible(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ProjectID:   project.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		StartDate:   start,
		DueDate:     due,
		CreatedBy:   userID,
		Assignees:   []uuid.UUID{userID},
		Attachments: s.attachments(in.Attachments),
	}
	if in.Price != nil {
		task.Price = *in.Price
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.Wrap(err, "failed to create task")
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID, projectID uuid.UUID, in ListTasksInput) ([]model.Task, error) {
	in.Search = strings.TrimSpace(in.Search)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	project, err := s.gate.accessible(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, project.ID, repository.TaskFilter{
		Status:   model.TaskStatus(in.Status),
		Priority: model.TaskPriority(in.Priority),
		Search:   in.Search,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tasks")
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, _, err := s.load(ctx, userID, taskID)
	return task, err
}

// Update applies a partial update. The date order is checked on the merged
// values, so an untouched side keeps its stored date for the comparison.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		in.Description = &desc
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	task, project, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !access.CanMutateTask(userID, project) {
		return nil, apperrors.ErrForbidden
	}

	start, err := mergeDate("startDate", task.StartDate, in.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := mergeDate("dueDate", task.DueDate, in.DueDate)
	if err != nil {
		return nil, err
	}
	if !datesOrdered(start, due) {
		return nil, errDateOrder
	}

	if in.Assignees != nil {
		for _, id := range *in.Assignees {
			if !access.CanAccess(id, project) {
				return nil, apperrors.NewValidation(apperrors.FieldError{
					Field:   "assignees",
					Message: "assignees must be members of the project",
				})
			}
		}
		task.Assignees = *in.Assignees
	}
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Price != nil {
		task.Price = *in.Price
	}
	if in.Attachments != nil {
		task.Attachments = s.attachments(*in.Attachments)
	}
	task.StartDate = start
	task.DueDate = due

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Task not found")
		}
		return nil, apperrors.Wrap(err, "failed to update task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, project, err := s.load(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !access.CanMutateTask(userID, project) {
		return apperrors.ErrForbidden
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return apperrors.ErrNotFound.WithMessage("Task not found")
		}
		return apperrors.Wrap(err, "failed to delete task")
	}
	s.log.Debug("task deleted", zap.String("task_id", task.ID.String()), zap.String("user_id", userID.String()))
	return nil
}

// load resolves task -> project and hides tasks of projects the user cannot see.
func (s *TaskService) load(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, *model.Project, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, nil, apperrors.ErrNotFound.WithMessage("Task not found")
		}
		return nil, nil, apperrors.Wrap(err, "failed to load task")
	}
	project, err := s.gate.accessible(ctx, userID, task.ProjectID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrNotFound.Code) {
			return nil, nil, apperrors.ErrNotFound.WithMessage("Task not found")
		}
		return nil, nil, err
	}
	return task, project, nil
}

func (s *TaskService) attachments(in []AttachmentInput) []model.Attachment {
	out := make([]model.Attachment, 0, len(in))
	now := s.now().UTC()
	for _, a := range in {
		out = append(out, model.Attachment{
			Filename:   a.Filename,
			URL:        a.URL,
			MimeType:   a.MimeType,
			UploadedAt: now,
		})
	}
	return out
}
