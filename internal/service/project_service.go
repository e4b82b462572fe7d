package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"projecthub/internal/access"
	"projecthub/internal/apperrors"
	"projecthub/internal/logger"
	"projecthub/internal/model"
	"projecthub/internal/patch"
	"projecthub/internal/repository"
	"projecthub/internal/validator"
)

const countConcurrency = 4

type CreateProjectInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=1000"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	MemberEmails []string `json:"memberEmails" validate:"max=100"`
}

type UpdateProjectInput struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=1000"`
	Price       *float64             `json:"price" validate:"omitempty,gte=0"`
	StartDate   patch.Field[string]  `json:"startDate"`
	EndDate     patch.Field[string]  `json:"endDate"`
	Status      *model.ProjectStatus `json:"status" validate:"omitempty,oneof=ongoing completed on-hold cancelled"`
}

type InviteInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ProjectDetail is a project together with its tasks and notes, newest first.
type ProjectDetail struct {
	Project *model.Project
	Tasks   []model.Task
	Notes   []model.Note
}

// ProjectSummary is a list entry annotated with task counts.
type ProjectSummary struct {
	Project        model.Project
	TasksTotal     int64
	TasksCompleted int64
}

type ProjectService struct {
	gate     gate
	projects *repository.ProjectRepository
	users    repository.UserRepositoryInterface
	tasks    *repository.TaskRepository
	notes    *repository.NoteRepository
	invites  *repository.InviteRepository
	log      *zap.Logger
}

func NewProjectService(
	projects *repository.ProjectRepository,
	users repository.UserRepositoryInterface,
	tasks *repository.TaskRepository,
	notes *repository.NoteRepository,
	invites *repository.InviteRepository,
) *ProjectService {
	return &ProjectService{
		gate:     gate{projects: projects},
		projects: projects,
		users:    users,
		tasks:    tasks,
		notes:    notes,
		invites:  invites,
		log:      logger.WithModule("projects"),
	}
}

// Create stores a new project owned by userID. Every member email must resolve
// to a registered user; otherwise nothing is written and the missing addresses
// are reported.
func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, in CreateProjectInput) (*model.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	start, err := parseDate("startDate", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", in.EndDate)
	if err != nil {
		return nil, err
	}
	if !datesOrdered(start, end) {
		return nil, apperrors.NewValidation(apperrors.FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}

	invitees, err := s.resolveMembers(ctx, in.MemberEmails)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Title:       in.Title,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      model.ProjectOngoing,
		OwnerID:     userID,
	}
	if in.Price != nil {
		project.Price = *in.Price
	}

	invites := make([]model.Invite, 0, len(invitees))
	for _, u := range invitees {
		if u.ID == userID {
			continue
		}
		invites = append(invites, model.Invite{FromUserID: userID, ToUserID: u.ID})
	}

	if err := s.projects.Create(ctx, project, invites); err != nil {
		return nil, apperrors.Wrap(err, "failed to create project")
	}
	s.log.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", userID.String()),
		zap.Int("invites", len(invites)),
	)

	created, err := s.projects.GetByID(ctx, project.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load project")
	}
	return created, nil
}

func (s *ProjectService) resolveMembers(ctx context.Context, emails []string) ([]model.User, error) {
	seen := make(map[string]struct{}, len(emails))
	wanted := make([]string, 0, len(emails))
	for _, e := range emails {
		e = model.NormalizeEmail(e)
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		wanted = append(wanted, e)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	users, err := s.users.FindByEmails(ctx, wanted)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve member emails")
	}
	found := make(map[string]struct{}, len(users))
	for _, u := range users {
		found[u.Email] = struct{}{}
	}
	missing := make([]string, 0)
	for _, e := range wanted {
		if _, ok := found[e]; !ok {
			missing = append(missing, e)
		}
	}
	if len(missing) > 0 {
		appErr := apperrors.New("MEMBERS_NOT_FOUND", "Some member emails do not belong to registered users", http.StatusBadRequest)
		appErr.Details = map[string]any{"missingEmails": missing}
		return nil, appErr
	}
	return users, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*ProjectDetail, error) {
	project, err := s.gate.accessible(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, project.ID, repository.TaskFilter{})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load tasks")
	}
	notes, err := s.notes.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load notes")
	}
	return &ProjectDetail{Project: project, Tasks: tasks, Notes: notes}, nil
}

// List returns every project the user owns or belongs to, most recently
// updated first. A failed count is logged and reported as zero.
func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]ProjectSummary, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list projects")
	}

	summaries := make([]ProjectSummary, len(projects))
	var g errgroup.Group
	g.SetLimit(countConcurrency)
	for i := range projects {
		summaries[i].Project = projects[i]
		g.Go(func() error {
			total, done, err := s.tasks.CountByProject(ctx, projects[i].ID)
			if err != nil {
				s.log.Warn("task count failed",
					zap.String("project_id", projects[i].ID.String()),
					zap.Error(err),
				)
				return nil
			}
			summaries[i].TasksTotal = total
			summaries[i].TasksCompleted = done
			return nil
		})
	}
	_ = g.Wait()

	return summaries, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error) {
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

	project, err := s.gate.owned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	start, err := mergeDate("startDate", project.StartDate, in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := mergeDate("endDate", project.EndDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if !datesOrdered(start, end) {
		return nil, apperrors.NewValidation(apperrors.FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}

	if in.Title != nil {
		project.Title = *in.Title
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Price != nil {
		project.Price = *in.Price
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	project.StartDate = start
	project.EndDate = end

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Project not found")
		}
		return nil, apperrors.Wrap(err, "failed to update project")
	}
	return project, nil
}

// Delete removes the project and all of its tasks, notes, invites, files and memberships.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.gate.owned(ctx, userID, projectID); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperrors.ErrNotFound.WithMessage("Project not found")
		}
		return apperrors.Wrap(err, "failed to delete project")
	}
	s.log.Info("project deleted", zap.String("project_id", projectID.String()), zap.String("owner_id", userID.String()))
	return nil
}

// Invite creates a pending invite for the user registered under in.Email.
func (s *ProjectService) Invite(ctx context.Context, userID, projectID uuid.UUID, in InviteInput) (*model.Invite, error) {
	in.Email = model.NormalizeEmail(in.Email)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	project, err := s.gate.owned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("No user registered with that email")
		}
		return nil, apperrors.Wrap(err, "failed to look up invitee")
	}
	if access.CanAccess(target.ID, project) {
		return nil, apperrors.NewConflict("ALREADY_MEMBER", "User is already a member of this project")
	}

	pending, err := s.invites.HasPending(ctx, project.ID, target.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to check invites")
	}
	if pending {
		return nil, apperrors.NewConflict("INVITE_PENDING", "An invite is already pending for this user")
	}

	invite := &model.Invite{ProjectID: project.ID, FromUserID: userID, ToUserID: target.ID}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, apperrors.Wrap(err, "failed to create invite")
	}
	invite.Project = *project
	invite.From = project.Owner
	return invite, nil
}
