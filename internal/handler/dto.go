package handler

import (
	"time"

	"github.com/google/uuid"

	"projecthub/internal/model"
	"projecthub/internal/service"
)

// UserSummary is how users appear inside other resources.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProjectFileResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

type ProjectResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	StartDate   *time.Time            `json:"startDate"`
	EndDate     *time.Time            `json:"endDate"`
	Price       float64               `json:"price"`
	Status      string                `json:"status"`
	Owner       UserSummary           `json:"owner"`
	Members     []UserSummary         `json:"members"`
	Files       []ProjectFileResponse `json:"files"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// ProjectListItem is a project annotated with its task counts.
type ProjectListItem struct {
	ProjectResponse
	TasksTotal     int64 `json:"tasksTotal"`
	TasksCompleted int64 `json:"tasksCompleted"`
}

type ProjectDetailResponse struct {
	Project ProjectResponse `json:"project"`
	Tasks   []TaskResponse  `json:"tasks"`
	Notes   []NoteResponse  `json:"notes"`
}

type TaskResponse struct {
	ID          string             `json:"id"`
	ProjectID   string             `json:"projectId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	Priority    string             `json:"priority"`
	StartDate   *time.Time         `json:"startDate"`
	DueDate     *time.Time         `json:"dueDate"`
	Price       float64            `json:"price"`
	Attachments []model.Attachment `json:"attachments"`
	CreatedBy   UserSummary        `json:"createdBy"`
	Assignees   []UserSummary      `json:"assignees"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type NoteResponse struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"projectId"`
	Body      string      `json:"body"`
	CreatedBy UserSummary `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
}

// InviteProject is the slice of the project an invitee gets to see.
type InviteProject struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type InviteResponse struct {
	ID        string        `json:"id"`
	Project   InviteProject `json:"project"`
	From      UserSummary   `json:"from"`
	To        string        `json:"to"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

type FileResponse struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
	ProjectID    *string   `json:"projectId,omitempty"`
}

var statusLabels = map[string]string{
	"backlog":     "Backlog",
	"todo":        "Todo",
	"in-progress": "In Progress",
	"done":        "Done",
	"canceled":    "Canceled",
}

var priorityLabels = map[string]string{
	"low":    "Low",
	"medium": "Medium",
	"high":   "High",
}

// displayLabel maps stored enum values to UI labels; unknown values pass through.
func displayLabel(labels map[string]string, value string) string {
	if label, ok := labels[value]; ok {
		return label
	}
	return value
}

func toUserSummary(u model.User) UserSummary {
	return UserSummary{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}

// summaryFor falls back to a bare id when the user could not be loaded.
func summaryFor(users map[uuid.UUID]model.User, id uuid.UUID) UserSummary {
	if u, ok := users[id]; ok {
		return toUserSummary(u)
	}
	return UserSummary{ID: id.String()}
}

func toProjectResponse(p *model.Project) ProjectResponse {
	members := make([]UserSummary, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, toUserSummary(m))
	}
	files := make([]ProjectFileResponse, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, ProjectFileResponse{
			ID:           f.ID.String(),
			Filename:     f.Filename,
			OriginalName: f.OriginalName,
			URL:          f.URL,
			MimeType:     f.MimeType,
			Size:         f.Size,
			UploadedAt:   f.UploadedAt,
		})
	}

	owner := toUserSummary(p.Owner)
	if p.Owner.ID == uuid.Nil {
		owner = UserSummary{ID: p.OwnerID.String()}
	}

	return ProjectResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Price:       p.Price,
		Status:      string(p.Status),
		Owner:       owner,
		Members:     members,
		Files:       files,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectListItems(summaries []service.ProjectSummary) []ProjectListItem {
	items := make([]ProjectListItem, 0, len(summaries))
	for i := range summaries {
		items = append(items, ProjectListItem{
			ProjectResponse: toProjectResponse(&summaries[i].Project),
			TasksTotal:      summaries[i].TasksTotal,
			TasksCompleted:  summaries[i].TasksCompleted,
		})
	}
	return items
}

// taskUserIDs collects every user referenced by the tasks.
func taskUserIDs(tasks []model.Task) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, t := range tasks {
		add(t.CreatedBy)
		for _, a := range t.Assignees {
			add(a)
		}
	}
	return ids
}

func toTaskResponse(t model.Task, users map[uuid.UUID]model.User) TaskResponse {
	assignees := make([]UserSummary, 0, len(t.Assignees))
	for _, id := range t.Assignees {
		assignees = append(assignees, summaryFor(users, id))
	}
	attachments := []model.Attachment(t.Attachments)
	if attachments == nil {
		attachments = []model.Attachment{}
	}

	return TaskResponse{
		ID:          t.ID.String(),
		ProjectID:   t.ProjectID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		Price:       t.Price,
		Attachments: attachments,
		CreatedBy:   summaryFor(users, t.CreatedBy),
		Assignees:   assignees,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []model.Task, users map[uuid.UUID]model.User) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t, users))
	}
	return out
}

// toDisplayTasks is toTaskResponses with status and priority rendered as labels.
func toDisplayTasks(tasks []model.Task, users map[uuid.UUID]model.User) []TaskResponse {
	out := toTaskResponses(tasks, users)
	for i := range out {
		out[i].Status = displayLabel(statusLabels, out[i].Status)
		out[i].Priority = displayLabel(priorityLabels, out[i].Priority)
	}
	return out
}

func toNoteResponse(n model.Note) NoteResponse {
	creator := toUserSummary(n.Creator)
	if n.Creator.ID == uuid.Nil {
		creator = UserSummary{ID: n.CreatedBy.String()}
	}
	return NoteResponse{
		ID:        n.ID.String(),
		ProjectID: n.ProjectID.String(),
		Body:      n.Body,
		CreatedBy: creator,
		CreatedAt: n.CreatedAt,
	}
}

func toNoteResponses(notes []model.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}

func toInviteResponse(i model.Invite) InviteResponse {
	from := toUserSummary(i.From)
	if i.From.ID == uuid.Nil {
		from = UserSummary{ID: i.FromUserID.String()}
	}
	return InviteResponse{
		ID: i.ID.String(),
		Project: InviteProject{
			ID:          i.ProjectID.String(),
			Title:       i.Project.Title,
			Description: i.Project.Description,
		},
		From:      from,
		To:        i.ToUserID.String(),
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt,
	}
}

func toFileResponse(f *service.UploadedFile) FileResponse {
	resp := FileResponse{
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		URL:          f.URL,
		MimeType:     f.MimeType,
		Size:         f.Size,
		UploadedAt:   f.UploadedAt,
	}
	if f.ProjectID != nil {
		id := f.ProjectID.String()
		resp.ProjectID = &id
	}
	return resp
}
