package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Attachment is a file reference stored inline on the task row.
type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Task struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Title       string       `gorm:"size:200;not null"`
	Description string       `gorm:"size:2000"`
	Status      TaskStatus   `gorm:"size:20;not null;default:todo;index"`
	Priority    TaskPriority `gorm:"size:20;not null;default:medium"`
	StartDate   *time.Time
	DueDate     *time.Time
	Price       float64                         `gorm:"not null;default:0"`
	Attachments datatypes.JSONSlice[Attachment] `gorm:"not null"`
	CreatedBy   uuid.UUID                       `gorm:"type:uuid;not null"`
	Assignees   datatypes.JSONSlice[uuid.UUID]  `gorm:"not null"`
	SearchText  string                          `gorm:"size:2201;not null;default:''"`
	CreatedAt   time.Time                       `gorm:"index"`
	UpdatedAt   time.Time
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Attachments == nil {
		t.Attachments = datatypes.JSONSlice[Attachment]{}
	}
	if t.Assignees == nil {
		t.Assignees = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

// BeforeSave keeps SearchText, the lowercased title and description, in step.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.SearchText = strings.ToLower(t.Title + "\n" + t.Description)
	return nil
}
