package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOngoing, ProjectCompleted, ProjectOnHold, ProjectCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"size:1000"`
	StartDate   *time.Time
	EndDate     *time.Time
	Price       float64       `gorm:"not null;default:0"`
	Status      ProjectStatus `gorm:"size:20;not null;default:ongoing"`
	OwnerID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`

	Owner   User          `gorm:"foreignKey:OwnerID"`
	Files   []ProjectFile `gorm:"foreignKey:ProjectID"`
	Members []User        `gorm:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectOngoing
	}
	return nil
}

// MemberIDs lists the loaded members. The owner is always among them.
func (p *Project) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// HasMember reports whether userID is in the loaded member set.
func (p *Project) HasMember(userID uuid.UUID) bool {
	for _, m := range p.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// ProjectMember is the membership join row. The owner gets one at creation.
type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ProjectFile is upload metadata attached to a project.
type ProjectFile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename     string    `gorm:"not null;index"`
	OriginalName string
	URL          string
	MimeType     string
	Size         int64
	UploadedAt   time.Time
}

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}
	return nil
}
