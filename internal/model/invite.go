package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

type Invite struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProjectID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_invites_project_to"`
	FromUserID uuid.UUID    `gorm:"type:uuid;not null"`
	ToUserID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_invites_project_to;index"`
	Status     InviteStatus `gorm:"size:20;not null;default:pending"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
	From    User    `gorm:"foreignKey:FromUserID"`
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = InvitePending
	}
	return nil
}
