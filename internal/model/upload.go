package model

import (
	"time"

	"github.com/google/uuid"
)

// Upload records who stored a file so deletion can be authorised.
type Upload struct {
	Filename     string `gorm:"primaryKey;size:255"`
	OriginalName string
	MimeType     string
	Size         int64
	UploadedBy   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
}
