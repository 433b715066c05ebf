package domain

import (
	"time"

	authdomain "taskup-backend/internal/auth/domain"
)

type TaskAssignee struct {
	ID         string           `json:"id" gorm:"primaryKey"`
	TaskID     string           `json:"task_id" gorm:"uniqueIndex:idx_task_assignee;not null"`
	UserID     string           `json:"user_id" gorm:"uniqueIndex:idx_task_assignee;index;not null"`
	AssignedAt time.Time        `json:"assigned_at"`
	User       *authdomain.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TaskComment is append-only
type TaskComment struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	TaskID    string           `json:"task_id" gorm:"index;not null"`
	UserID    string           `json:"user_id" gorm:"not null"`
	Content   string           `json:"content" gorm:"size:1000;not null"`
	CreatedAt time.Time        `json:"created_at"`
	User      *authdomain.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TaskAttachment is the metadata of a file whose bytes live in object storage
type TaskAttachment struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	TaskID      string           `json:"task_id" gorm:"index;not null"`
	FileName    string           `json:"file_name" gorm:"size:255;not null"`
	ContentType string           `json:"content_type" gorm:"size:100"`
	Size        int64            `json:"size"`
	StoragePath string           `json:"-" gorm:"not null"`
	UploadedBy  string           `json:"uploaded_by" gorm:"not null"`
	CreatedAt   time.Time        `json:"created_at"`
	Uploader    *authdomain.User `json:"uploader,omitempty" gorm:"foreignKey:UploadedBy"`
}
