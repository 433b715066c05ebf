package dto

import "time"

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=1000"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskRequest replaces the editable fields; nil pointers keep the current value
type UpdateTaskRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=200"`
	Description  *string    `json:"description" binding:"omitempty,max=1000"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

type MoveTaskRequest struct {
	ColumnID string `json:"column_id" binding:"required"`
}

type AssignRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CommentRequest struct {
	Content      string `json:"content" binding:"required,max=1000"`
	MentionEmail string `json:"mention_email" binding:"omitempty,email"`
}

// AttachmentUpload is the file part of a multipart upload
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
}
