package domain

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// ParsePriority accepts any casing; empty input means Medium
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	}
	return "", fmt.Errorf("%w: invalid priority value %q, use Low, Medium, High or Urgent", ErrInvalidInput, s)
}

// Field limits
const (
	MaxColumnNameLength      = 50
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 1000
	MaxCommentLength         = 1000
)

// Task is a card inside a column, sorted by (order, id)
type Task struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	ColumnID     string     `json:"column_id" gorm:"index;not null"`
	Title        string     `json:"title" gorm:"size:200;not null"`
	Description  string     `json:"description,omitempty" gorm:"size:1000"`
	Priority     Priority   `json:"priority" gorm:"size:10;not null"`
	DueDate      *time.Time `json:"due_date,omitempty" gorm:"index"`
	Order        int        `json:"order" gorm:"column:display_order;not null;default:0"`
	IsCompleted  bool       `json:"is_completed" gorm:"not null;default:false"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ReminderSent bool       `json:"-" gorm:"not null;default:false"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Assignees    []TaskAssignee   `json:"assignees,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Comments     []TaskComment    `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Attachments  []TaskAttachment `json:"attachments,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CommentCount int64            `json:"comment_count" gorm:"-"`
}
