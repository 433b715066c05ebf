package repository

import (
	"context"
	"errors"
	"time"

	"taskup-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository stores what happens on a task: assignees, comments and attachments
type ActivityRepository interface {
	AddAssignee(ctx context.Context, assignee *domain.TaskAssignee) error
	RemoveAssignee(ctx context.Context, taskID, userID string) (bool, error)
	ListAssignees(ctx context.Context, taskID string) ([]*domain.TaskAssignee, error)

	AddComment(ctx context.Context, comment *domain.TaskComment) error
	ListComments(ctx context.Context, taskID string) ([]*domain.TaskComment, error)
	CountComments(ctx context.Context, taskIDs []string) (map[string]int64, error)

	AddAttachment(ctx context.Context, attachment *domain.TaskAttachment) error
	ListAttachments(ctx context.Context, taskID string) ([]*domain.TaskAttachment, error)
	FindAttachment(ctx context.Context, id string) (*domain.TaskAttachment, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) AddAssignee(ctx context.Context, assignee *domain.TaskAssignee) error {
	if assignee.ID == "" {
		assignee.ID = uuid.New().String()
	}
	assignee.AssignedAt = time.Now()
	return translateError(r.db.WithContext(ctx).Omit("User").Create(assignee).Error, "assignment")
}

func (r *activityRepository) RemoveAssignee(ctx context.Context, taskID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("task_id = ? AND user_id = ?", taskID, userID).Delete(&domain.TaskAssignee{})
	return res.RowsAffected > 0, res.Error
}

func (r *activityRepository) ListAssignees(ctx context.Context, taskID string) ([]*domain.TaskAssignee, error) {
	var assignees []*domain.TaskAssignee
	err := r.db.WithContext(ctx).Preload("User").
		Where("task_id = ?", taskID).
		Order("assigned_at ASC, id ASC").
		Find(&assignees).Error
	if err != nil {
		return nil, err
	}
	return assignees, nil
}

func (r *activityRepository) AddComment(ctx context.Context, comment *domain.TaskComment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *activityRepository) ListComments(ctx context.Context, taskID string) ([]*domain.TaskComment, error) {
	var comments []*domain.TaskComment
	err := r.db.WithContext(ctx).Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *activityRepository) CountComments(ctx context.Context, taskIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TaskID string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.TaskComment{}).
		Select("task_id, COUNT(*) AS count").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TaskID] = row.Count
	}
	return counts, nil
}

func (r *activityRepository) AddAttachment(ctx context.Context, attachment *domain.TaskAttachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.New().String()
	}
	attachment.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Omit("Uploader").Create(attachment).Error
}

func (r *activityRepository) ListAttachments(ctx context.Context, taskID string) ([]*domain.TaskAttachment, error) {
	var attachments []*domain.TaskAttachment
	err := r.db.WithContext(ctx).Preload("Uploader").
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *activityRepository) FindAttachment(ctx context.Context, id string) (*domain.TaskAttachment, error) {
	var attachment domain.TaskAttachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}
