package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskup-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// BoardIDOf resolves the board a task belongs to through its column
	BoardIDOf(ctx context.Context, taskID string) (string, error)
	// Append places the task after the highest order in its column (an empty column counts as 0)
	Append(ctx context.Context, task *domain.Task) error
	// Move re-appends the task at the end of targetColumnID, which must be on the same board
	Move(ctx context.Context, taskID, targetColumnID string) (*domain.Task, error)
	// UpdateOrders applies the new orders to tasks currently in columnID and ignores any other id.
	// Returns how many tasks were updated.
	UpdateOrders(ctx context.Context, columnID string, orders []domain.OrderUpdate) (int, error)
	// ListByColumns returns tasks sorted by (order, id) with assignees and attachments
	ListByColumns(ctx context.Context, columnIDs []string) ([]*domain.Task, error)
	UpdateDetails(ctx context.Context, task *domain.Task) error
	SetCompleted(ctx context.Context, taskID string, completed bool) (*domain.Task, error)
	// Delete removes the task with its assignees, comments and attachments, returning attachment storage paths
	Delete(ctx context.Context, taskID string) ([]string, error)

	FindDueForReminder(ctx context.Context, dueBefore time.Time, limit int) ([]*domain.Task, error)
	MarkReminderSent(ctx context.Context, taskID string) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) BoardIDOf(ctx context.Context, taskID string) (string, error) {
	var boardIDs []string
	err := r.db.WithContext(ctx).Model(&domain.Column{}).
		Joins("JOIN tasks ON tasks.column_id = columns.id").
		Where("tasks.id = ?", taskID).
		Limit(1).
		Pluck("columns.board_id", &boardIDs).Error
	if err != nil {
		return "", err
	}
	if len(boardIDs) == 0 {
		return "", nil
	}
	return boardIDs[0], nil
}

func (r *taskRepository) Append(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := maxOrder(tx, &domain.Task{}, "column_id", task.ColumnID)
		if err != nil {
			return err
		}
		task.Order = max + 1
		return tx.Omit("Assignees", "Comments", "Attachments").Create(task).Error
	})
}

func (r *taskRepository) Move(ctx context.Context, taskID, targetColumnID string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
			}
			return err
		}

		var source, target domain.Column
		if err := tx.Where("id = ?", targetColumnID).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: column %s does not exist", domain.ErrInvalidTarget, targetColumnID)
			}
			return err
		}
		if err := tx.Where("id = ?", task.ColumnID).First(&source).Error; err != nil {
			return err
		}
		if source.BoardID != target.BoardID {
			return fmt.Errorf("%w: column %s is not on the task's board", domain.ErrInvalidTarget, targetColumnID)
		}

		max, err := maxOrder(tx, &domain.Task{}, "column_id", targetColumnID)
		if err != nil {
			return err
		}

		task.ColumnID = targetColumnID
		task.Order = max + 1
		task.UpdatedAt = time.Now()
		return tx.Model(&domain.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
			"column_id":     task.ColumnID,
			"display_order": task.Order,
			"updated_at":    task.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) UpdateOrders(ctx context.Context, columnID string, orders []domain.OrderUpdate) (int, error) {
	updated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, o := range orders {
			res := tx.Model(&domain.Task{}).
				Where("id = ? AND column_id = ?", o.ID, columnID).
				Updates(map[string]interface{}{"display_order": o.Order, "updated_at": now})
			if res.Error != nil {
				return res.Error
			}
			updated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (r *taskRepository) ListByColumns(ctx context.Context, columnIDs []string) ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	if len(columnIDs) == 0 {
		return tasks, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Assignees", func(db *gorm.DB) *gorm.DB { return db.Order("assigned_at ASC, id ASC") }).
		Preload("Assignees.User").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("column_id IN ?", columnIDs).
		Order("display_order ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) UpdateDetails(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"title":         task.Title,
		"description":   task.Description,
		"priority":      task.Priority,
		"due_date":      task.DueDate,
		"reminder_sent": task.ReminderSent,
		"updated_at":    task.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *taskRepository) SetCompleted(ctx context.Context, taskID string, completed bool) (*domain.Task, error) {
	var completedAt *time.Time
	now := time.Now()
	if completed {
		completedAt = &now
	}

	res := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"is_completed": completed,
		"completed_at": completedAt,
		"updated_at":   now,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, taskID)
}

func (r *taskRepository) Delete(ctx context.Context, taskID string) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.TaskAttachment{}).Where("task_id = ?", taskID).Pluck("storage_path", &paths).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&domain.TaskAttachment{}, &domain.TaskComment{}, &domain.TaskAssignee{}} {
			if err := tx.Where("task_id = ?", taskID).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", taskID).Delete(&domain.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// FindDueForReminder finds open tasks due before dueBefore whose reminder was not sent yet
func (r *taskRepository) FindDueForReminder(ctx context.Context, dueBefore time.Time, limit int) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Preload("Assignees.User").
		Where("due_date IS NOT NULL AND due_date <= ? AND is_completed = ? AND reminder_sent = ?", dueBefore, false, false).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) MarkReminderSent(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", taskID).Update("reminder_sent", true).Error
}
