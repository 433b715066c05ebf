package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/repository"
	"taskup-backend/pkg/config"
)

// orderingUsecase validates input and hands position math to the repositories,
// which compute max(order)+1 inside the same transaction as the write.
type orderingUsecase struct {
	boardRepo  repository.BoardRepository
	columnRepo repository.ColumnRepository
	taskRepo   repository.TaskRepository
	insertAt   string
}

func NewOrderingUsecase(repos *repository.Repositories, cfg *config.Config) OrderingUsecase {
	return &orderingUsecase{
		boardRepo:  repos.Boards,
		columnRepo: repos.Columns,
		taskRepo:   repos.Tasks,
		insertAt:   cfg.ColumnInsertPosition,
	}
}

func (u *orderingUsecase) AppendColumn(ctx context.Context, boardID, name string) (*domain.Column, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: column name is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxColumnNameLength {
		return nil, fmt.Errorf("%w: column name is longer than %d characters", domain.ErrInvalidInput, domain.MaxColumnNameLength)
	}

	board, err := u.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, fmt.Errorf("%w: board %s", domain.ErrNotFound, boardID)
	}

	column := &domain.Column{BoardID: boardID, Name: name}
	if err := u.columnRepo.Append(ctx, column, u.insertAt == config.ColumnInsertFront); err != nil {
		return nil, err
	}
	return column, nil
}

func (u *orderingUsecase) AppendTask(ctx context.Context, columnID string, draft TaskDraft) (*domain.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > domain.MaxTaskTitleLength {
		return nil, fmt.Errorf("%w: task title is longer than %d characters", domain.ErrInvalidInput, domain.MaxTaskTitleLength)
	}
	if utf8.RuneCountInString(draft.Description) > domain.MaxTaskDescriptionLength {
		return nil, fmt.Errorf("%w: description is longer than %d characters", domain.ErrInvalidInput, domain.MaxTaskDescriptionLength)
	}
	priority := draft.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	column, err := u.columnRepo.FindByID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, fmt.Errorf("%w: column %s", domain.ErrNotFound, columnID)
	}

	task := &domain.Task{
		ColumnID:    columnID,
		Title:       title,
		Description: draft.Description,
		Priority:    priority,
		DueDate:     draft.DueDate,
		CreatedBy:   draft.CreatedBy,
	}
	if err := u.taskRepo.Append(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *orderingUsecase) MoveTask(ctx context.Context, taskID, targetColumnID string) (*domain.Task, error) {
	if targetColumnID == "" {
		return nil, fmt.Errorf("%w: target column is required", domain.ErrInvalidTarget)
	}
	return u.taskRepo.Move(ctx, taskID, targetColumnID)
}

func (u *orderingUsecase) ReorderTasks(ctx context.Context, columnID string, orders []domain.OrderUpdate) (int, error) {
	column, err := u.columnRepo.FindByID(ctx, columnID)
	if err != nil {
		return 0, err
	}
	if column == nil {
		return 0, fmt.Errorf("%w: column %s", domain.ErrNotFound, columnID)
	}
	if len(orders) == 0 {
		return 0, nil
	}
	return u.taskRepo.UpdateOrders(ctx, columnID, orders)
}

func (u *orderingUsecase) ReorderColumns(ctx context.Context, boardID string, orders []domain.OrderUpdate) (int, error) {
	board, err := u.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		return 0, err
	}
	if board == nil {
		return 0, fmt.Errorf("%w: board %s", domain.ErrNotFound, boardID)
	}
	if len(orders) == 0 {
		return 0, nil
	}
	return u.columnRepo.UpdateOrders(ctx, boardID, orders)
}
