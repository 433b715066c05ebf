package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"unicode/utf8"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/dto"
	"taskup-backend/internal/board/repository"
	"taskup-backend/pkg/config"
	"taskup-backend/pkg/storage"

	"github.com/google/uuid"
)

type taskUsecase struct {
	repos      *repository.Repositories
	membership MembershipUsecase
	ordering   OrderingUsecase
	users      UserFinder
	notifier   Notifier
	store      storage.ObjectStorage
	config     *config.Config
}

func NewTaskUsecase(
	repos *repository.Repositories,
	membership MembershipUsecase,
	ordering OrderingUsecase,
	users UserFinder,
	notifier Notifier,
	store storage.ObjectStorage,
	cfg *config.Config,
) TaskUsecase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &taskUsecase{
		repos:      repos,
		membership: membership,
		ordering:   ordering,
		users:      users,
		notifier:   notifier,
		store:      store,
		config:     cfg,
	}
}

// authorizeTask resolves the task's board and checks that userID may work on it
func (u *taskUsecase) authorizeTask(ctx context.Context, taskID, userID string) (*domain.Task, *domain.Board, error) {
	task, err := u.repos.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
	}
	boardID, err := u.repos.Tasks.BoardIDOf(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	board, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveMember)
	if err != nil {
		return nil, nil, err
	}
	return task, board, nil
}

func (u *taskUsecase) authorizeColumn(ctx context.Context, columnID, userID string) (*domain.Column, *domain.Board, error) {
	column, err := u.repos.Columns.FindByID(ctx, columnID)
	if err != nil {
		return nil, nil, err
	}
	if column == nil {
		return nil, nil, fmt.Errorf("%w: column %s", domain.ErrNotFound, columnID)
	}
	board, _, err := u.membership.Authorize(ctx, column.BoardID, userID, domain.EffectiveMember)
	if err != nil {
		return nil, nil, err
	}
	return column, board, nil
}

func (u *taskUsecase) taskURL(board *domain.Board, taskID string) string {
	return fmt.Sprintf("%s/boards/%s?task=%s", u.config.AppURL, board.ID, taskID)
}

func (u *taskUsecase) CreateTask(ctx context.Context, columnID, userID string, req *dto.CreateTaskRequest) (*domain.Task, error) {
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	if _, _, err := u.authorizeColumn(ctx, columnID, userID); err != nil {
		return nil, err
	}
	return u.ordering.AppendTask(ctx, columnID, TaskDraft{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
	})
}

func (u *taskUsecase) UpdateTask(ctx context.Context, taskID, userID string, req *dto.UpdateTaskRequest) (*domain.Task, error) {
	task, _, err := u.authorizeTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: task title is required", domain.ErrInvalidInput)
		}
		if utf8.RuneCountInString(title) > domain.MaxTaskTitleLength {
			return nil, fmt.Errorf("%w: task title is longer than %d characters", domain.ErrInvalidInput, domain.MaxTaskTitleLength)
		}
		task.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if utf8.RuneCountInString(description) > domain.MaxTaskDescriptionLength {
			return nil, fmt.Errorf("%w: description is longer than %d characters", domain.ErrInvalidInput, domain.MaxTaskDescriptionLength)
		}
		task.Description = description
	}
	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	switch {
	case req.ClearDueDate:
		task.DueDate = nil
		task.ReminderSent = false
	case req.DueDate != nil:
		if task.DueDate == nil || !task.DueDate.Equal(*req.DueDate) {
			task.ReminderSent = false
		}
		task.DueDate = req.DueDate
	}

	if err := u.repos.Tasks.UpdateDetails(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, taskID, userID string) error {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return err
	}
	paths, err := u.repos.Tasks.Delete(ctx, taskID)
	if err != nil {
		return err
	}
	if err := storage.DeleteAll(ctx, u.store, paths); err != nil {
		log.Printf("[TaskUsecase] Task %s deleted but attachment cleanup failed: %v", taskID, err)
	}
	return nil
}

func (u *taskUsecase) SetCompleted(ctx context.Context, taskID, userID string, completed bool) (*domain.Task, error) {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return u.repos.Tasks.SetCompleted(ctx, taskID, completed)
}

func (u *taskUsecase) MoveTask(ctx context.Context, taskID, userID, targetColumnID string) (*domain.Task, error) {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return u.ordering.MoveTask(ctx, taskID, targetColumnID)
}

func (u *taskUsecase) ReorderTasks(ctx context.Context, columnID, userID string, orders []domain.OrderUpdate) (int, error) {
	if _, _, err := u.authorizeColumn(ctx, columnID, userID); err != nil {
		return 0, err
	}
	return u.ordering.ReorderTasks(ctx, columnID, orders)
}

// AssignByEmail assigns a board participant and emails them unless they assigned themselves
func (u *taskUsecase) AssignByEmail(ctx context.Context, taskID, userID, email string) (*domain.TaskAssignee, error) {
	task, board, err := u.authorizeTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	assignee, err := u.users.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, fmt.Errorf("%w: no user with email %s", domain.ErrNotFound, email)
	}
	role, err := u.membership.RoleOn(ctx, board, assignee.ID)
	if err != nil {
		return nil, err
	}
	if !role.AtLeast(domain.EffectiveMember) {
		return nil, fmt.Errorf("%w: %s is not on this board", domain.ErrInvalidInput, email)
	}

	row := &domain.TaskAssignee{TaskID: taskID, UserID: assignee.ID}
	if err := u.repos.Activity.AddAssignee(ctx, row); err != nil {
		return nil, err
	}
	row.User = assignee

	if assignee.ID != userID {
		assigner, err := u.users.FindUserByID(userID)
		if err != nil || assigner == nil {
			log.Printf("[TaskUsecase] Could not load assigner %s: %v", userID, err)
		} else if err := u.notifier.TaskAssigned(ctx, domain.AssignmentNotice{
			ToEmail:      assignee.Email,
			ToUserID:     assignee.ID,
			AssignerName: assigner.Name,
			BoardName:    board.Name,
			TaskTitle:    task.Title,
			DueDate:      task.DueDate,
			TaskURL:      u.taskURL(board, taskID),
		}); err != nil {
			log.Printf("[TaskUsecase] Assignment notice for task %s not queued: %v", taskID, err)
		}
	}
	return row, nil
}

func (u *taskUsecase) Unassign(ctx context.Context, taskID, userID, assigneeID string) error {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return err
	}
	_, err := u.repos.Activity.RemoveAssignee(ctx, taskID, assigneeID)
	return err
}

func (u *taskUsecase) ListAssignees(ctx context.Context, taskID, userID string) ([]*domain.TaskAssignee, error) {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return u.repos.Activity.ListAssignees(ctx, taskID)
}

// AddComment stores the comment, then notifies the mentioned user when they
// are on the board. A bad mention never fails the comment.
func (u *taskUsecase) AddComment(ctx context.Context, taskID, userID string, req *dto.CommentRequest) (*domain.TaskComment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > domain.MaxCommentLength {
		return nil, fmt.Errorf("%w: comment is longer than %d characters", domain.ErrInvalidInput, domain.MaxCommentLength)
	}
	task, board, err := u.authorizeTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TaskComment{TaskID: taskID, UserID: userID, Content: content}
	if err := u.repos.Activity.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	author, err := u.users.FindUserByID(userID)
	if err != nil {
		log.Printf("[TaskUsecase] Could not load comment author %s: %v", userID, err)
	}
	comment.User = author

	if req.MentionEmail != "" && author != nil {
		u.notifyMention(ctx, board, task, author.Name, req.MentionEmail, content)
	}
	return comment, nil
}

func (u *taskUsecase) notifyMention(ctx context.Context, board *domain.Board, task *domain.Task, authorName, email, content string) {
	mentioned, err := u.users.FindUserByEmail(email)
	if err != nil || mentioned == nil {
		log.Printf("[TaskUsecase] Mentioned user %s not found on task %s", email, task.ID)
		return
	}
	role, err := u.membership.RoleOn(ctx, board, mentioned.ID)
	if err != nil || !role.AtLeast(domain.EffectiveMember) {
		log.Printf("[TaskUsecase] Mentioned user %s has no access to board %s", mentioned.ID, board.ID)
		return
	}
	if err := u.notifier.UserMentioned(ctx, domain.MentionNotice{
		ToEmail:       mentioned.Email,
		ToUserID:      mentioned.ID,
		MentionerName: authorName,
		BoardName:     board.Name,
		TaskTitle:     task.Title,
		Comment:       content,
		TaskURL:       u.taskURL(board, task.ID),
	}); err != nil {
		log.Printf("[TaskUsecase] Mention notice for task %s not queued: %v", task.ID, err)
	}
}

func (u *taskUsecase) ListComments(ctx context.Context, taskID, userID string) ([]*domain.TaskComment, error) {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return u.repos.Activity.ListComments(ctx, taskID)
}

func (u *taskUsecase) AddAttachment(ctx context.Context, taskID, userID string, upload dto.AttachmentUpload, r io.Reader) (*domain.TaskAttachment, error) {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	name := sanitizeFileName(upload.FileName)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if upload.Size > u.config.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file is larger than %d bytes", domain.ErrInvalidInput, u.config.MaxUploadBytes)
	}

	attachment := &domain.TaskAttachment{
		ID:          uuid.New().String(),
		TaskID:      taskID,
		FileName:    name,
		ContentType: upload.ContentType,
		UploadedBy:  userID,
	}
	attachment.StoragePath = path.Join("tasks", taskID, attachment.ID)

	size, err := u.store.Save(ctx, attachment.StoragePath, io.LimitReader(r, u.config.MaxUploadBytes+1), upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	attachment.Size = size
	if size > u.config.MaxUploadBytes {
		_ = u.store.Delete(ctx, attachment.StoragePath)
		return nil, fmt.Errorf("%w: file is larger than %d bytes", domain.ErrInvalidInput, u.config.MaxUploadBytes)
	}

	if err := u.repos.Activity.AddAttachment(ctx, attachment); err != nil {
		if delErr := u.store.Delete(ctx, attachment.StoragePath); delErr != nil {
			log.Printf("[TaskUsecase] Orphaned attachment object %s: %v", attachment.StoragePath, delErr)
		}
		return nil, err
	}
	return attachment, nil
}

func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	if utf8.RuneCountInString(name) > 255 {
		name = string([]rune(name)[:255])
	}
	return name
}

func (u *taskUsecase) ListAttachments(ctx context.Context, taskID, userID string) ([]*domain.TaskAttachment, error) {
	if _, _, err := u.authorizeTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return u.repos.Activity.ListAttachments(ctx, taskID)
}

func (u *taskUsecase) OpenAttachment(ctx context.Context, attachmentID, userID string) (*domain.TaskAttachment, io.ReadCloser, error) {
	attachment, err := u.repos.Activity.FindAttachment(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if attachment == nil {
		return nil, nil, fmt.Errorf("%w: attachment %s", domain.ErrNotFound, attachmentID)
	}
	if _, _, err := u.authorizeTask(ctx, attachment.TaskID, userID); err != nil {
		return nil, nil, err
	}
	rc, err := u.store.Open(ctx, attachment.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open attachment: %w", err)
	}
	return attachment, rc, nil
}
