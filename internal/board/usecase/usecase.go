package usecase

import (
	"context"
	"io"
	"time"

	authdomain "taskup-backend/internal/auth/domain"
	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/dto"
)

// UserFinder resolves accounts; satisfied by the auth usecase
type UserFinder interface {
	FindUserByEmail(email string) (*authdomain.User, error)
	FindUserByID(id string) (*authdomain.User, error)
}

// MembershipUsecase owns who may do what on a board. The owner has no member
// row; a user is never both member and banned on the same board.
type MembershipUsecase interface {
	// IsMember reports whether a member row exists. The owner is not a member.
	IsMember(ctx context.Context, boardID, userID string) (bool, error)
	IsOwner(ctx context.Context, boardID, userID string) (bool, error)
	IsBanned(ctx context.Context, boardID, userID string) (bool, error)

	EffectiveRole(ctx context.Context, boardID, userID string) (domain.EffectiveRole, error)
	RoleOn(ctx context.Context, board *domain.Board, userID string) (domain.EffectiveRole, error)
	// Authorize loads the board and fails with ErrPermissionDenied unless the
	// user holds at least min on it
	Authorize(ctx context.Context, boardID, userID string, min domain.EffectiveRole) (*domain.Board, domain.EffectiveRole, error)

	AddMember(ctx context.Context, boardID, userID, role string) (*domain.BoardMember, error)
	RemoveMember(ctx context.Context, boardID, userID string) error
	KickMember(ctx context.Context, boardID, userID, actorID string) error
	BanMember(ctx context.Context, boardID, userID, actorID string) error
	UnbanMember(ctx context.Context, boardID, userID string) error
	UpdateMemberRole(ctx context.Context, boardID, userID, role, actorID string) (*domain.BoardMember, error)

	GetMembers(ctx context.Context, boardID string) ([]*domain.BoardMember, error)
	GetBannedUsers(ctx context.Context, boardID string) ([]*domain.BannedUser, error)
}

// TaskDraft is a validated new task
type TaskDraft struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	CreatedBy   string
}

// OrderingUsecase assigns column and task positions. Every call is one transaction.
type OrderingUsecase interface {
	AppendColumn(ctx context.Context, boardID, name string) (*domain.Column, error)
	AppendTask(ctx context.Context, columnID string, draft TaskDraft) (*domain.Task, error)
	MoveTask(ctx context.Context, taskID, targetColumnID string) (*domain.Task, error)
	ReorderTasks(ctx context.Context, columnID string, orders []domain.OrderUpdate) (int, error)
	ReorderColumns(ctx context.Context, boardID string, orders []domain.OrderUpdate) (int, error)
}

// BoardUsecase serves the board level endpoints for an authenticated user
type BoardUsecase interface {
	CreateBoard(ctx context.Context, ownerID string, req *dto.CreateBoardRequest) (*domain.Board, error)
	ListBoards(ctx context.Context, userID string) ([]dto.BoardSummary, error)
	GetBoard(ctx context.Context, boardID, userID string) (*dto.BoardDetailResponse, error)
	DeleteBoard(ctx context.Context, boardID, userID string) error
	JoinByCode(ctx context.Context, userID string, req *dto.JoinBoardRequest) (*domain.Board, error)
	RegenerateJoinCode(ctx context.Context, boardID, userID string) (string, error)

	AddColumn(ctx context.Context, boardID, userID, name string) (*domain.Column, error)
	ReorderColumns(ctx context.Context, boardID, userID string, orders []domain.OrderUpdate) (int, error)
}

// TaskUsecase serves the task endpoints. Every call checks board access first.
type TaskUsecase interface {
	CreateTask(ctx context.Context, columnID, userID string, req *dto.CreateTaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID, userID string, req *dto.UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID, userID string) error
	SetCompleted(ctx context.Context, taskID, userID string, completed bool) (*domain.Task, error)
	MoveTask(ctx context.Context, taskID, userID, targetColumnID string) (*domain.Task, error)
	ReorderTasks(ctx context.Context, columnID, userID string, orders []domain.OrderUpdate) (int, error)

	AssignByEmail(ctx context.Context, taskID, userID, email string) (*domain.TaskAssignee, error)
	Unassign(ctx context.Context, taskID, userID, assigneeID string) error
	ListAssignees(ctx context.Context, taskID, userID string) ([]*domain.TaskAssignee, error)

	AddComment(ctx context.Context, taskID, userID string, req *dto.CommentRequest) (*domain.TaskComment, error)
	ListComments(ctx context.Context, taskID, userID string) ([]*domain.TaskComment, error)

	AddAttachment(ctx context.Context, taskID, userID string, upload dto.AttachmentUpload, r io.Reader) (*domain.TaskAttachment, error)
	ListAttachments(ctx context.Context, taskID, userID string) ([]*domain.TaskAttachment, error)
	OpenAttachment(ctx context.Context, attachmentID, userID string) (*domain.TaskAttachment, io.ReadCloser, error)
}

// MemberUsecase serves the people endpoints of a board
type MemberUsecase interface {
	ListMembers(ctx context.Context, boardID, userID string) ([]dto.MemberView, error)
	ListBans(ctx context.Context, boardID, userID string) ([]*domain.BannedUser, error)
	Invite(ctx context.Context, boardID, userID string, emails []string) ([]dto.InviteResult, error)
	AcceptInvitation(ctx context.Context, token, userID string) (*domain.Board, error)

	// RemoveMember lets the owner remove anyone and a member remove themselves
	RemoveMember(ctx context.Context, boardID, actorID, targetID string) error
	KickMember(ctx context.Context, boardID, actorID, targetID string) error
	BanMember(ctx context.Context, boardID, actorID, targetID string) error
	UnbanMember(ctx context.Context, boardID, actorID, targetID string) error
	UpdateRole(ctx context.Context, boardID, actorID, targetID, role string) (*domain.BoardMember, error)
}
