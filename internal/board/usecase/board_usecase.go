package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/dto"
	"taskup-backend/internal/board/repository"
	"taskup-backend/pkg/joincode"
	"taskup-backend/pkg/metrics"
	"taskup-backend/pkg/storage"

	"golang.org/x/crypto/bcrypt"
)

// MaxJoinCodeAttempts bounds how many random codes are tried before giving up
const MaxJoinCodeAttempts = 20

type boardUsecase struct {
	repos      *repository.Repositories
	membership MembershipUsecase
	ordering   OrderingUsecase
	store      storage.ObjectStorage
	codes      joincode.Source
}

func NewBoardUsecase(repos *repository.Repositories, membership MembershipUsecase, ordering OrderingUsecase, store storage.ObjectStorage) BoardUsecase {
	return &boardUsecase{
		repos:      repos,
		membership: membership,
		ordering:   ordering,
		store:      store,
		codes:      joincode.CryptoSource{},
	}
}

// SetJoinCodeSource replaces the random source used for join codes
func (u *boardUsecase) SetJoinCodeSource(src joincode.Source) {
	u.codes = src
}

// withUniqueJoinCode draws codes until try accepts one that no board holds.
// The unique index is the final arbiter; a Conflict from try means another
// writer took the code between the check and the write.
func (u *boardUsecase) withUniqueJoinCode(ctx context.Context, try func(code string) error) (string, error) {
	for attempt := 0; attempt < MaxJoinCodeAttempts; attempt++ {
		code := joincode.Generate(u.codes)
		exists, err := u.repos.Boards.JoinCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}
		err = try(code)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", fmt.Errorf("%w: could not allocate a unique join code after %d attempts", domain.ErrConflict, MaxJoinCodeAttempts)
}

func (u *boardUsecase) CreateBoard(ctx context.Context, ownerID string, req *dto.CreateBoardRequest) (*domain.Board, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: board name is required", domain.ErrInvalidInput)
	}
	kind, ok := domain.ParseBoardKind(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: board kind must be Personal or Team", domain.ErrInvalidInput)
	}

	board := &domain.Board{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Kind:        kind,
		OwnerID:     ownerID,
		IsPrivate:   req.IsPrivate,
	}
	if req.IsPrivate {
		if strings.TrimSpace(req.Password) == "" {
			return nil, fmt.Errorf("%w: a private board needs a password", domain.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		board.PasswordHash = string(hash)
	}

	_, err := u.withUniqueJoinCode(ctx, func(code string) error {
		board.JoinCode = code
		return u.repos.Boards.Create(ctx, board)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BoardUsecase] Board %s created by %s", board.ID, ownerID)
	return board, nil
}

func (u *boardUsecase) ListBoards(ctx context.Context, userID string) ([]dto.BoardSummary, error) {
	boards, err := u.repos.Boards.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.BoardSummary, 0, len(boards))
	for _, board := range boards {
		role, err := u.membership.RoleOn(ctx, board, userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, dto.BoardSummary{Board: board, Role: role})
	}
	return summaries, nil
}

func (u *boardUsecase) GetBoard(ctx context.Context, boardID, userID string) (*dto.BoardDetailResponse, error) {
	board, role, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveMember)
	if err != nil {
		return nil, err
	}

	columns, err := u.repos.Columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	columnIDs := make([]string, len(columns))
	for i, c := range columns {
		columnIDs[i] = c.ID
	}

	tasks, err := u.repos.Tasks.ListByColumns(ctx, columnIDs)
	if err != nil {
		return nil, err
	}
	taskIDs := make([]string, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}
	counts, err := u.repos.Activity.CountComments(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	// tasks arrive sorted by (order, id); grouping keeps that order per column
	byColumn := make(map[string][]*domain.Task, len(columns))
	for _, t := range tasks {
		t.CommentCount = counts[t.ID]
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t)
	}
	views := make([]dto.ColumnView, len(columns))
	for i, c := range columns {
		colTasks := byColumn[c.ID]
		if colTasks == nil {
			colTasks = []*domain.Task{}
		}
		views[i] = dto.ColumnView{Column: c, Tasks: colTasks}
	}

	members, err := u.repos.Members.ListMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}

	return &dto.BoardDetailResponse{
		Board:   board,
		Role:    role,
		Columns: views,
		Members: memberViews(board, members),
	}, nil
}

// memberViews lists the owner first, then members by join time
func memberViews(board *domain.Board, members []*domain.BoardMember) []dto.MemberView {
	views := make([]dto.MemberView, 0, len(members)+1)
	views = append(views, dto.MemberView{User: board.Owner, Role: domain.EffectiveOwner, JoinedAt: board.CreatedAt})
	for _, m := range members {
		views = append(views, dto.MemberView{User: m.User, Role: domain.EffectiveRoleFor(m.Role), JoinedAt: m.JoinedAt})
	}
	return views
}

func (u *boardUsecase) DeleteBoard(ctx context.Context, boardID, userID string) error {
	if _, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveOwner); err != nil {
		return err
	}

	paths, err := u.repos.Boards.Delete(ctx, boardID)
	if err != nil {
		return err
	}
	if err := storage.DeleteAll(ctx, u.store, paths); err != nil {
		log.Printf("[BoardUsecase] Board %s deleted but attachment cleanup failed: %v", boardID, err)
	}

	log.Printf("[BoardUsecase] Board %s deleted by %s", boardID, userID)
	return nil
}

// JoinByCode adds the user as a Member. Owners and existing members get the
// board back unchanged; banned users are refused whatever the password.
func (u *boardUsecase) JoinByCode(ctx context.Context, userID string, req *dto.JoinBoardRequest) (*domain.Board, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !joincode.Valid(code) {
		return nil, fmt.Errorf("%w: join code must be %d letters or digits", domain.ErrInvalidInput, joincode.Length)
	}

	board, err := u.repos.Boards.FindByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, fmt.Errorf("%w: no board matches this code", domain.ErrNotFound)
	}
	if board.OwnerID == userID {
		return board, nil
	}

	banned, err := u.membership.IsBanned(ctx, board.ID, userID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, domain.ErrPermissionDenied
	}
	member, err := u.repos.Members.FindMember(ctx, board.ID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return board, nil
	}

	if board.IsPrivate {
		if req.Password == "" || bcrypt.CompareHashAndPassword([]byte(board.PasswordHash), []byte(req.Password)) != nil {
			return nil, fmt.Errorf("%w: wrong or missing board password", domain.ErrPermissionDenied)
		}
	}

	_, err = u.membership.AddMember(ctx, board.ID, userID, string(domain.RoleMember))
	if errors.Is(err, domain.ErrConflict) {
		// a parallel request from the same user got there first
		return board, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(metrics.TransitionJoin)
	log.Printf("[BoardUsecase] User %s joined board %s by code", userID, board.ID)
	return board, nil
}

func (u *boardUsecase) RegenerateJoinCode(ctx context.Context, boardID, userID string) (string, error) {
	if _, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveOwner); err != nil {
		return "", err
	}
	code, err := u.withUniqueJoinCode(ctx, func(code string) error {
		return u.repos.Boards.UpdateJoinCode(ctx, boardID, code)
	})
	if err != nil {
		return "", err
	}
	log.Printf("[BoardUsecase] Join code of board %s regenerated", boardID)
	return code, nil
}

func (u *boardUsecase) AddColumn(ctx context.Context, boardID, userID, name string) (*domain.Column, error) {
	if _, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveAdmin); err != nil {
		return nil, err
	}
	return u.ordering.AppendColumn(ctx, boardID, name)
}

func (u *boardUsecase) ReorderColumns(ctx context.Context, boardID, userID string, orders []domain.OrderUpdate) (int, error) {
	if _, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveAdmin); err != nil {
		return 0, err
	}
	return u.ordering.ReorderColumns(ctx, boardID, orders)
}
