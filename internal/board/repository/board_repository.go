package repository

import (
	"context"
	"errors"
	"time"

	"taskup-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	FindByID(ctx context.Context, id string) (*domain.Board, error)
	FindByJoinCode(ctx context.Context, code string) (*domain.Board, error)
	JoinCodeExists(ctx context.Context, code string) (bool, error)
	UpdateJoinCode(ctx context.Context, boardID, code string) error
	// ListForUser returns boards the user owns plus boards they are a non-banned member of
	ListForUser(ctx context.Context, userID string) ([]*domain.Board, error)
	// Delete removes the board and everything under it, returning attachment storage paths
	Delete(ctx context.Context, boardID string) ([]string, error)
}

type boardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) error {
	if board.ID == "" {
		board.ID = uuid.New().String()
	}
	board.CreatedAt = time.Now()
	board.UpdatedAt = board.CreatedAt
	return translateError(r.db.WithContext(ctx).Omit("Owner").Create(board).Error, "join code")
}

func (r *boardRepository) FindByID(ctx context.Context, id string) (*domain.Board, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *boardRepository) FindByJoinCode(ctx context.Context, code string) (*domain.Board, error) {
	return r.findOne(ctx, "join_code = ?", code)
}

func (r *boardRepository) findOne(ctx context.Context, query string, arg string) (*domain.Board, error) {
	var board domain.Board
	err := r.db.WithContext(ctx).Preload("Owner").Where(query, arg).First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Board{}).Where("join_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *boardRepository) UpdateJoinCode(ctx context.Context, boardID, code string) error {
	res := r.db.WithContext(ctx).Model(&domain.Board{}).
		Where("id = ?", boardID).
		Updates(map[string]interface{}{"join_code": code, "updated_at": time.Now()})
	if res.Error != nil {
		return translateError(res.Error, "join code")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *boardRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Board, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&domain.BoardMember{}).Select("board_id").Where("user_id = ?", userID)
	bannedFrom := db.Model(&domain.BannedUser{}).Select("board_id").Where("user_id = ?", userID)

	var boards []*domain.Board
	err := db.Preload("Owner").
		Where("owner_id = ? OR (id IN (?) AND id NOT IN (?))", userID, memberOf, bannedFrom).
		Order("created_at DESC, id ASC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *boardRepository) Delete(ctx context.Context, boardID string) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Board{}).Where("id = ?", boardID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}

		columnIDs := tx.Model(&domain.Column{}).Select("id").Where("board_id = ?", boardID)
		taskIDs := tx.Model(&domain.Task{}).Select("id").Where("column_id IN (?)", columnIDs)

		if err := tx.Model(&domain.TaskAttachment{}).Where("task_id IN (?)", taskIDs).Pluck("storage_path", &paths).Error; err != nil {
			return err
		}

		// Children first so stores without foreign keys end up consistent too
		for _, model := range []interface{}{&domain.TaskAttachment{}, &domain.TaskComment{}, &domain.TaskAssignee{}} {
			if err := tx.Where("task_id IN (?)", taskIDs).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("column_id IN (?)", columnIDs).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&domain.Column{}, &domain.BoardMember{}, &domain.BannedUser{}, &domain.BoardInvitation{}} {
			if err := tx.Where("board_id = ?", boardID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", boardID).Delete(&domain.Board{}).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
