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

type ColumnRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Column, error)
	// ListByBoard returns the board's columns sorted by (order, id)
	ListByBoard(ctx context.Context, boardID string) ([]*domain.Column, error)
	// Append inserts the column at order 0 when atFront is set, after the current maximum otherwise.
	// Fails with ErrInvalidInput once the board holds MaxColumnsPerBoard columns.
	Append(ctx context.Context, column *domain.Column, atFront bool) error
	// UpdateOrders applies the new orders to columns of boardID and ignores any other id.
	// Returns how many columns were updated.
	UpdateOrders(ctx context.Context, boardID string, orders []domain.OrderUpdate) (int, error)
}

type columnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) ColumnRepository {
	return &columnRepository{db: db}
}

func (r *columnRepository) FindByID(ctx context.Context, id string) (*domain.Column, error) {
	var column domain.Column
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

func (r *columnRepository) ListByBoard(ctx context.Context, boardID string) ([]*domain.Column, error) {
	var columns []*domain.Column
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("display_order ASC, id ASC").
		Find(&columns).Error
	if err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *columnRepository) Append(ctx context.Context, column *domain.Column, atFront bool) error {
	if column.ID == "" {
		column.ID = uuid.New().String()
	}
	column.CreatedAt = time.Now()
	column.UpdatedAt = column.CreatedAt

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Column{}).Where("board_id = ?", column.BoardID).Count(&count).Error; err != nil {
			return err
		}
		if count >= domain.MaxColumnsPerBoard {
			return fmt.Errorf("%w: a board can have at most %d columns", domain.ErrInvalidInput, domain.MaxColumnsPerBoard)
		}

		column.Order = 0
		if !atFront {
			max, err := maxOrder(tx, &domain.Column{}, "board_id", column.BoardID)
			if err != nil {
				return err
			}
			column.Order = max + 1
		}

		return tx.Omit("Tasks").Create(column).Error
	})
}

func (r *columnRepository) UpdateOrders(ctx context.Context, boardID string, orders []domain.OrderUpdate) (int, error) {
	updated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, o := range orders {
			res := tx.Model(&domain.Column{}).
				Where("id = ? AND board_id = ?", o.ID, boardID).
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
