package repository

import (
	"errors"
	"fmt"

	"taskup-backend/internal/board/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates the board tables. Users must already exist.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Board{},
		&domain.BoardMember{},
		&domain.BannedUser{},
		&domain.BoardInvitation{},
		&domain.Column{},
		&domain.Task{},
		&domain.TaskAssignee{},
		&domain.TaskComment{},
		&domain.TaskAttachment{},
	)
}

// translateError maps unique index violations to domain.ErrConflict
func translateError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s already exists", domain.ErrConflict, what)
	}
	return err
}

// maxOrder returns the highest display_order among rows matching column = value, 0 when none
func maxOrder(tx *gorm.DB, model interface{}, column, value string) (int, error) {
	var max int
	err := tx.Model(model).
		Where(column+" = ?", value).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error
	return max, err
}
