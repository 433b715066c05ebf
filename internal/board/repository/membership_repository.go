package repository

import (
	"context"
	"errors"
	"time"

	"taskup-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipRepository owns the BoardMember and BannedUser rows. Transitions
// between the two run in one transaction so they stay mutually exclusive.
type MembershipRepository interface {
	FindMember(ctx context.Context, boardID, userID string) (*domain.BoardMember, error)
	FindBan(ctx context.Context, boardID, userID string) (*domain.BannedUser, error)
	// AddMember inserts a membership row unless the user is banned
	AddMember(ctx context.Context, member *domain.BoardMember) error
	RemoveMember(ctx context.Context, boardID, userID string) (bool, error)
	UpdateRole(ctx context.Context, boardID, userID string, role domain.Role) (bool, error)
	// Ban deletes any membership and records the ban. Returns false if the user was already banned.
	Ban(ctx context.Context, ban *domain.BannedUser) (bool, error)
	Unban(ctx context.Context, boardID, userID string) (bool, error)
	ListMembers(ctx context.Context, boardID string) ([]*domain.BoardMember, error)
	ListBans(ctx context.Context, boardID string) ([]*domain.BannedUser, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) FindMember(ctx context.Context, boardID, userID string) (*domain.BoardMember, error) {
	var member domain.BoardMember
	err := r.db.WithContext(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *membershipRepository) FindBan(ctx context.Context, boardID, userID string) (*domain.BannedUser, error) {
	var ban domain.BannedUser
	err := r.db.WithContext(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).First(&ban).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ban, nil
}

func (r *membershipRepository) AddMember(ctx context.Context, member *domain.BoardMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var banned int64
		if err := tx.Model(&domain.BannedUser{}).
			Where("board_id = ? AND user_id = ?", member.BoardID, member.UserID).
			Count(&banned).Error; err != nil {
			return err
		}
		if banned > 0 {
			return domain.ErrPermissionDenied
		}
		return translateError(tx.Omit("User").Create(member).Error, "membership")
	})
}

func (r *membershipRepository) RemoveMember(ctx context.Context, boardID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).Delete(&domain.BoardMember{})
	return res.RowsAffected > 0, res.Error
}

func (r *membershipRepository) UpdateRole(ctx context.Context, boardID, userID string, role domain.Role) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Update("role", role)
	return res.RowsAffected > 0, res.Error
}

func (r *membershipRepository) Ban(ctx context.Context, ban *domain.BannedUser) (bool, error) {
	if ban.ID == "" {
		ban.ID = uuid.New().String()
	}
	if ban.BannedAt.IsZero() {
		ban.BannedAt = time.Now()
	}

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ? AND user_id = ?", ban.BoardID, ban.UserID).Delete(&domain.BoardMember{}).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&domain.BannedUser{}).
			Where("board_id = ? AND user_id = ?", ban.BoardID, ban.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		if err := tx.Omit("User", "BannedByUser").Create(ban).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	// a concurrent ban won the race and already removed the membership
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return created, err
}

func (r *membershipRepository) Unban(ctx context.Context, boardID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).Delete(&domain.BannedUser{})
	return res.RowsAffected > 0, res.Error
}

func (r *membershipRepository) ListMembers(ctx context.Context, boardID string) ([]*domain.BoardMember, error) {
	var members []*domain.BoardMember
	err := r.db.WithContext(ctx).Preload("User").
		Where("board_id = ?", boardID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *membershipRepository) ListBans(ctx context.Context, boardID string) ([]*domain.BannedUser, error) {
	var bans []*domain.BannedUser
	err := r.db.WithContext(ctx).Preload("User").Preload("BannedByUser").
		Where("board_id = ?", boardID).
		Order("banned_at ASC, id ASC").
		Find(&bans).Error
	if err != nil {
		return nil, err
	}
	return bans, nil
}
