package repository

import (
	"context"
	"errors"
	"time"

	"taskup-backend/internal/board/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *domain.BoardInvitation) error
	FindByToken(ctx context.Context, token string) (*domain.BoardInvitation, error)
	MarkAccepted(ctx context.Context, id string) error
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *domain.BoardInvitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}
	if invitation.Token == "" {
		invitation.Token = uuid.New().String()
	}
	invitation.CreatedAt = time.Now()
	return translateError(r.db.WithContext(ctx).Create(invitation).Error, "invitation")
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*domain.BoardInvitation, error) {
	var invitation domain.BoardInvitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) MarkAccepted(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.BoardInvitation{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Update("accepted_at", time.Now()).Error
}
