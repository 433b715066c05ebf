package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/repository"
	"taskup-backend/pkg/metrics"
)

type membershipUsecase struct {
	boardRepo  repository.BoardRepository
	memberRepo repository.MembershipRepository
	users      UserFinder
}

func NewMembershipUsecase(repos *repository.Repositories, users UserFinder) MembershipUsecase {
	return &membershipUsecase{
		boardRepo:  repos.Boards,
		memberRepo: repos.Members,
		users:      users,
	}
}

func (u *membershipUsecase) loadBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	board, err := u.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, fmt.Errorf("%w: board %s", domain.ErrNotFound, boardID)
	}
	return board, nil
}

func (u *membershipUsecase) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	member, err := u.memberRepo.FindMember(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

func (u *membershipUsecase) IsOwner(ctx context.Context, boardID, userID string) (bool, error) {
	board, err := u.loadBoard(ctx, boardID)
	if err != nil {
		return false, err
	}
	return board.OwnerID == userID, nil
}

func (u *membershipUsecase) IsBanned(ctx context.Context, boardID, userID string) (bool, error) {
	ban, err := u.memberRepo.FindBan(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return ban != nil, nil
}

func (u *membershipUsecase) EffectiveRole(ctx context.Context, boardID, userID string) (domain.EffectiveRole, error) {
	board, err := u.loadBoard(ctx, boardID)
	if err != nil {
		return domain.EffectiveNone, err
	}
	return u.RoleOn(ctx, board, userID)
}

// RoleOn resolves owner first, then ban, then membership. The owner can never
// be banned, so a ban row only ever shadows a stray member row.
func (u *membershipUsecase) RoleOn(ctx context.Context, board *domain.Board, userID string) (domain.EffectiveRole, error) {
	if userID == "" {
		return domain.EffectiveNone, nil
	}
	if board.OwnerID == userID {
		return domain.EffectiveOwner, nil
	}

	ban, err := u.memberRepo.FindBan(ctx, board.ID, userID)
	if err != nil {
		return domain.EffectiveNone, err
	}
	if ban != nil {
		return domain.EffectiveNone, nil
	}

	member, err := u.memberRepo.FindMember(ctx, board.ID, userID)
	if err != nil {
		return domain.EffectiveNone, err
	}
	if member == nil {
		return domain.EffectiveNone, nil
	}
	return domain.EffectiveRoleFor(member.Role), nil
}

func (u *membershipUsecase) Authorize(ctx context.Context, boardID, userID string, min domain.EffectiveRole) (*domain.Board, domain.EffectiveRole, error) {
	board, err := u.loadBoard(ctx, boardID)
	if err != nil {
		return nil, domain.EffectiveNone, err
	}
	role, err := u.RoleOn(ctx, board, userID)
	if err != nil {
		return nil, domain.EffectiveNone, err
	}
	if !role.AtLeast(min) {
		return nil, role, domain.ErrPermissionDenied
	}
	return board, role, nil
}

func (u *membershipUsecase) AddMember(ctx context.Context, boardID, userID, role string) (*domain.BoardMember, error) {
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	board, err := u.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.OwnerID == userID {
		return nil, fmt.Errorf("%w: the owner already has full access", domain.ErrConflict)
	}

	member := &domain.BoardMember{
		BoardID:  boardID,
		UserID:   userID,
		Role:     parsed,
		JoinedAt: time.Now(),
	}
	if err := u.memberRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (u *membershipUsecase) RemoveMember(ctx context.Context, boardID, userID string) error {
	removed, err := u.memberRepo.RemoveMember(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if removed {
		metrics.RecordTransition(metrics.TransitionRemove)
		log.Printf("[Membership] Removed user %s from board %s", userID, boardID)
	}
	return nil
}

// requireOwner loads the board and checks that actorID owns it
func (u *membershipUsecase) requireOwner(ctx context.Context, boardID, actorID string) (*domain.Board, error) {
	board, err := u.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.OwnerID != actorID {
		return nil, domain.ErrPermissionDenied
	}
	return board, nil
}

func (u *membershipUsecase) KickMember(ctx context.Context, boardID, userID, actorID string) error {
	board, err := u.requireOwner(ctx, boardID, actorID)
	if err != nil {
		return err
	}
	if board.OwnerID == userID {
		return fmt.Errorf("%w: the owner cannot be kicked", domain.ErrInvalidInput)
	}

	removed, err := u.memberRepo.RemoveMember(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	metrics.RecordTransition(metrics.TransitionKick)
	log.Printf("[Membership] User %s kicked from board %s by %s", userID, boardID, actorID)
	return nil
}

func (u *membershipUsecase) BanMember(ctx context.Context, boardID, userID, actorID string) error {
	board, err := u.requireOwner(ctx, boardID, actorID)
	if err != nil {
		return err
	}
	if board.OwnerID == userID {
		return fmt.Errorf("%w: the owner cannot be banned", domain.ErrInvalidInput)
	}
	user, err := u.users.FindUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}

	created, err := u.memberRepo.Ban(ctx, &domain.BannedUser{
		BoardID:  boardID,
		UserID:   userID,
		BannedBy: actorID,
		BannedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	if created {
		metrics.RecordTransition(metrics.TransitionBan)
		log.Printf("[Membership] User %s banned from board %s by %s", userID, boardID, actorID)
	}
	return nil
}

func (u *membershipUsecase) UnbanMember(ctx context.Context, boardID, userID string) error {
	if _, err := u.loadBoard(ctx, boardID); err != nil {
		return err
	}
	removed, err := u.memberRepo.Unban(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if removed {
		metrics.RecordTransition(metrics.TransitionUnban)
		log.Printf("[Membership] User %s unbanned from board %s", userID, boardID)
	}
	return nil
}

func (u *membershipUsecase) UpdateMemberRole(ctx context.Context, boardID, userID, role, actorID string) (*domain.BoardMember, error) {
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	board, err := u.requireOwner(ctx, boardID, actorID)
	if err != nil {
		return nil, err
	}
	if board.OwnerID == userID {
		return nil, fmt.Errorf("%w: the owner role cannot be changed", domain.ErrInvalidInput)
	}

	updated, err := u.memberRepo.UpdateRole(ctx, boardID, userID, parsed)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: user %s is not a member", domain.ErrNotFound, userID)
	}
	metrics.RecordTransition(metrics.TransitionRole)
	log.Printf("[Membership] User %s is now %s on board %s (by %s)", userID, parsed, boardID, actorID)
	return u.memberRepo.FindMember(ctx, boardID, userID)
}

func (u *membershipUsecase) GetMembers(ctx context.Context, boardID string) ([]*domain.BoardMember, error) {
	if _, err := u.loadBoard(ctx, boardID); err != nil {
		return nil, err
	}
	return u.memberRepo.ListMembers(ctx, boardID)
}

func (u *membershipUsecase) GetBannedUsers(ctx context.Context, boardID string) ([]*domain.BannedUser, error) {
	if _, err := u.loadBoard(ctx, boardID); err != nil {
		return nil, err
	}
	return u.memberRepo.ListBans(ctx, boardID)
}
