package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	authrepo "taskup-backend/internal/auth/repository"
	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/dto"
	"taskup-backend/internal/board/repository"
	"taskup-backend/pkg/config"
	"taskup-backend/pkg/metrics"
)

type memberUsecase struct {
	repos      *repository.Repositories
	membership MembershipUsecase
	users      UserFinder
	notifier   Notifier
	config     *config.Config
}

func NewMemberUsecase(repos *repository.Repositories, membership MembershipUsecase, users UserFinder, notifier Notifier, cfg *config.Config) MemberUsecase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &memberUsecase{
		repos:      repos,
		membership: membership,
		users:      users,
		notifier:   notifier,
		config:     cfg,
	}
}

func (u *memberUsecase) ListMembers(ctx context.Context, boardID, userID string) ([]dto.MemberView, error) {
	board, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveMember)
	if err != nil {
		return nil, err
	}
	members, err := u.membership.GetMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return memberViews(board, members), nil
}

func (u *memberUsecase) ListBans(ctx context.Context, boardID, userID string) ([]*domain.BannedUser, error) {
	if _, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveAdmin); err != nil {
		return nil, err
	}
	return u.membership.GetBannedUsers(ctx, boardID)
}

// Invite records an invitation per address and queues an email carrying the
// join code and accept link. Banned users are skipped: an invitation never lifts a ban.
func (u *memberUsecase) Invite(ctx context.Context, boardID, userID string, emails []string) ([]dto.InviteResult, error) {
	board, _, err := u.membership.Authorize(ctx, boardID, userID, domain.EffectiveAdmin)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("%w: at least one email is required", domain.ErrInvalidInput)
	}
	inviter, err := u.users.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	inviterName := "Someone"
	if inviter != nil {
		inviterName = inviter.Name
	}

	seen := make(map[string]bool, len(emails))
	results := make([]dto.InviteResult, 0, len(emails))
	for _, raw := range emails {
		email := authrepo.NormalizeEmail(raw)
		if seen[email] {
			continue
		}
		seen[email] = true

		status, err := u.inviteOne(ctx, board, userID, inviterName, email)
		if err != nil {
			log.Printf("[MemberUsecase] Invite %s to board %s failed: %v", email, boardID, err)
			status = dto.InviteFailed
		}
		results = append(results, dto.InviteResult{Email: email, Status: status})
	}
	return results, nil
}

func (u *memberUsecase) inviteOne(ctx context.Context, board *domain.Board, inviterID, inviterName, email string) (string, error) {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return dto.InviteInvalid, nil
	}

	invitee, err := u.users.FindUserByEmail(email)
	if err != nil {
		return "", err
	}
	toUserID := ""
	if invitee != nil {
		toUserID = invitee.ID
		if invitee.ID == board.OwnerID {
			return dto.InviteMember, nil
		}
		banned, err := u.membership.IsBanned(ctx, board.ID, invitee.ID)
		if err != nil {
			return "", err
		}
		if banned {
			return dto.InviteBanned, nil
		}
		member, err := u.membership.IsMember(ctx, board.ID, invitee.ID)
		if err != nil {
			return "", err
		}
		if member {
			return dto.InviteMember, nil
		}
	}

	invitation := &domain.BoardInvitation{BoardID: board.ID, Email: email, InvitedBy: inviterID}
	if err := u.repos.Invitations.Create(ctx, invitation); err != nil {
		return "", err
	}

	if err := u.notifier.InvitationSent(ctx, domain.InvitationNotice{
		ToEmail:     email,
		ToUserID:    toUserID,
		InviterName: inviterName,
		BoardName:   board.Name,
		JoinCode:    board.JoinCode,
		AcceptURL:   fmt.Sprintf("%s/invitations/%s", u.config.AppURL, invitation.Token),
	}); err != nil {
		log.Printf("[MemberUsecase] Invitation notice for %s not queued: %v", email, err)
	}
	return dto.InviteSent, nil
}

// AcceptInvitation joins the invited account to the board without the board
// password. The signed in user must own the invited address.
func (u *memberUsecase) AcceptInvitation(ctx context.Context, token, userID string) (*domain.Board, error) {
	invitation, err := u.repos.Invitations.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, fmt.Errorf("%w: invitation", domain.ErrNotFound)
	}
	user, err := u.users.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || authrepo.NormalizeEmail(user.Email) != authrepo.NormalizeEmail(invitation.Email) {
		return nil, domain.ErrPermissionDenied
	}

	board, err := u.repos.Boards.FindByID(ctx, invitation.BoardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, fmt.Errorf("%w: board %s", domain.ErrNotFound, invitation.BoardID)
	}

	role, err := u.membership.RoleOn(ctx, board, userID)
	if err != nil {
		return nil, err
	}
	if role.AtLeast(domain.EffectiveMember) {
		return board, u.repos.Invitations.MarkAccepted(ctx, invitation.ID)
	}
	if invitation.AcceptedAt != nil {
		return nil, fmt.Errorf("%w: invitation was already used", domain.ErrConflict)
	}

	_, err = u.membership.AddMember(ctx, board.ID, userID, string(domain.RoleMember))
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}
	if err := u.repos.Invitations.MarkAccepted(ctx, invitation.ID); err != nil {
		return nil, err
	}

	metrics.RecordTransition(metrics.TransitionInviteAccept)
	log.Printf("[MemberUsecase] User %s accepted invitation %s to board %s", userID, invitation.ID, board.ID)
	return board, nil
}

func (u *memberUsecase) RemoveMember(ctx context.Context, boardID, actorID, targetID string) error {
	if actorID == targetID {
		owner, err := u.membership.IsOwner(ctx, boardID, actorID)
		if err != nil {
			return err
		}
		if owner {
			return fmt.Errorf("%w: the owner cannot leave the board, delete it instead", domain.ErrInvalidInput)
		}
		return u.membership.RemoveMember(ctx, boardID, targetID)
	}

	if _, _, err := u.membership.Authorize(ctx, boardID, actorID, domain.EffectiveOwner); err != nil {
		return err
	}
	return u.membership.RemoveMember(ctx, boardID, targetID)
}

func (u *memberUsecase) KickMember(ctx context.Context, boardID, actorID, targetID string) error {
	return u.membership.KickMember(ctx, boardID, targetID, actorID)
}

func (u *memberUsecase) BanMember(ctx context.Context, boardID, actorID, targetID string) error {
	return u.membership.BanMember(ctx, boardID, targetID, actorID)
}

func (u *memberUsecase) UnbanMember(ctx context.Context, boardID, actorID, targetID string) error {
	if _, _, err := u.membership.Authorize(ctx, boardID, actorID, domain.EffectiveOwner); err != nil {
		return err
	}
	return u.membership.UnbanMember(ctx, boardID, targetID)
}

func (u *memberUsecase) UpdateRole(ctx context.Context, boardID, actorID, targetID, role string) (*domain.BoardMember, error) {
	return u.membership.UpdateMemberRole(ctx, boardID, targetID, role, actorID)
}
