package usecase

import (
	"context"
	"testing"
	"time"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	role, err := f.membership.EffectiveRole(ctx, board.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffectiveOwner, role)

	role, err = f.membership.EffectiveRole(ctx, board.ID, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffectiveMember, role)

	role, err = f.membership.EffectiveRole(ctx, board.ID, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffectiveNone, role)

	isMember, err := f.membership.IsMember(ctx, board.ID, f.owner.ID)
	require.NoError(t, err)
	assert.False(t, isMember, "the owner has no member row")

	isOwner, err := f.membership.IsOwner(ctx, board.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, isOwner)

	_, err = f.membership.IsOwner(ctx, "missing", f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	got, role, err := f.membership.Authorize(ctx, board.ID, f.owner.ID, domain.EffectiveOwner)
	require.NoError(t, err)
	assert.Equal(t, board.ID, got.ID)
	assert.Equal(t, domain.EffectiveOwner, role)

	_, _, err = f.membership.Authorize(ctx, board.ID, f.member.ID, domain.EffectiveAdmin)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, _, err = f.membership.Authorize(ctx, board.ID, f.other.ID, domain.EffectiveMember)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Equal(t, "access denied", err.Error())

	_, _, err = f.membership.Authorize(ctx, "missing", f.owner.ID, domain.EffectiveMember)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddMemberRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	_, err := f.membership.AddMember(ctx, board.ID, f.member.ID, "Member")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.membership.AddMember(ctx, board.ID, f.owner.ID, "Member")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.membership.AddMember(ctx, board.ID, f.other.ID, "Owner")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	member, err := f.membership.AddMember(ctx, board.ID, f.other.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, member.Role)

	members, err := f.membership.GetMembers(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, f.member.ID, members[0].UserID, "ordered by join time")
	assert.Equal(t, f.other.ID, members[1].UserID)
}

func TestBanIsExclusiveAndStaysUntilUnban(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	require.NoError(t, f.membership.BanMember(ctx, board.ID, f.member.ID, f.owner.ID))

	isMember, err := f.membership.IsMember(ctx, board.ID, f.member.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
	isBanned, err := f.membership.IsBanned(ctx, board.ID, f.member.ID)
	require.NoError(t, err)
	assert.True(t, isBanned)

	// banning again is a no-op
	require.NoError(t, f.membership.BanMember(ctx, board.ID, f.member.ID, f.owner.ID))

	// re-invitation does not lift the ban
	results, err := f.members.Invite(ctx, board.ID, f.owner.ID, []string{f.member.Email})
	require.NoError(t, err)
	assert.Equal(t, []dto.InviteResult{{Email: f.member.Email, Status: dto.InviteBanned}}, results)
	assert.Empty(t, f.notifier.invitations)

	_, err = f.boards.JoinByCode(ctx, f.member.ID, &dto.JoinBoardRequest{Code: board.JoinCode})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, err = f.membership.AddMember(ctx, board.ID, f.member.ID, "Member")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	bans, err := f.membership.GetBannedUsers(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, f.owner.ID, bans[0].BannedBy)

	require.NoError(t, f.membership.UnbanMember(ctx, board.ID, f.member.ID))
	_, err = f.boards.JoinByCode(ctx, f.member.ID, &dto.JoinBoardRequest{Code: board.JoinCode})
	require.NoError(t, err)

	role, err := f.membership.EffectiveRole(ctx, board.ID, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffectiveMember, role)
}

func TestBanGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	err := f.membership.BanMember(ctx, board.ID, f.owner.ID, f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.membership.UpdateMemberRole(ctx, board.ID, f.member.ID, "Admin", f.owner.ID)
	require.NoError(t, err)

	// admins cannot ban, only the owner
	err = f.membership.BanMember(ctx, board.ID, f.other.ID, f.member.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	err = f.membership.BanMember(ctx, board.ID, "no-such-user", f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	role, err := f.membership.EffectiveRole(ctx, board.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EffectiveOwner, role, "the owner is always permitted")
}

func TestRemoveAndUnbanAreIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	require.NoError(t, f.membership.RemoveMember(ctx, board.ID, f.member.ID))
	require.NoError(t, f.membership.RemoveMember(ctx, board.ID, f.member.ID))
	require.NoError(t, f.membership.UnbanMember(ctx, board.ID, f.member.ID))
	require.NoError(t, f.membership.UnbanMember(ctx, board.ID, f.member.ID))

	assert.ErrorIs(t, f.membership.UnbanMember(ctx, "missing", f.member.ID), domain.ErrNotFound)
}

func TestKickMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	assert.ErrorIs(t, f.membership.KickMember(ctx, board.ID, f.member.ID, f.member.ID), domain.ErrPermissionDenied)
	assert.ErrorIs(t, f.membership.KickMember(ctx, board.ID, f.owner.ID, f.owner.ID), domain.ErrInvalidInput)

	require.NoError(t, f.membership.KickMember(ctx, board.ID, f.member.ID, f.owner.ID))
	require.NoError(t, f.membership.KickMember(ctx, board.ID, f.member.ID, f.owner.ID))
	require.NoError(t, f.membership.KickMember(ctx, board.ID, f.other.ID, f.owner.ID), "kicking someone who never joined is a no-op")

	isMember, err := f.membership.IsMember(ctx, board.ID, f.member.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	// kicked users may come back with the code
	_, err = f.boards.JoinByCode(ctx, f.member.ID, &dto.JoinBoardRequest{Code: board.JoinCode})
	require.NoError(t, err)
}

func TestStaleMemberRowIsShadowedByBan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	// write a ban around the transactional helper to simulate drift
	require.NoError(t, f.db.Create(&domain.BannedUser{
		ID:       uuid.New().String(),
		BoardID:  board.ID,
		UserID:   f.member.ID,
		BannedBy: f.owner.ID,
		BannedAt: time.Now(),
	}).Error)

	_, _, err := f.membership.Authorize(ctx, board.ID, f.member.ID, domain.EffectiveMember)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestOwnerWinsOverStrayBan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	require.NoError(t, f.db.Create(&domain.BannedUser{
		ID:       uuid.New().String(),
		BoardID:  board.ID,
		UserID:   f.owner.ID,
		BannedBy: f.owner.ID,
		BannedAt: time.Now(),
	}).Error)

	_, role, err := f.membership.Authorize(ctx, board.ID, f.owner.ID, domain.EffectiveOwner)
	require.NoError(t, err)
	assert.Equal(t, domain.EffectiveOwner, role)
}

func TestUpdateMemberRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	board := f.board(t)

	member, err := f.membership.UpdateMemberRole(ctx, board.ID, f.member.ID, "Admin", f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, member.Role)

	_, err = f.membership.UpdateMemberRole(ctx, board.ID, f.other.ID, "Admin", f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.membership.UpdateMemberRole(ctx, board.ID, f.owner.ID, "Member", f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.membership.UpdateMemberRole(ctx, board.ID, f.member.ID, "Member", f.member.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.membership.UpdateMemberRole(ctx, board.ID, f.member.ID, "Boss", f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
