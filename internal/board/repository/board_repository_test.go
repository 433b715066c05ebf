package repository_test

import (
	"context"
	"testing"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/repository"
	"taskup-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardRepositoryJoinCodeIsUnique(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBoardRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")

	first := &domain.Board{Name: "One", JoinCode: "ABC123", Kind: domain.BoardKindTeam, OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, first))

	exists, err := repo.JoinCodeExists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	second := &domain.Board{Name: "Two", JoinCode: "ABC123", Kind: domain.BoardKindTeam, OwnerID: owner.ID}
	err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := repo.FindByJoinCode(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	require.NotNil(t, found.Owner)
	assert.Equal(t, "Owner", found.Owner.Name)

	require.NoError(t, repo.UpdateJoinCode(ctx, first.ID, "ZZZ999"))
	found, err = repo.FindByJoinCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.ErrorIs(t, repo.UpdateJoinCode(ctx, "missing", "QQQ111"), domain.ErrNotFound)
}

func TestBoardRepositoryListForUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBoardRepository(db)
	members := repository.NewMembershipRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com")

	owned := createBoard(t, db, alice.ID, "Alice's")
	joined := createBoard(t, db, bob.ID, "Bob's team")
	banned := createBoard(t, db, bob.ID, "Bob's secret")
	createBoard(t, db, bob.ID, "Bob's other")

	require.NoError(t, members.AddMember(ctx, &domain.BoardMember{BoardID: joined.ID, UserID: alice.ID, Role: domain.RoleMember}))
	require.NoError(t, members.AddMember(ctx, &domain.BoardMember{BoardID: banned.ID, UserID: alice.ID, Role: domain.RoleMember}))
	_, err := members.Ban(ctx, &domain.BannedUser{BoardID: banned.ID, UserID: alice.ID, BannedBy: bob.ID})
	require.NoError(t, err)

	boards, err := repo.ListForUser(ctx, alice.ID)
	require.NoError(t, err)

	var ids []string
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{owned.ID, joined.ID}, ids)
}

func TestBoardRepositoryDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBoardRepository(db)
	activity := repository.NewActivityRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	member := testutil.CreateUser(t, db, "Member", "member@example.com")
	board := createBoard(t, db, owner.ID, "Doomed")
	other := createBoard(t, db, owner.ID, "Survivor")
	column := createColumn(t, db, board.ID, "Todo")
	task := createTask(t, db, column.ID, "Write tests")
	keep := createTask(t, db, createColumn(t, db, other.ID, "Todo").ID, "Keep me")

	require.NoError(t, repository.NewMembershipRepository(db).AddMember(ctx, &domain.BoardMember{BoardID: board.ID, UserID: member.ID, Role: domain.RoleMember}))
	require.NoError(t, activity.AddAssignee(ctx, &domain.TaskAssignee{TaskID: task.ID, UserID: member.ID}))
	require.NoError(t, activity.AddComment(ctx, &domain.TaskComment{TaskID: task.ID, UserID: owner.ID, Content: "hi"}))
	require.NoError(t, activity.AddAttachment(ctx, &domain.TaskAttachment{TaskID: task.ID, FileName: "a.txt", StoragePath: "tasks/a.txt", UploadedBy: owner.ID}))
	require.NoError(t, repository.NewInvitationRepository(db).Create(ctx, &domain.BoardInvitation{BoardID: board.ID, Email: "x@example.com", InvitedBy: owner.ID}))

	paths, err := repo.Delete(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks/a.txt"}, paths)

	for _, model := range []interface{}{&domain.Column{}, &domain.BoardMember{}, &domain.BoardInvitation{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("board_id = ?", board.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	for _, model := range []interface{}{&domain.TaskAssignee{}, &domain.TaskComment{}, &domain.TaskAttachment{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("task_id = ?", task.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	found, err := repository.NewTaskRepository(db).FindByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.NotNil(t, found, "other boards are untouched")

	_, err = repo.Delete(ctx, board.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
