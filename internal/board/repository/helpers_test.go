package repository_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var codeSeq atomic.Int64

func createBoard(t *testing.T, db *gorm.DB, ownerID, name string) *domain.Board {
	t.Helper()
	board := &domain.Board{
		Name:     name,
		JoinCode: fmt.Sprintf("T%05d", codeSeq.Add(1)),
		Kind:     domain.BoardKindTeam,
		OwnerID:  ownerID,
	}
	require.NoError(t, repository.NewBoardRepository(db).Create(context.Background(), board))
	return board
}

func createColumn(t *testing.T, db *gorm.DB, boardID, name string) *domain.Column {
	t.Helper()
	column := &domain.Column{BoardID: boardID, Name: name}
	require.NoError(t, repository.NewColumnRepository(db).Append(context.Background(), column, false))
	return column
}

func createTask(t *testing.T, db *gorm.DB, columnID, title string) *domain.Task {
	t.Helper()
	task := &domain.Task{ColumnID: columnID, Title: title, Priority: domain.PriorityMedium}
	require.NoError(t, repository.NewTaskRepository(db).Append(context.Background(), task))
	return task
}
