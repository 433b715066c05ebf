package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	authdomain "taskup-backend/internal/auth/domain"
	authrepo "taskup-backend/internal/auth/repository"
	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/dto"
	"taskup-backend/internal/board/repository"
	"taskup-backend/internal/testutil"
	"taskup-backend/pkg/config"
	"taskup-backend/pkg/joincode"
	"taskup-backend/pkg/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userFinder struct {
	repo authrepo.UserRepository
}

func (f userFinder) FindUserByEmail(email string) (*authdomain.User, error) {
	return f.repo.FindByEmail(email)
}

func (f userFinder) FindUserByID(id string) (*authdomain.User, error) {
	return f.repo.FindByID(id)
}

type recordingNotifier struct {
	mu          sync.Mutex
	invitations []domain.InvitationNotice
	assignments []domain.AssignmentNotice
	mentions    []domain.MentionNotice
}

func (n *recordingNotifier) InvitationSent(_ context.Context, notice domain.InvitationNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invitations = append(n.invitations, notice)
	return nil
}

func (n *recordingNotifier) TaskAssigned(_ context.Context, notice domain.AssignmentNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assignments = append(n.assignments, notice)
	return nil
}

func (n *recordingNotifier) UserMentioned(_ context.Context, notice domain.MentionNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mentions = append(n.mentions, notice)
	return nil
}

// scriptedCodes replays fixed join codes, cycling through them
type scriptedCodes struct {
	codes []string
	pos   int
}

func (s *scriptedCodes) IntN(n int) int {
	code := s.codes[(s.pos/joincode.Length)%len(s.codes)]
	c := code[s.pos%joincode.Length]
	s.pos++
	return strings.IndexByte(joincode.Alphabet, c)
}

type fixture struct {
	db         *gorm.DB
	repos      *repository.Repositories
	cfg        *config.Config
	store      *storage.LocalStorage
	notifier   *recordingNotifier
	membership MembershipUsecase
	ordering   OrderingUsecase
	boards     *boardUsecase
	tasks      TaskUsecase
	members    MemberUsecase

	owner  *authdomain.User
	member *authdomain.User
	other  *authdomain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	users := userFinder{repo: authrepo.NewUserRepository(db)}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		AppURL:               "http://app.test",
		ColumnInsertPosition: config.ColumnInsertEnd,
		MaxUploadBytes:       1024,
	}
	notifier := &recordingNotifier{}
	membership := NewMembershipUsecase(repos, users)
	ordering := NewOrderingUsecase(repos, cfg)

	return &fixture{
		db:         db,
		repos:      repos,
		cfg:        cfg,
		store:      store,
		notifier:   notifier,
		membership: membership,
		ordering:   ordering,
		boards:     NewBoardUsecase(repos, membership, ordering, store).(*boardUsecase),
		tasks:      NewTaskUsecase(repos, membership, ordering, users, notifier, store, cfg),
		members:    NewMemberUsecase(repos, membership, users, notifier, cfg),
		owner:      testutil.CreateUser(t, db, "Olivia Owner", "owner@example.com"),
		member:     testutil.CreateUser(t, db, "Max Member", "member@example.com"),
		other:      testutil.CreateUser(t, db, "Otto Outsider", "other@example.com"),
	}
}

// board creates a team board owned by f.owner with f.member joined as Member
func (f *fixture) board(t *testing.T) *domain.Board {
	t.Helper()
	ctx := context.Background()
	board, err := f.boards.CreateBoard(ctx, f.owner.ID, &dto.CreateBoardRequest{Name: "Launch"})
	require.NoError(t, err)
	_, err = f.membership.AddMember(ctx, board.ID, f.member.ID, "Member")
	require.NoError(t, err)
	return board
}

func (f *fixture) column(t *testing.T, boardID, name string) *domain.Column {
	t.Helper()
	column, err := f.boards.AddColumn(context.Background(), boardID, f.owner.ID, name)
	require.NoError(t, err)
	return column
}

func (f *fixture) task(t *testing.T, columnID, title string) *domain.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), columnID, f.member.ID, &dto.CreateTaskRequest{Title: title})
	require.NoError(t, err)
	return task
}

// readOrder returns task ids of a column in display order
func (f *fixture) readOrder(t *testing.T, columnID string) []string {
	t.Helper()
	tasks, err := f.repos.Tasks.ListByColumns(context.Background(), []string{columnID})
	require.NoError(t, err)
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}
