package delivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	authdelivery "taskup-backend/internal/auth/delivery"
	authdomain "taskup-backend/internal/auth/domain"
	authrepo "taskup-backend/internal/auth/repository"
	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/repository"
	"taskup-backend/internal/board/usecase"
	"taskup-backend/internal/testutil"
	"taskup-backend/pkg/config"
	"taskup-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-Test-User"

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type userFinder struct {
	repo authrepo.UserRepository
}

func (f userFinder) FindUserByEmail(email string) (*authdomain.User, error) {
	return f.repo.FindByEmail(email)
}

func (f userFinder) FindUserByID(id string) (*authdomain.User, error) {
	return f.repo.FindByID(id)
}

type testServer struct {
	router *gin.Engine
	owner  *authdomain.User
	member *authdomain.User
	other  *authdomain.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	users := userFinder{repo: authrepo.NewUserRepository(db)}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	cfg := &config.Config{AppURL: "http://app.test", ColumnInsertPosition: config.ColumnInsertEnd, MaxUploadBytes: 1024}

	membership := usecase.NewMembershipUsecase(repos, users)
	ordering := usecase.NewOrderingUsecase(repos, cfg)
	boardHandler := NewBoardHandler(usecase.NewBoardUsecase(repos, membership, ordering, store))
	taskHandler := NewTaskHandler(usecase.NewTaskUsecase(repos, membership, ordering, users, usecase.NopNotifier{}, store, cfg))
	memberHandler := NewMemberHandler(usecase.NewMemberUsecase(repos, membership, users, usecase.NopNotifier{}, cfg))

	r := setupTestGin()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(authdelivery.ContextUserIDKey, c.GetHeader(testUserHeader))
		c.Next()
	})
	api.POST("/boards", boardHandler.CreateBoard)
	api.POST("/boards/join", boardHandler.JoinBoard)
	api.GET("/boards/:id", boardHandler.GetBoard)
	api.DELETE("/boards/:id", boardHandler.DeleteBoard)
	api.POST("/boards/:id/columns", boardHandler.AddColumn)
	api.POST("/columns/:id/tasks", taskHandler.CreateTask)
	api.PUT("/columns/:id/tasks/orders", taskHandler.ReorderTasks)
	api.POST("/tasks/:id/move", taskHandler.MoveTask)
	api.POST("/tasks/:id/attachments", taskHandler.UploadAttachment)
	api.GET("/attachments/:id", taskHandler.DownloadAttachment)
	api.POST("/boards/:id/members/:userId/ban", memberHandler.BanMember)
	api.DELETE("/boards/:id/bans/:userId", memberHandler.UnbanMember)
	api.GET("/boards/:id/members", memberHandler.ListMembers)

	return &testServer{
		router: r,
		owner:  testutil.CreateUser(t, db, "Olivia Owner", "owner@example.com"),
		member: testutil.CreateUser(t, db, "Max Member", "member@example.com"),
		other:  testutil.CreateUser(t, db, "Otto Outsider", "other@example.com"),
	}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(testUserHeader, userID)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// createBoard creates a board as the owner with the member joined through its code
func (s *testServer) createBoard(t *testing.T) domain.Board {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/boards", s.owner.ID, gin.H{"name": "Launch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	board := decode[domain.Board](t, w)

	w = s.do(t, http.MethodPost, "/api/boards/join", s.member.ID, gin.H{"code": board.JoinCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return board
}

func TestRespondErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, `{"error":"not found"}`},
		{domain.ErrPermissionDenied, http.StatusForbidden, `{"error":"access denied"}`},
		{fmt.Errorf("%w: join code taken", domain.ErrConflict), http.StatusConflict, `{"error":"conflict: join code taken"}`},
		{domain.ErrInvalidInput, http.StatusBadRequest, `{"error":"invalid input"}`},
		{domain.ErrInvalidTarget, http.StatusBadRequest, `{"error":"invalid target"}`},
		{errors.New("connection refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			r := setupTestGin()
			r.GET("/", func(c *gin.Context) { respondError(c, tc.err, "test") })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestBoardLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	board := s.createBoard(t)

	w := s.do(t, http.MethodGet, "/api/boards/"+board.ID, s.member.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Member"`, string(decode[map[string]json.RawMessage](t, w)["role"]))

	w = s.do(t, http.MethodGet, "/api/boards/"+board.ID, s.other.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"access denied"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/boards/missing", s.owner.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/boards", s.owner.ID, gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/boards/"+board.ID, s.member.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, "/api/boards/"+board.ID, s.owner.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskOrderingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	board := s.createBoard(t)

	w := s.do(t, http.MethodPost, "/api/boards/"+board.ID+"/columns", s.member.ID, gin.H{"name": "Todo"})
	assert.Equal(t, http.StatusForbidden, w.Code, "columns need Admin")

	w = s.do(t, http.MethodPost, "/api/boards/"+board.ID+"/columns", s.owner.ID, gin.H{"name": "Todo"})
	require.Equal(t, http.StatusCreated, w.Code)
	todo := decode[domain.Column](t, w)
	w = s.do(t, http.MethodPost, "/api/boards/"+board.ID+"/columns", s.owner.ID, gin.H{"name": "Done"})
	require.Equal(t, http.StatusCreated, w.Code)
	done := decode[domain.Column](t, w)

	var tasks []domain.Task
	for _, title := range []string{"a", "b"} {
		w = s.do(t, http.MethodPost, "/api/columns/"+todo.ID+"/tasks", s.member.ID, gin.H{"title": title, "priority": "high"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		tasks = append(tasks, decode[domain.Task](t, w))
	}
	assert.Equal(t, 1, tasks[0].Order)
	assert.Equal(t, 2, tasks[1].Order)
	assert.Equal(t, domain.PriorityHigh, tasks[0].Priority)

	w = s.do(t, http.MethodPut, "/api/columns/"+todo.ID+"/tasks/orders", s.member.ID, gin.H{
		"orders": []gin.H{{"id": tasks[0].ID, "order": 2}, {"id": tasks[1].ID, "order": 1}, {"id": "stranger", "order": 0}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":2}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/tasks/"+tasks[0].ID+"/move", s.member.ID, gin.H{"column_id": done.ID})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decode[domain.Task](t, w)
	assert.Equal(t, done.ID, moved.ColumnID)
	assert.Equal(t, 1, moved.Order)

	w = s.do(t, http.MethodPost, "/api/tasks/"+tasks[0].ID+"/move", s.member.ID, gin.H{"column_id": "nowhere"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid target")

	w = s.do(t, http.MethodPost, "/api/columns/"+todo.ID+"/tasks", s.other.ID, gin.H{"title": "intruder"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBanOverHTTP(t *testing.T) {
	s := newTestServer(t)
	board := s.createBoard(t)

	w := s.do(t, http.MethodPost, "/api/boards/"+board.ID+"/members/"+s.member.ID+"/ban", s.member.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/boards/"+board.ID+"/members/"+s.member.ID+"/ban", s.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/boards/join", s.member.ID, gin.H{"code": board.JoinCode})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"access denied"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/boards/"+board.ID+"/members", s.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]json.RawMessage](t, w)["members"], 1)

	for i := 0; i < 2; i++ {
		w = s.do(t, http.MethodDelete, "/api/boards/"+board.ID+"/bans/"+s.member.ID, s.owner.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code, "unban is idempotent")
	}
	w = s.do(t, http.MethodPost, "/api/boards/join", s.member.ID, gin.H{"code": board.JoinCode})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	s := newTestServer(t)
	board := s.createBoard(t)
	w := s.do(t, http.MethodPost, "/api/boards/"+board.ID+"/columns", s.owner.ID, gin.H{"name": "Todo"})
	require.Equal(t, http.StatusCreated, w.Code)
	column := decode[domain.Column](t, w)
	w = s.do(t, http.MethodPost, "/api/columns/"+column.ID+"/tasks", s.member.ID, gin.H{"title": "with file"})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decode[domain.Task](t, w)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello board"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+task.ID+"/attachments", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(testUserHeader, s.member.ID)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	attachment := decode[domain.TaskAttachment](t, w)
	assert.Equal(t, "notes.txt", attachment.FileName)
	assert.Equal(t, int64(11), attachment.Size)

	w = s.do(t, http.MethodGet, "/api/attachments/"+attachment.ID, s.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello board", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename=notes.txt`)

	w = s.do(t, http.MethodGet, "/api/attachments/"+attachment.ID, s.other.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/attachments", s.member.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
