package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authrepo "taskup-backend/internal/auth/repository"
	authUsecase "taskup-backend/internal/auth/usecase"
	"taskup-backend/internal/board/repository"
	boardUsecase "taskup-backend/internal/board/usecase"
	"taskup-backend/internal/testutil"
	"taskup-backend/pkg/config"
	"taskup-backend/pkg/ratelimit"
	"taskup-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppURL:               "http://app.test",
		AllowedOrigins:       []string{"http://localhost:3000"},
		JWTSecret:            "test-secret",
		JWTAccessExpiry:      time.Hour,
		JWTRefreshExpiry:     time.Hour,
		ColumnInsertPosition: config.ColumnInsertEnd,
		MaxUploadBytes:       1024,
	}
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	authUc := authUsecase.NewAuthUsecase(authrepo.NewUserRepository(db), authrepo.NewFCMTokenRepository(db), cfg)
	repos := repository.NewRepositories(db)
	membership := boardUsecase.NewMembershipUsecase(repos, authUc)
	ordering := boardUsecase.NewOrderingUsecase(repos, cfg)

	h := NewHandler(
		authUc,
		boardUsecase.NewBoardUsecase(repos, membership, ordering, store),
		boardUsecase.NewTaskUsecase(repos, membership, ordering, authUc, boardUsecase.NopNotifier{}, store, cfg),
		boardUsecase.NewMemberUsecase(repos, membership, authUc, boardUsecase.NopNotifier{}, cfg),
		ratelimit.NewLocalLimiter(3, time.Hour),
		cfg,
	)
	return h.Router()
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *gin.Engine, name, email string) string {
	t.Helper()
	w := call(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "email": email, "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := call(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = call(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "taskup_http_requests_total")
}

func TestBoardRoutesNeedAuth(t *testing.T) {
	r := newTestRouter(t)

	w := call(t, r, http.MethodGet, "/api/boards", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, r, http.MethodGet, "/api/boards", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/boards", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestJoinFlowWithRateLimit(t *testing.T) {
	r := newTestRouter(t)
	ownerToken := register(t, r, "Olivia Owner", "owner@example.com")
	guestToken := register(t, r, "Gus Guest", "guest@example.com")

	w := call(t, r, http.MethodPost, "/api/boards", ownerToken, gin.H{"name": "Launch", "is_private": true, "password": "hunter22"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var board struct {
		ID       string `json:"id"`
		JoinCode string `json:"join_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))

	w = call(t, r, http.MethodPost, "/api/boards/join", guestToken, gin.H{"code": board.JoinCode, "password": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, http.MethodPost, "/api/boards/join", guestToken, gin.H{"code": board.JoinCode, "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/boards", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Boards []struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"boards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Boards, 1)
	assert.Equal(t, board.ID, list.Boards[0].ID)
	assert.Equal(t, "Member", list.Boards[0].Role)

	// the third attempt spends the budget
	w = call(t, r, http.MethodPost, "/api/boards/join", guestToken, gin.H{"code": board.JoinCode, "password": "hunter22"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = call(t, r, http.MethodPost, "/api/boards/join", guestToken, gin.H{"code": board.JoinCode, "password": "hunter22"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// other users keep their own budget
	w = call(t, r, http.MethodPost, "/api/boards/join", ownerToken, gin.H{"code": board.JoinCode})
	assert.Equal(t, http.StatusOK, w.Code)
}
