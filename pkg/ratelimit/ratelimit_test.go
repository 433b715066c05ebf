package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := NewRedisLimiter(client, 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "join:user:1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i)
	}

	ok, err := l.Allow(ctx, "join:user:2")
	require.NoError(t, err)
	assert.True(t, ok, "keys have separate budgets")

	now = now.Add(2 * time.Minute)
	ok, err = l.Allow(ctx, "join:user:1")
	require.NoError(t, err)
	assert.True(t, ok, "old entries fall out of the window")
}

func TestRedisLimiterErrorFailsOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	r := setupTestGin()
	r.POST("/join", Middleware(NewRedisLimiter(client, 1, time.Minute), "join", IPKeyFunc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/join", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-RateLimit-Error"))
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(2, time.Hour)
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i)
	}
	ok, _ := l.Allow(ctx, "b")
	assert.True(t, ok)
}

func TestMiddlewareReturns429PerUser(t *testing.T) {
	r := setupTestGin()
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-User"); u != "" {
			c.Set("userID", u)
		}
		c.Next()
	})
	r.POST("/join", Middleware(New(nil, 1, time.Hour), "join", UserKeyFunc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/join", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("u1").Code)
	w := send("u1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
	assert.Equal(t, http.StatusOK, send("u2").Code)
}

func TestNewPicksBackend(t *testing.T) {
	client, _ := setupTestRedis(t)
	assert.IsType(t, &RedisLimiter{}, New(client, 1, time.Second))
	assert.IsType(t, &LocalLimiter{}, New(nil, 1, time.Second))
}
