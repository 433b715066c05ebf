// Package ratelimit throttles guessable endpoints such as join-by-code.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in the budget
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Limit() int
	Window() time.Duration
}

// RedisLimiter is a sliding window log kept in a sorted set per key, shared
// by every instance pointing at the same redis.
type RedisLimiter struct {
	redis  *redis.Client
	rate   int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, rate: rate, window: window, now: time.Now}
}

func (l *RedisLimiter) Limit() int            { return l.rate }
func (l *RedisLimiter) Window() time.Duration { return l.window }

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = "rate_limit:" + key
	now := l.now().UnixNano()
	windowStart := now - l.window.Nanoseconds()

	pipe := l.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: uuid.NewString()})
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}
	return countCmd.Val() < int64(l.rate), nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is a token bucket per key held in process memory
type LocalLimiter struct {
	rate   int
	window time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

func NewLocalLimiter(n int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		rate:     n,
		window:   window,
		visitors: make(map[string]*visitor),
		lastGC:   time.Now(),
	}
}

func (l *LocalLimiter) Limit() int            { return l.rate }
func (l *LocalLimiter) Window() time.Duration { return l.window }

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastGC) > l.window {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.window {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(max(l.rate, 1))), max(l.rate, 1))}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// New picks the redis limiter when a client is given and the local one otherwise
func New(client *redis.Client, n int, window time.Duration) Limiter {
	if client != nil {
		return NewRedisLimiter(client, n, window)
	}
	return NewLocalLimiter(n, window)
}

// KeyFunc extracts the identity a budget is kept for
type KeyFunc func(*gin.Context) string

func IPKeyFunc(c *gin.Context) string {
	return c.ClientIP()
}

// UserKeyFunc keys by the authenticated user, falling back to the client IP
func UserKeyFunc(c *gin.Context) string {
	if userID := c.GetString("userID"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// Middleware answers 429 once the key's budget is spent. Limiter errors let
// the request through.
func Middleware(l Limiter, name string, keyFunc KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), name+":"+keyFunc(c))
		if err != nil {
			log.Printf("[RateLimit] %s: %v", name, err)
			c.Header("X-RateLimit-Error", "true")
			c.Next()
			return
		}
		if !allowed {
			c.Header("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
			c.Header("X-RateLimit-Window", l.Window().String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": l.Window().Seconds(),
			})
			return
		}
		c.Next()
	}
}
