package middleware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"nutrition-relay/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bucket 單一用戶端的令牌桶
type bucket struct {
	tokens   float64
	lastTime time.Time
}

// RateLimiter 依用戶端 IP 分別計算的令牌桶限流器
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	capacity  float64
	rate      float64 // 每秒補充的令牌數
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter 創建新的限流器：每個 window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:   make(map[string]*bucket),
		capacity:  float64(requests),
		rate:      float64(requests) / window.Seconds(),
		idleAfter: window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow 檢查該用戶端是否允許請求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity, lastTime: now}
		rl.buckets[key] = b
	}

	// 添加新令牌
	elapsed := now.Sub(b.lastTime).Seconds()
	b.tokens = math.Min(rl.capacity, b.tokens+elapsed*rl.rate)
	b.lastTime = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// sweep 移除閒置超過一個 window 的桶（此時已補滿，與新建無異）
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleAfter {
		return
	}
	for key, b := range rl.buckets {
		if now.Sub(b.lastTime) >= rl.idleAfter {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

// RateLimit 限流中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(requests, window)
	retryAfter := fmt.Sprintf("%d", int(math.Ceil(window.Seconds()/float64(requests))))

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogWarn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", common.RequestID(c)),
			)

			c.Header("Retry-After", retryAfter)
			common.WriteErrorMessage(c, common.ErrTooManyRequests, "Too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
