package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nutrition-relay/internal/pkg/common"
)

const defaultDedupWindow = time.Second

// Deduplicator 記錄最近的 POST 請求指紋
type Deduplicator struct {
	mu        sync.Mutex
	requests  map[string]time.Time
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewDeduplicator 創建去重器，window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		requests:  make(map[string]time.Time),
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Seen 同一指紋在 window 內再次出現時回傳 true，否則記錄並回傳 false
func (d *Deduplicator) Seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.sweep(now)

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// sweep 清理過期指紋
func (d *Deduplicator) sweep(now time.Time) {
	if now.Sub(d.lastSweep) < 10*d.window {
		return
	}
	for k, t := range d.requests {
		if now.Sub(t) > d.window {
			delete(d.requests, k)
		}
	}
	d.lastSweep = now
}

// Deduplication 請求去重中間件：window 內相同路徑與內容的 POST 回傳 429
func Deduplication(window time.Duration) gin.HandlerFunc {
	d := NewDeduplicator(window)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
						Error: "Request body too large",
						Code:  common.ErrCodeInvalidRequest,
					})
					return
				}
				common.LogError("Failed to read request body", zap.Error(err))
				common.WriteError(c, common.ErrInvalidRequest)
				c.Abort()
				return
			}

			hash := sha256.Sum256(body)
			fingerprint += ":" + hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		if d.Seen(fingerprint) {
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", common.RequestID(c)),
			)
			common.WriteErrorMessage(c, common.ErrTooManyRequests, "Request too frequent")
			c.Abort()
			return
		}

		c.Next()
	}
}
