package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nutrition-relay/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestRateLimiterAllow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(2, time.Second)
	rl.now = clock.now

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request within window should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own bucket")
	}

	// 每 500ms 補充一個令牌
	clock.advance(500 * time.Millisecond)
	if !rl.Allow("a") {
		t.Error("request after refill should pass")
	}
	if rl.Allow("a") {
		t.Error("only one token refilled")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(1, time.Second)
	rl.now = clock.now
	rl.lastSweep = clock.t

	rl.Allow("a")
	clock.advance(2 * time.Second)
	rl.Allow("b")

	if _, ok := rl.buckets["a"]; ok {
		t.Error("idle bucket should be swept")
	}
	if len(rl.buckets) != 1 {
		t.Errorf("buckets = %d, want 1", len(rl.buckets))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
}

func TestDeduplicatorSeen(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	d := NewDeduplicator(time.Second)
	d.now = clock.now

	if d.Seen("x") {
		t.Fatal("first fingerprint reported as duplicate")
	}
	if !d.Seen("x") {
		t.Error("repeat within window not detected")
	}
	clock.advance(1500 * time.Millisecond)
	if d.Seen("x") {
		t.Error("repeat after window reported as duplicate")
	}
}

func TestDeduplicationPreservesBody(t *testing.T) {
	r := gin.New()
	r.Use(Deduplication(time.Second))
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(b))
	})
	r.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"text":"김밥"}`)))
	if w.Code != http.StatusOK || w.Body.String() != `{"text":"김밥"}` {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"text":"김밥"}`)))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("duplicate status = %d, want 429", w.Code)
	}

	// GET 不做去重
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET status = %d", w.Code)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.Use(Deduplication(time.Second))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name          string
		body          string
		unknownLength bool
		want          int
	}{
		{"within limit", "1234", false, http.StatusOK},
		{"content-length too large", "0123456789", false, http.StatusRequestEntityTooLarge},
		{"streamed body too large", "abcdefghijk", true, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.unknownLength {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var got common.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Code != common.ErrCodeInternalError || got.Error != "Internal server error" {
		t.Errorf("response = %+v", got)
	}
}

func TestLoggerKeepsStatus(t *testing.T) {
	r := gin.New()
	r.Use(Logger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("request id not assigned")
	}
}
