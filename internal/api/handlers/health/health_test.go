package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutrition-relay/internal/core/ai/cache"
	"nutrition-relay/internal/core/ai/queue"
	"nutrition-relay/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

type fakeAI struct {
	status queue.Status
}

func (f *fakeAI) ProviderName() string       { return "openai" }
func (f *fakeAI) Model() string              { return "gpt-4o" }
func (f *fakeAI) QueueStatus() *queue.Status { s := f.status; return &s }

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestHealthCheckWithMemoryCache(t *testing.T) {
	cfg := &config.Config{
		App:   config.AppConfig{Version: "1.2.3"},
		Cache: config.CacheConfig{Enabled: true, Driver: config.CacheDriverMemory, MaxSize: 10, TTL: time.Hour},
	}
	store := cache.NewManager(cfg.Cache)
	defer store.Close()

	h := NewHandler(cfg, &fakeAI{status: queue.Status{Workers: 5, MaxQueueSize: 100}}, store)
	w := serve(h.HealthCheck)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got struct {
		Status   string         `json:"status"`
		Version  string         `json:"version"`
		Provider string         `json:"provider"`
		Queue    queue.Status   `json:"queue"`
		Cache    map[string]any `json:"cache"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Version != "1.2.3" || got.Provider != "openai" {
		t.Errorf("health = %+v", got)
	}
	if got.Queue.Workers != 5 {
		t.Errorf("queue = %+v", got.Queue)
	}
	if got.Cache["max_size"] != float64(10) {
		t.Errorf("cache = %v", got.Cache)
	}
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name   string
		status queue.Status
		want   int
	}{
		{"idle", queue.Status{MaxQueueSize: 10}, http.StatusOK},
		{"queue full", queue.Status{QueueLength: 10, MaxQueueSize: 10}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&config.Config{}, &fakeAI{status: tt.status}, nil)
			if w := serve(h.ReadinessCheck); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	h := NewHandler(&config.Config{}, &fakeAI{}, nil)
	if w := serve(h.LivenessCheck); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
