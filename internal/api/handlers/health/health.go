package health

import (
	"net/http"
	"runtime"
	"time"

	"nutrition-relay/internal/core/ai/cache"
	"nutrition-relay/internal/core/ai/queue"
	"nutrition-relay/internal/infrastructure/config"
	"nutrition-relay/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIStatus 健康檢查所需的 AI 服務資訊
type AIStatus interface {
	ProviderName() string
	Model() string
	QueueStatus() *queue.Status
}

// CacheStats 提供統計資訊的快取（記憶體快取）
type CacheStats interface {
	GetStats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Provider  string                 `json:"provider"`
	Model     string                 `json:"model"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	config *config.Config
	ai     AIStatus
	cache  cache.Store
}

// NewHandler 創建健康檢查處理器，cache 可為 nil
func NewHandler(cfg *config.Config, ai AIStatus, store cache.Store) *Handler {
	return &Handler{config: cfg, ai: ai, cache: store}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Provider:  h.ai.ProviderName(),
		Model:     h.ai.Model(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Queue: h.ai.QueueStatus(),
	}

	if stats, ok := h.cache.(CacheStats); ok {
		response.Cache = stats.GetStats()
	} else if h.cache != nil {
		response.Cache = map[string]interface{}{"driver": h.config.Cache.Driver}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：佇列未滿時可接受請求
func (h *Handler) ReadinessCheck(c *gin.Context) {
	q := h.ai.QueueStatus()
	if q.MaxQueueSize > 0 && q.QueueLength >= q.MaxQueueSize {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "busy",
			"queue":  q,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
