package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"nutrition-relay/internal/infrastructure/config"
	"nutrition-relay/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrClosed 隊列已關閉
var ErrClosed = errors.New("queue manager is closed")

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	InFlight       int `json:"in_flight"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 限制同時進行的 AI 請求數量，超出 Workers 的請求排隊等待，
// 排隊數量達到 MaxSize 時直接拒絕
type Manager struct {
	slots     chan struct{}
	maxSize   int
	waiting   int64
	processed int64
	done      chan struct{}
	once      sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		slots:   make(chan struct{}, workers),
		maxSize: cfg.MaxSize,
		done:    make(chan struct{}),
	}
}

// Do 取得執行名額後執行 fn
func (m *Manager) Do(ctx context.Context, fn func(context.Context) error) error {
	if n := atomic.AddInt64(&m.waiting, 1); m.maxSize > 0 && n > int64(m.maxSize) {
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("AI request rejected, queue is full",
			zap.Int("max_queue_size", m.maxSize),
		)
		return common.ErrQueueFull
	}

	select {
	case m.slots <- struct{}{}:
		atomic.AddInt64(&m.waiting, -1)
	case <-ctx.Done():
		atomic.AddInt64(&m.waiting, -1)
		return ctx.Err()
	case <-m.done:
		atomic.AddInt64(&m.waiting, -1)
		return ErrClosed
	}
	defer func() {
		<-m.slots
		atomic.AddInt64(&m.processed, 1)
	}()

	return fn(ctx)
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    int(atomic.LoadInt64(&m.waiting)),
		InFlight:       len(m.slots),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        cap(m.slots),
	}
}

// Close 關閉隊列管理器，等待中的請求會收到 ErrClosed
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}
