package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"nutrition-relay/internal/infrastructure/config"
	"nutrition-relay/internal/pkg/common"

	"go.uber.org/zap"
)

// Store AI 原始回應的快取
type Store interface {
	// Get 找不到時回傳 common.ErrCacheMiss
	Get(ctx context.Context, prompt, imageData string) (string, error)
	Set(ctx context.Context, prompt, imageData, value string) error
	Close() error
}

// NewStore 依設定建立快取，關閉時回傳 nil
func NewStore(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		s, err := NewRedisStore(cfg.Cache, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.CacheDriverMemory:
		return NewManager(cfg.Cache), nil
	}

	common.LogWarn("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
}

// generateKey 生成緩存鍵
func generateKey(prompt, imageData string) string {
	if imageData == "" {
		return fmt.Sprintf("text:%s", hashString(prompt))
	}
	return fmt.Sprintf("multimodal:%s:%s", hashString(prompt), hashString(imageData))
}

// hashString 計算字符串的 SHA-256 哈希值
func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
