package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutrition-relay/internal/core/ai/cache"
	"nutrition-relay/internal/core/ai/gemini"
	"nutrition-relay/internal/core/ai/openai"
	"nutrition-relay/internal/core/ai/openrouter"
	"nutrition-relay/internal/core/ai/provider"
	"nutrition-relay/internal/core/ai/queue"
	"nutrition-relay/internal/infrastructure/config"
	"nutrition-relay/internal/pkg/common"

	"go.uber.org/zap"
)

// Response AI 回應
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務：佇列控制、快取與提供者呼叫
type Service struct {
	provider    provider.Provider
	cache       cache.Store
	queue       *queue.Manager
	maxTokens   int
	temperature float64
	validate    func(content string) error
}

// Option 調整 AI 服務行為
type Option func(*Service)

// WithCacheValidator 只有通過 validate 的回應才寫入快取
func WithCacheValidator(validate func(content string) error) Option {
	return func(s *Service) { s.validate = validate }
}

// NewProvider 依設定建立目前使用的 AI 提供者
func NewProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(provider.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.OpenAI.Timeout,
		}), nil
	case config.ProviderGemini:
		return gemini.NewClient(provider.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: cfg.Gemini.Timeout,
		}), nil
	case config.ProviderOpenRouter:
		return openrouter.NewClient(provider.Config{
			APIKey:  cfg.OpenRouter.APIKey,
			Model:   cfg.OpenRouter.Model,
			BaseURL: cfg.OpenRouter.BaseURL,
			Timeout: cfg.OpenRouter.Timeout,
		}, openrouter.Options{
			Referer: cfg.OpenRouter.Referer,
			Title:   cfg.OpenRouter.Title,
		}), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
}

// NewService 創建 AI 服務，store 可為 nil（不使用快取）
func NewService(cfg *config.Config, store cache.Store, opts ...Option) (*Service, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return New(p, store, queue.NewManager(cfg.Queue), cfg.AI, opts...), nil
}

// New 以既有元件組裝 AI 服務
func New(p provider.Provider, store cache.Store, q *queue.Manager, aiCfg config.AIConfig, opts ...Option) *Service {
	s := &Service{
		provider:    p,
		cache:       store,
		queue:       q,
		maxTokens:   aiCfg.MaxTokens,
		temperature: aiCfg.Temperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessRequest 送出 prompt（與選用的圖片 data URL），回傳模型原始文字
func (s *Service) ProcessRequest(ctx context.Context, prompt string, imageDataURL string) (*Response, error) {
	prompt = strings.TrimSpace(prompt)
	cacheKey := s.provider.Name() + ":" + s.provider.GetModel() + ":" + prompt

	if s.cache != nil {
		val, err := s.cache.Get(ctx, cacheKey, imageDataURL)
		switch {
		case err == nil && val != "":
			common.LogAICall(s.provider.Name(), s.provider.GetModel(), 0, true, nil)
			return &Response{Content: val, CacheHit: true}, nil
		case err != nil && !errors.Is(err, common.ErrCacheMiss):
			common.LogWarn("Cache lookup failed", zap.Error(err))
		}
	}

	var content string
	start := time.Now()
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		resp, err := s.provider.Generate(ctx, &provider.Request{
			Prompt:      prompt,
			ImageURL:    imageDataURL,
			JSONMode:    true,
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
		})
		if err != nil {
			return err
		}
		content = resp.Content
		return nil
	})
	common.LogAICall(s.provider.Name(), s.provider.GetModel(), time.Since(start), false, err)
	if err != nil {
		if errors.Is(err, common.ErrQueueFull) {
			return nil, err
		}
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	if s.cache != nil {
		s.store(ctx, cacheKey, imageDataURL, content)
	}

	return &Response{Content: content}, nil
}

// store 寫入快取；無法解析的回應不快取，下次同樣的請求會重新呼叫模型
func (s *Service) store(ctx context.Context, key, imageDataURL, content string) {
	if s.validate != nil {
		if err := s.validate(content); err != nil {
			common.LogWarn("Skip caching unusable AI response",
				zap.String("provider", s.provider.Name()),
				zap.Error(err),
			)
			return
		}
	}
	if err := s.cache.Set(ctx, key, imageDataURL, content); err != nil {
		common.LogWarn("Cache store failed", zap.Error(err))
	}
}

// ProviderName 目前提供者名稱
func (s *Service) ProviderName() string { return s.provider.Name() }

// Model 目前使用的模型
func (s *Service) Model() string { return s.provider.GetModel() }

// QueueStatus 佇列狀態
func (s *Service) QueueStatus() *queue.Status { return s.queue.GetQueueStatus() }

// Close 關閉提供者與佇列
func (s *Service) Close() error {
	s.queue.Close()
	return s.provider.Close()
}
