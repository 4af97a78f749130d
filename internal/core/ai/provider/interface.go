package provider

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyResponse 上游回應沒有任何可用內容
var ErrEmptyResponse = errors.New("empty response from AI provider")

// Request 表示發送到 AI 提供者的請求
type Request struct {
	Prompt      string  `json:"prompt"`
	ImageURL    string  `json:"image_url,omitempty"` // data URL，例如 data:image/jpeg;base64,...
	JSONMode    bool    `json:"json_mode,omitempty"` // 要求模型只回傳 JSON 物件
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name 提供者名稱，用於日誌
	Name() string

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}

// Config 定義 AI 提供者配置
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	BaseURL string
}
