package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"nutrition-relay/internal/core/ai/provider"
	"nutrition-relay/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenRouter API 客戶端
type Client struct {
	client  *resty.Client
	model   string
	timeout time.Duration
}

// Options OpenRouter 額外的識別標頭
type Options struct {
	Referer string
	Title   string
}

// contentPart 文字或圖片內容
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest 表示 API 請求
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatResponse OpenRouter 響應結構
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config, opts Options) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey)
	if opts.Referer != "" {
		client.SetHeader("HTTP-Referer", opts.Referer)
	}
	if opts.Title != "" {
		client.SetHeader("X-Title", opts.Title)
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	parts := []contentPart{{Type: "text", Text: req.Prompt}}
	if req.ImageURL != "" {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: req.ImageURL}})
	}

	body := chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: parts}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", c.model),
		zap.Bool("has_image", req.ImageURL != ""),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		sanitized := sanitizeBody(resp.String())
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.model),
			zap.String("response", sanitized),
		)
		return nil, fmt.Errorf("OpenRouter API returned error (status %d): %s", resp.StatusCode(), sanitized)
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, provider.ErrEmptyResponse
	}

	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Usage:   result.Usage,
	}, nil
}

var dataURLPattern = regexp.MustCompile(`data:image/[A-Za-z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)

// sanitizeBody 移除回應中的圖片資料並限制長度，避免寫入日誌
func sanitizeBody(body string) string {
	body = dataURLPattern.ReplaceAllString(body, "[IMAGE_DATA_REMOVED]")
	if len(body) > 512 {
		return body[:512] + "..."
	}
	return body
}

// Name 提供者名稱
func (c *Client) Name() string { return "openrouter" }

// GetModel 獲取模型名稱
func (c *Client) GetModel() string { return c.model }

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration { return c.timeout }

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
