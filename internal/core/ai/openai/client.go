package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutrition-relay/internal/core/ai/provider"
	"nutrition-relay/internal/pkg/common"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client OpenAI Chat Completions 提供者
type Client struct {
	client  *goopenai.Client
	http    *http.Client
	model   string
	timeout time.Duration
}

// NewClient 創建新的 OpenAI 客戶端，BaseURL 為空時使用官方端點
func NewClient(cfg provider.Config) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient = httpClient
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		client:  goopenai.NewClientWithConfig(clientCfg),
		http:    httpClient,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	content := []goopenai.ChatMessagePart{
		{
			Type: goopenai.ChatMessagePartTypeText,
			Text: req.Prompt,
		},
	}
	if req.ImageURL != "" {
		content = append(content, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    req.ImageURL,
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:         goopenai.ChatMessageRoleUser,
				MultiContent: content,
			},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	common.LogDebug("Sending request to OpenAI",
		zap.String("model", c.model),
		zap.Bool("has_image", req.ImageURL != ""),
	)

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, provider.ErrEmptyResponse
	}

	return &provider.Response{
		Content: resp.Choices[0].Message.Content,
		Usage: provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Name 提供者名稱
func (c *Client) Name() string { return "openai" }

// GetModel 獲取模型名稱
func (c *Client) GetModel() string { return c.model }

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration { return c.timeout }

// Close 關閉客戶端
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
