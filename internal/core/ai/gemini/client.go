package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutrition-relay/internal/core/ai/provider"
	"nutrition-relay/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client Gemini generateContent 提供者
type Client struct {
	client  *resty.Client
	apiKey  string
	model   string
	timeout time.Duration
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// NewClient 創建新的 Gemini 客戶端
func NewClient(cfg provider.Config) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:  client,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	parts := []part{{Text: req.Prompt}}
	if req.ImageURL != "" {
		mimeType, data, err := splitDataURL(req.ImageURL)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part{InlineData: &inlineData{MimeType: mimeType, Data: data}})
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.JSONMode {
		body.GenerationConfig.ResponseMimeType = "application/json"
	}

	common.LogDebug("Sending request to Gemini",
		zap.String("model", c.model),
		zap.Bool("has_image", req.ImageURL != ""),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetPathParam("model", c.model).
		SetBody(body).
		Post("/models/{model}:generateContent")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode(), truncate(resp.String(), 512))
	}

	var result generateResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, provider.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return nil, provider.ErrEmptyResponse
	}

	return &provider.Response{
		Content: sb.String(),
		Usage: provider.Usage{
			PromptTokens:     result.UsageMetadata.PromptTokenCount,
			CompletionTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      result.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// splitDataURL 拆出 data:<mime>;base64,<data> 的 MIME 與資料
func splitDataURL(url string) (string, string, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", "", fmt.Errorf("gemini requires an inline data url")
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", "", fmt.Errorf("malformed data url")
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Name 提供者名稱
func (c *Client) Name() string { return "gemini" }

// GetModel 獲取模型名稱
func (c *Client) GetModel() string { return c.model }

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration { return c.timeout }

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
