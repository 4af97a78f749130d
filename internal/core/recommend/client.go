package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nutrition-relay/internal/core/normalize"
	"nutrition-relay/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Client 下游推薦服務客戶端
type Client struct {
	client *resty.Client
	path   string
}

// NewClient 創建推薦服務客戶端，timeout 為 0 時不設限
func NewClient(baseURL, path string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if path == "" {
		path = "/recommend"
	}
	return &Client{client: client, path: path}
}

// Recommend 取得依排名排序的原始候選
//
// 連線失敗或非 2xx 回傳 common.ErrUpstreamUnavailable；
// 2xx 但內容不是陣列時視為沒有候選。
func (c *Client) Recommend(ctx context.Context, req common.RecommendationRequest) ([]map[string]any, error) {
	if req.RecentFoodNames == nil {
		req.RecentFoodNames = []string{}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.path)
	if err != nil {
		return nil, common.ErrUpstreamUnavailable.Wrap(err)
	}
	if !resp.IsSuccess() {
		return nil, common.ErrUpstreamUnavailable.Wrap(fmt.Errorf("recommender returned status %d", resp.StatusCode()))
	}

	var body any
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		return nil, nil
	}
	return normalize.CandidateList(body), nil
}

// Close 關閉閒置連線
func (c *Client) Close() {
	c.client.GetClient().CloseIdleConnections()
}
