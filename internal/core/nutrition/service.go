// Package nutrition 食物營養分析流程：呼叫 AI、擷取 JSON、正規化，失敗時降級
package nutrition

import (
	"context"
	"fmt"
	"strings"

	aiservice "nutrition-relay/internal/core/ai/service"
	"nutrition-relay/internal/core/image"
	"nutrition-relay/internal/core/normalize"
	"nutrition-relay/internal/pkg/common"
)

// LLM 分析所需的 AI 呼叫
type LLM interface {
	ProcessRequest(ctx context.Context, prompt string, imageDataURL string) (*aiservice.Response, error)
}

// Service 營養分析服務
type Service struct {
	llm        LLM
	images     *image.Service
	normalizer *normalize.Normalizer
}

// NewService 創建營養分析服務
func NewService(llm LLM, images *image.Service, normalizer *normalize.Normalizer) *Service {
	if normalizer == nil {
		normalizer = normalize.NewNormalizer(normalize.DefaultAliases())
	}
	return &Service{
		llm:        llm,
		images:     images,
		normalizer: normalizer,
	}
}

// CacheableResponse 模型回應能擷取出 JSON 物件時回傳 nil，供 AI 服務決定是否快取
func CacheableResponse(content string) error {
	_, err := normalize.ExtractJSON(content)
	return err
}

// AnalyzeImage 分析食物照片
//
// 回傳的紀錄一定是完整結構；err 不為 nil 時紀錄為降級結果，僅供記錄日誌。
func (s *Service) AnalyzeImage(ctx context.Context, imageBase64, mimeType string) (common.NutritionRecord, error) {
	dataURL, err := s.images.ProcessImage(imageBase64, mimeType)
	if err != nil {
		return normalize.DegradedNutrition(normalize.ImageAnalysisFailed), err
	}
	return s.analyze(ctx, imagePrompt(), dataURL, "", normalize.ImageAnalysisFailed)
}

// AnalyzeText 依文字描述分析，AI 沒給名稱時以輸入文字為名
func (s *Service) AnalyzeText(ctx context.Context, text string) (common.NutritionRecord, error) {
	text = strings.TrimSpace(text)
	return s.analyze(ctx, textPrompt(text), "", text, normalize.TextAnalysisFailed)
}

func (s *Service) analyze(ctx context.Context, prompt, dataURL, fallbackName string, kind normalize.FailureKind) (common.NutritionRecord, error) {
	resp, err := s.llm.ProcessRequest(ctx, prompt, dataURL)
	if err != nil {
		return normalize.DegradedNutrition(kind), err
	}

	parsed, err := normalize.ExtractJSON(resp.Content)
	if err != nil {
		return normalize.DegradedNutrition(kind), fmt.Errorf("%s: %w", kind, err)
	}

	return s.normalizer.Nutrition(parsed, fallbackName), nil
}
