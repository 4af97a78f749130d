package nutrition

import (
	"context"
	"net/http"
	"strings"

	nutritionService "nutrition-relay/internal/core/nutrition"
	"nutrition-relay/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食物分析處理器
type Handler struct {
	service *nutritionService.Service
}

// NewHandler 創建食物分析處理器
func NewHandler(service *nutritionService.Service) *Handler {
	return &Handler{service: service}
}

// AnalyzeImage 處理照片分析，AI 失敗時仍回傳 200 與降級紀錄
func (h *Handler) AnalyzeImage(c *gin.Context) {
	requestID := common.RequestID(c)

	var req common.AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestID))
		common.WriteErrorMessage(c, common.ErrInvalidRequest, "Invalid request format")
		return
	}
	if strings.TrimSpace(req.ImageBase64) == "" || strings.TrimSpace(req.MimeType) == "" {
		common.WriteErrorMessage(c, common.ErrMissingInput, "Missing image")
		return
	}

	common.LogInfo("開始處理照片分析",
		zap.String("request_id", requestID),
		zap.String("mime_type", req.MimeType),
		zap.Int("payload_length", len(req.ImageBase64)),
	)

	// 用戶端斷線時不取消上游呼叫
	ctx := context.WithoutCancel(c.Request.Context())
	record, err := h.service.AnalyzeImage(ctx, req.ImageBase64, req.MimeType)
	if err != nil {
		common.LogError("照片分析失敗，回傳降級結果",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	} else {
		common.LogInfo("照片分析成功",
			zap.String("request_id", requestID),
			zap.String("food_name", record.FoodName),
		)
	}

	c.JSON(http.StatusOK, record)
}

// AnalyzeText 處理文字分析，AI 失敗時仍回傳 200 與降級紀錄
func (h *Handler) AnalyzeText(c *gin.Context) {
	requestID := common.RequestID(c)

	var req common.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestID))
		common.WriteErrorMessage(c, common.ErrInvalidRequest, "Invalid request format")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		common.WriteErrorMessage(c, common.ErrMissingInput, "Text required")
		return
	}

	common.LogInfo("開始處理文字分析",
		zap.String("request_id", requestID),
		zap.String("text", req.Text),
	)

	ctx := context.WithoutCancel(c.Request.Context())
	record, err := h.service.AnalyzeText(ctx, req.Text)
	if err != nil {
		common.LogError("文字分析失敗，回傳降級結果",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}

	c.JSON(http.StatusOK, record)
}
