package recommend

import (
	"context"
	"errors"
	"net/http"

	recommendService "nutrition-relay/internal/core/recommend"
	"nutrition-relay/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 推薦代理處理器
type Handler struct {
	service *recommendService.Service
}

// NewHandler 創建推薦代理處理器
func NewHandler(service *recommendService.Service) *Handler {
	return &Handler{service: service}
}

// GetRecommendation 轉送推薦請求並回傳合併結果；下游無法連線時回傳 502
func (h *Handler) GetRecommendation(c *gin.Context) {
	requestID := common.RequestID(c)

	var input common.RecommendationInput
	if err := common.DecodeJSON(c.Request.Body, &input); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestID))
		common.WriteErrorMessage(c, common.ErrInvalidRequest, "Invalid request format")
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.service.Recommend(ctx, input)
	if err != nil {
		ce := common.AsCustomError(err)
		switch {
		case errors.Is(err, common.ErrMissingInput):
			common.WriteErrorMessage(c, ce, "Missing data")
		case errors.Is(err, common.ErrUpstreamUnavailable):
			common.LogError("推薦服務連線失敗",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			common.WriteError(c, ce)
		default:
			common.LogWarn("推薦請求失敗",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			common.WriteError(c, ce)
		}
		return
	}

	common.LogInfo("推薦完成",
		zap.String("request_id", requestID),
		zap.String("menu", result.MenuName),
	)
	c.JSON(http.StatusOK, result)
}
