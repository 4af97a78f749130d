package common

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得請求 ID：優先使用 requestid 中間件產生的值，其次是請求標頭
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}

// WriteError 寫入錯誤響應
func WriteError(c *gin.Context, err *CustomError) {
	c.JSON(err.Status, err.Response())
}

// WriteErrorMessage 以指定訊息寫入錯誤響應，保留錯誤代碼與狀態碼
func WriteErrorMessage(c *gin.Context, err *CustomError, message string) {
	c.JSON(err.Status, ErrorResponse{Error: message, Code: err.Code})
}
