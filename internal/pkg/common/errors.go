package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Error string `json:"error"`          // 錯誤信息
	Code  string `json:"code,omitempty"` // 錯誤代碼
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓包裝後的錯誤仍可用 errors.Is 判斷
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap 以相同代碼與狀態碼包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// Response 轉換為 API 錯誤響應
func (e *CustomError) Response() ErrorResponse {
	return ErrorResponse{Error: e.Message, Code: e.Code}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError 取出錯誤鏈中的 CustomError，找不到時回傳內部錯誤
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeMissingInput    = "MISSING_INPUT"     // 400
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError       = "INTERNAL_ERROR"       // 500
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE" // 502
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrMissingInput    = NewError(ErrCodeMissingInput, "missing required input", http.StatusBadRequest, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError       = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrUpstreamUnavailable = NewError(ErrCodeUpstreamUnavailable, "recommendation server connection failed", http.StatusBadGateway, nil)

	// 業務錯誤
	ErrAIServiceError = NewError("AI_SERVICE_ERROR", "AI service error", http.StatusServiceUnavailable, nil)
	ErrQueueFull      = NewError("QUEUE_FULL", "too many in-flight AI requests", http.StatusServiceUnavailable, nil)
	ErrInvalidImage   = NewError("INVALID_IMAGE", "invalid image data", http.StatusBadRequest, nil)
	ErrImageTooLarge  = NewError("INVALID_IMAGE_SIZE", "image exceeds size limit", http.StatusBadRequest, nil)
	ErrCacheMiss      = NewError("CACHE_MISS", "cache miss", http.StatusNotFound, nil)
	ErrCacheFull      = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
)
