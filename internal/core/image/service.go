package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG 格式偵測

	"nutrition-relay/internal/pkg/common"

	_ "golang.org/x/image/webp" // 支援 WebP
)

// 需要轉成 JPEG 的格式，其他格式原樣送出
var transcodeFormats = map[string]bool{
	"gif":  true,
	"webp": true,
}

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{maxSizeBytes: maxSizeBytes}
}

// ProcessImage 將上傳的 base64 圖片轉為 data URL
//
// imageData 可以是純 base64 或 data URL；mimeType 為空時使用 data URL 內的類型。
// GIF 與 WebP 會轉成 JPEG，無法解碼的格式（例如 HEIC）原樣交給模型判斷。
func (s *Service) ProcessImage(imageData, mimeType string) (string, error) {
	payload := strings.TrimSpace(imageData)
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return "", common.ErrInvalidImage.Wrap(fmt.Errorf("invalid data url"))
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(meta, ";base64")
		}
		payload = data
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	decoded, err := decodeBase64(payload)
	if err != nil {
		return "", common.ErrInvalidImage.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	if len(decoded) == 0 {
		return "", common.ErrInvalidImage.Wrap(fmt.Errorf("empty image"))
	}
	if s.maxSizeBytes > 0 && int64(len(decoded)) > s.maxSizeBytes {
		return "", common.ErrImageTooLarge.Wrap(fmt.Errorf("image size %d exceeds maximum limit of %d bytes", len(decoded), s.maxSizeBytes))
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(decoded))
	if err != nil || !transcodeFormats[format] {
		return toDataURL(mimeType, decoded), nil
	}

	img, _, err := image.Decode(bytes.NewReader(decoded))
	if err != nil {
		return toDataURL(mimeType, decoded), nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return toDataURL("image/jpeg", buf.Bytes()), nil
}

// decodeBase64 接受標準與 URL-safe 編碼，允許省略 padding
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)

	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

func toDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
