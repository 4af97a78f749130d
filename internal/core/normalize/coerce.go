// Package normalize 將不可靠的上游 AI 輸出轉成固定結構的紀錄
//
// 本套件不做 I/O 也不記錄日誌。除了 ExtractJSON 會回傳 ErrMalformedResponse
// 交由呼叫端降級之外，所有函式都不會失敗。
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// 無號整數或小數；不含正負號、指數與千分位
var numberPattern = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// Coerce 從任意 JSON 值取出數值，永遠回傳有限數，最差為 0
func Coerce(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return finite(f)
		}
		return scanNumber(string(v))
	case string:
		return scanNumber(v)
	case bool:
		return 0
	case map[string]any:
		return 0
	default:
		return scanNumber(fmt.Sprint(v))
	}
}

// CoerceString 轉成顯示用文字，nil 為空字串
func CoerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func scanNumber(s string) float64 {
	match := numberPattern.FindString(s)
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
