package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"nutrition-relay/internal/pkg/common"
)

// ErrMalformedResponse AI 輸出中找不到可解析的 JSON 物件
var ErrMalformedResponse = errors.New("malformed AI response")

var fencePattern = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*?)```")

// ExtractJSON 從模型原始文字中取出 JSON 物件並解析
//
// 有程式碼區塊時取其內容，再縮小到最外層大括號，去除允許集合以外的字元後解析。
// 數字保留為 json.Number。
func ExtractJSON(rawText string) (map[string]any, error) {
	text := norm.NFC.String(strings.TrimPrefix(strings.TrimSpace(rawText), "\uFEFF"))
	if text == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedResponse)
	}

	candidate := text
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}
	candidate = narrowToBraces(candidate)
	candidate = stripDisallowed(candidate)

	var parsed any
	if err := common.ParseJSON(candidate, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedResponse)
	}
	return obj, nil
}

func narrowToBraces(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}

// stripDisallowed 只保留 JSON 標點、數字、ASCII 字母、空白與韓文音節
func stripDisallowed(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= 0xAC00 && r <= 0xD7A3:
			return r
		case strings.ContainsRune(`{}[]:,".-`, r):
			return r
		case unicode.IsSpace(r):
			return r
		}
		return -1
	}, s)
}
