package nutrition

import (
	"fmt"
	"strings"
)

// 回應格式說明，兩種分析共用
const responseFormat = `[중요] 응답은 반드시 아래 JSON 형식 하나만 출력해. 키는 영어로 써:
{
    "foodName": "%s",
    "calories": 숫자,
    "nutrients": {
        "protein": 숫자,
        "fat": 숫자,
        "carbohydrates": 숫자,
        "sugar": 숫자,
        "sodium": 숫자
    }
}
단위(g, mg, kcal)와 설명은 빼고 숫자만 넣어.`

// imagePrompt 圖片分析提示詞
func imagePrompt() string {
	var sb strings.Builder
	sb.WriteString("이 음식 사진을 분석해줘.\n")
	sb.WriteString("1. 음식 이름은 한국어로 적어줘.\n")
	sb.WriteString("2. 칼로리와 영양소(탄수화물, 단백질, 지방, 당류, 나트륨)를 추정해줘.\n\n")
	sb.WriteString(fmt.Sprintf(responseFormat, "음식 이름(한국어)"))
	return sb.String()
}

// textPrompt 文字分析提示詞，份量需反映在營養素上
func textPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("사용자가 입력한 음식: %q\n\n", text))
	sb.WriteString("이 내용으로 음식 이름(한국어)과 칼로리, 영양소를 추정해줘.\n")
	sb.WriteString("양이 적혀 있으면(예: 2인분, 두 그릇) 그 양만큼 곱해서 계산해줘.\n\n")
	sb.WriteString(fmt.Sprintf(responseFormat, "음식 이름 (양 포함)"))
	return sb.String()
}
