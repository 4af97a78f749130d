package normalize

import "nutrition-relay/internal/pkg/common"

// FailureKind 失敗的分析流程
type FailureKind int

const (
	ImageAnalysisFailed FailureKind = iota
	TextAnalysisFailed
)

// 降級時顯示給用戶端的文字
const (
	ImageAnalysisFailedName = "분석 실패 (오류)"
	TextAnalysisFailedName  = "검색 실패"
	NoEligibleMenuName      = "추천 불가"
	NoEligibleMenuReason    = "조건에 맞는 메뉴가 없습니다."
)

func (k FailureKind) String() string {
	switch k {
	case ImageAnalysisFailed:
		return "image_analysis"
	case TextAnalysisFailed:
		return "text_analysis"
	}
	return "unknown"
}

// DegradedNutrition 分析流程任一階段失敗時替代的零值紀錄
func DegradedNutrition(kind FailureKind) common.NutritionRecord {
	name := ImageAnalysisFailedName
	if kind == TextAnalysisFailed {
		name = TextAnalysisFailedName
	}
	return common.NutritionRecord{FoodName: name}
}

// NoEligibleMenu 沒有候選時回傳的固定結果
func NoEligibleMenu() common.CombinedRecommendation {
	return common.CombinedRecommendation{
		MenuName: NoEligibleMenuName,
		Calories: 0,
		Reason:   NoEligibleMenuReason,
	}
}
