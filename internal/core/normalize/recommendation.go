package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"nutrition-relay/internal/pkg/common"
)

// 推薦服務回傳的候選欄位
const (
	keyRecommendMenu = "recommend_menu"
	keyCalorie       = "calorie"
	keyReason        = "reason"
	keyScore         = "score"
)

const (
	menuSeparator   = " / "
	reasonSeparator = "\n\n"
)

// MenuNameRule 菜名還原規則；上游菜名以分隔符號連接且順序相反，例如 "찌개_김치"
type MenuNameRule struct {
	Reverse   bool
	Delimiter string
}

// DefaultMenuNameRule 反轉以 "_" 連接的詞
func DefaultMenuNameRule() MenuNameRule {
	return MenuNameRule{Reverse: true, Delimiter: "_"}
}

// Clean 去除空白；規則適用時反轉詞序並以單一空格連接
func (r MenuNameRule) Clean(name string) string {
	name = strings.TrimSpace(name)
	if !r.Reverse || r.Delimiter == "" || !strings.Contains(name, r.Delimiter) {
		return name
	}
	parts := strings.Split(name, r.Delimiter)
	tokens := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		if t := strings.TrimSpace(parts[i]); t != "" {
			tokens = append(tokens, t)
		}
	}
	return strings.Join(tokens, " ")
}

// Aggregator 將排序好的候選合併成一筆顯示結果
type Aggregator struct {
	rule MenuNameRule
}

// NewAggregator 創建合併器
func NewAggregator(rule MenuNameRule) *Aggregator {
	return &Aggregator{rule: rule}
}

// Candidates 依原順序轉換候選，不重新排序
func (a *Aggregator) Candidates(raw []map[string]any) []common.RecommendationCandidate {
	out := make([]common.RecommendationCandidate, 0, len(raw))
	for _, item := range raw {
		out = append(out, common.RecommendationCandidate{
			MenuName: a.rule.Clean(CoerceString(item[keyRecommendMenu])),
			Calories: nonNegative(Coerce(item[keyCalorie])),
			Reason:   CoerceString(item[keyReason]),
			Score:    Coerce(item[keyScore]),
		})
	}
	return out
}

// Aggregate 依排名組出合併的菜名與說明；沒有候選時回傳 NoEligibleMenu
func (a *Aggregator) Aggregate(raw []map[string]any) common.CombinedRecommendation {
	candidates := a.Candidates(raw)
	if len(candidates) == 0 {
		return NoEligibleMenu()
	}

	titles := make([]string, len(candidates))
	reasons := make([]string, len(candidates))
	for i, c := range candidates {
		rank := i + 1
		titles[i] = fmt.Sprintf("%d. %s", rank, c.MenuName)
		reasons[i] = fmt.Sprintf("[%d위] %s (%skcal)\n👉 %s", rank, c.MenuName, formatNumber(c.Calories), c.Reason)
	}

	return common.CombinedRecommendation{
		MenuName: strings.Join(titles, menuSeparator),
		Calories: candidates[0].Calories,
		Reason:   strings.Join(reasons, reasonSeparator),
	}
}

// CandidateList 將下游回應轉成候選列表
//
// 不是陣列時視為格式不符，回傳空列表；非物件元素轉為空候選，排名不會錯位。
func CandidateList(body any) []map[string]any {
	items, ok := body.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			m = map[string]any{}
		}
		out = append(out, m)
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
