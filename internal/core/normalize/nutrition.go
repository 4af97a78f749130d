package normalize

import (
	"strings"

	"nutrition-relay/internal/pkg/common"
)

// PlaceholderFoodName 回應與呼叫端都沒有提供名稱時使用
const PlaceholderFoodName = "음식명 없음"

// Normalizer 將解析後的 AI 回應對應到 common.NutritionRecord
type Normalizer struct {
	aliases Aliases
}

// NewNormalizer 以別名表創建正規化器；同時比對原始鍵名與經 ExtractJSON 過濾後的鍵名
func NewNormalizer(aliases Aliases) *Normalizer {
	return &Normalizer{aliases: aliases.withExtractedForms()}
}

var defaultNormalizer = NewNormalizer(DefaultAliases())

// Nutrition 使用內建別名表正規化
func Nutrition(parsed map[string]any, fallbackName string) common.NutritionRecord {
	return defaultNormalizer.Nutrition(parsed, fallbackName)
}

// Nutrition 不會失敗：缺少或格式錯誤的欄位為 0，
// 沒有名稱時依序使用 fallbackName、PlaceholderFoodName
func (n *Normalizer) Nutrition(parsed map[string]any, fallbackName string) common.NutritionRecord {
	return common.NutritionRecord{
		FoodName: n.foodName(parsed, fallbackName),
		Calories: n.number(parsed, n.aliases.Calories),
		Nutrients: common.Nutrients{
			Protein:       n.nutrient(parsed, n.aliases.Protein),
			Fat:           n.nutrient(parsed, n.aliases.Fat),
			Carbohydrates: n.nutrient(parsed, n.aliases.Carbohydrates),
			Sugar:         n.nutrient(parsed, n.aliases.Sugar),
			Sodium:        n.nutrient(parsed, n.aliases.Sodium),
		},
	}
}

func (n *Normalizer) foodName(parsed map[string]any, fallbackName string) string {
	if v, ok := resolve(parsed, n.aliases.FoodName); ok {
		if s, isString := v.(string); isString && trimmed(s) != "" {
			return trimmed(s)
		}
	}
	if name := trimmed(fallbackName); name != "" {
		return name
	}
	return PlaceholderFoodName
}

func (n *Normalizer) number(obj map[string]any, keys []string) float64 {
	v, _ := resolve(obj, keys)
	return nonNegative(Coerce(v))
}

// nutrient 依序查找各營養素群組，最後查最上層
func (n *Normalizer) nutrient(parsed map[string]any, keys []string) float64 {
	for _, group := range n.aliases.Nutrients {
		sub, ok := parsed[group].(map[string]any)
		if !ok {
			continue
		}
		if v, found := resolve(sub, keys); found {
			return nonNegative(Coerce(v))
		}
	}
	return n.number(parsed, keys)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
