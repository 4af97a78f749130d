package normalize

import (
	"golang.org/x/text/unicode/norm"
)

// 設定檔中可額外加別名的欄位名稱
const (
	FieldFoodName      = "foodName"
	FieldCalories      = "calories"
	FieldNutrients     = "nutrients"
	FieldProtein       = "protein"
	FieldFat           = "fat"
	FieldCarbohydrates = "carbohydrates"
	FieldSugar         = "sugar"
	FieldSodium        = "sodium"
)

// Aliases 每個標準欄位依序嘗試的鍵；英文標準鍵在前，在地化鍵在後
type Aliases struct {
	FoodName      []string
	Calories      []string
	Nutrients     []string
	Protein       []string
	Fat           []string
	Carbohydrates []string
	Sugar         []string
	Sodium        []string
}

// DefaultAliases 內建別名表
func DefaultAliases() Aliases {
	return Aliases{
		FoodName:      []string{"foodName", "food_name", "음식 이름", "음식이름", "음식명"},
		Calories:      []string{"calories", "칼로리", "열량", "에너지"},
		Nutrients:     []string{"nutrients", "영양소", "영양성분"},
		Protein:       []string{"protein", "단백질"},
		Fat:           []string{"fat", "지방"},
		Carbohydrates: []string{"carbohydrates", "carbs", "탄수화물"},
		Sugar:         []string{"sugar", "sugars", "당류", "당"},
		Sodium:        []string{"sodium", "나트륨"},
	}
}

// WithExtra 依欄位名稱附加額外別名
//
// 回傳無法使用的設定：未知欄位以欄位名表示；經 ExtractJSON 字元過濾後
// 變成空字串、永遠比對不到的別名以 "欄位.別名" 表示。呼叫端應視為設定錯誤。
func (a Aliases) WithExtra(extra map[string][]string) (Aliases, []string) {
	out := a.clone()
	var invalid []string
	for field, keys := range extra {
		target := out.field(field)
		if target == nil {
			invalid = append(invalid, field)
			continue
		}
		for _, k := range keys {
			if k != "" && extractedKey(k) == "" {
				invalid = append(invalid, field+"."+k)
			}
		}
		*target = appendUnique(*target, keys...)
	}
	return out, invalid
}

// withExtractedForms 在每個別名後補上經 ExtractJSON 過濾後的形式，
// 例如 food_name 之後補 foodname、에너지(kcal) 之後補 에너지kcal
func (a Aliases) withExtractedForms() Aliases {
	out := a.clone()
	for _, list := range out.lists() {
		expanded := make([]string, 0, len(*list))
		for _, k := range *list {
			expanded = appendUnique(expanded, k, extractedKey(k))
		}
		*list = expanded
	}
	return out
}

// extractedKey 鍵名經 ExtractJSON 處理後的樣子
func extractedKey(k string) string {
	return stripDisallowed(norm.NFC.String(k))
}

func (a *Aliases) lists() []*[]string {
	return []*[]string{
		&a.FoodName, &a.Calories, &a.Nutrients, &a.Protein,
		&a.Fat, &a.Carbohydrates, &a.Sugar, &a.Sodium,
	}
}

func (a *Aliases) field(name string) *[]string {
	switch name {
	case FieldFoodName:
		return &a.FoodName
	case FieldCalories:
		return &a.Calories
	case FieldNutrients:
		return &a.Nutrients
	case FieldProtein:
		return &a.Protein
	case FieldFat:
		return &a.Fat
	case FieldCarbohydrates:
		return &a.Carbohydrates
	case FieldSugar:
		return &a.Sugar
	case FieldSodium:
		return &a.Sodium
	}
	return nil
}

func (a Aliases) clone() Aliases {
	return Aliases{
		FoodName:      append([]string(nil), a.FoodName...),
		Calories:      append([]string(nil), a.Calories...),
		Nutrients:     append([]string(nil), a.Nutrients...),
		Protein:       append([]string(nil), a.Protein...),
		Fat:           append([]string(nil), a.Fat...),
		Carbohydrates: append([]string(nil), a.Carbohydrates...),
		Sugar:         append([]string(nil), a.Sugar...),
		Sodium:        append([]string(nil), a.Sodium...),
	}
}

func appendUnique(list []string, keys ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, k := range list {
		seen[k] = true
	}
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		list = append(list, k)
	}
	return list
}

// resolve 回傳第一個有值的別名對應值
func resolve(obj map[string]any, keys []string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	for _, k := range keys {
		v, ok := obj[k]
		if ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

// present null 與空白字串視為沒有值
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return trimmed(t) != ""
	}
	return true
}
