// Package recommend 推薦代理：組裝使用者狀態、呼叫下游推薦服務並合併候選
package recommend

import (
	"fmt"
	"strings"

	"nutrition-relay/internal/core/normalize"
	"nutrition-relay/internal/pkg/common"
)

// Intake 每日建議攝取量
type Intake struct {
	Calories float64
	Carbs    float64
	Protein  float64
	Fat      float64
	Sugar    float64
	Sodium   float64
}

// 性別對應的每日建議攝取量
var recommendedIntake = map[string]Intake{
	"male":   {Calories: 2500, Carbs: 324, Protein: 60, Fat: 54, Sugar: 50, Sodium: 2000},
	"female": {Calories: 2000, Carbs: 270, Protein: 50, Fat: 45, Sugar: 50, Sodium: 2000},
}

// LookupIntake 依性別取得建議攝取量，大小寫不拘
func LookupIntake(gender string) (Intake, bool) {
	in, ok := recommendedIntake[strings.ToLower(strings.TrimSpace(gender))]
	return in, ok
}

// BuildUserState 組裝送往推薦服務的使用者狀態，目前攝取量逐項轉為數值
func BuildUserState(gender string, current *common.CurrentIntake) (common.UserState, error) {
	if strings.TrimSpace(gender) == "" || current == nil {
		return common.UserState{}, common.ErrMissingInput
	}
	rec, ok := LookupIntake(gender)
	if !ok {
		return common.UserState{}, common.ErrInvalidRequest.Wrap(fmt.Errorf("unsupported gender %q", gender))
	}

	return common.UserState{
		RecCal:   rec.Calories,
		RecCarb:  rec.Carbs,
		RecPro:   rec.Protein,
		RecFat:   rec.Fat,
		RecSugar: rec.Sugar,
		RecNa:    rec.Sodium,
		CurCal:   normalize.Coerce(current.Calories),
		CurCarb:  normalize.Coerce(current.Carbs),
		CurPro:   normalize.Coerce(current.Protein),
		CurFat:   normalize.Coerce(current.Fat),
		CurSugar: normalize.Coerce(current.Sugar),
		CurNa:    normalize.Coerce(current.Sodium),
	}, nil
}
