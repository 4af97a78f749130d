package common

// Nutrients 五項固定營養素，所有欄位皆為有限且非負的數值
type Nutrients struct {
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
}

// NutritionRecord 食物分析的標準輸出
type NutritionRecord struct {
	FoodName  string    `json:"foodName"`
	Calories  float64   `json:"calories"`
	Nutrients Nutrients `json:"nutrients"`
}

// RecommendationCandidate 正規化後的推薦候選
type RecommendationCandidate struct {
	MenuName string  `json:"menuName"`
	Calories float64 `json:"calories"`
	Reason   string  `json:"reason"`
	Score    float64 `json:"score"`
}

// CombinedRecommendation 合併後的推薦結果（前端直接顯示）
type CombinedRecommendation struct {
	MenuName string  `json:"menuName"`
	Calories float64 `json:"calories"`
	Reason   string  `json:"reason"`
}

// CurrentIntake 使用者目前攝取量，數值可能是數字或帶單位的字串
type CurrentIntake struct {
	Calories any `json:"calories"`
	Carbs    any `json:"carbs"`
	Protein  any `json:"protein"`
	Fat      any `json:"fat"`
	Sugar    any `json:"sugar"`
	Sodium   any `json:"sodium"`
}

// UserState 傳給推薦服務的使用者狀態
type UserState struct {
	RecCal   float64 `json:"rec_cal"`
	RecCarb  float64 `json:"rec_carb"`
	RecPro   float64 `json:"rec_pro"`
	RecFat   float64 `json:"rec_fat"`
	RecSugar float64 `json:"rec_sugar"`
	RecNa    float64 `json:"rec_na"`
	CurCal   float64 `json:"cur_cal"`
	CurCarb  float64 `json:"cur_carb"`
	CurPro   float64 `json:"cur_pro"`
	CurFat   float64 `json:"cur_fat"`
	CurSugar float64 `json:"cur_sugar"`
	CurNa    float64 `json:"cur_na"`
}

// RecommendationRequest 推薦服務請求本體
type RecommendationRequest struct {
	UserState       UserState `json:"user_state"`
	RecentFoodNames []string  `json:"recent_food_names"`
}

// AnalyzeImageRequest 圖片分析請求
type AnalyzeImageRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// AnalyzeTextRequest 文字分析請求
type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

// RecommendationInput 推薦端點的請求本體
type RecommendationInput struct {
	Gender        string         `json:"gender"`
	CurrentIntake *CurrentIntake `json:"currentIntake"`
	FoodList      []string       `json:"foodList"`
}
