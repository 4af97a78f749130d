package recommend

import (
	"context"

	"nutrition-relay/internal/core/normalize"
	"nutrition-relay/internal/pkg/common"
)

// Recommender 下游推薦服務
type Recommender interface {
	Recommend(ctx context.Context, req common.RecommendationRequest) ([]map[string]any, error)
}

// Service 推薦代理服務
type Service struct {
	recommender Recommender
	aggregator  *normalize.Aggregator
}

// NewService 創建推薦代理服務
func NewService(recommender Recommender, rule normalize.MenuNameRule) *Service {
	return &Service{
		recommender: recommender,
		aggregator:  normalize.NewAggregator(rule),
	}
}

// Recommend 驗證輸入、呼叫下游並合併候選；沒有候選時回傳「추천 불가」
func (s *Service) Recommend(ctx context.Context, input common.RecommendationInput) (common.CombinedRecommendation, error) {
	state, err := BuildUserState(input.Gender, input.CurrentIntake)
	if err != nil {
		return common.CombinedRecommendation{}, err
	}

	candidates, err := s.recommender.Recommend(ctx, common.RecommendationRequest{
		UserState:       state,
		RecentFoodNames: input.FoodList,
	})
	if err != nil {
		return common.CombinedRecommendation{}, err
	}

	return s.aggregator.Aggregate(candidates), nil
}
