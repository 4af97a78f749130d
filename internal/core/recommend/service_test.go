package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nutrition-relay/internal/core/normalize"
	"nutrition-relay/internal/pkg/common"
)

func newRecommender(t *testing.T, status int, body string, inspect func(common.RecommendationRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/recommend" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req common.RecommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(baseURL string) *Service {
	return NewService(NewClient(baseURL, "/recommend", 5*time.Second), normalize.DefaultMenuNameRule())
}

var validInput = common.RecommendationInput{
	Gender:        "male",
	CurrentIntake: &common.CurrentIntake{Calories: "1500", Protein: json.Number("30")},
	FoodList:      []string{"김치찌개"},
}

func TestRecommend(t *testing.T) {
	body := `[
		{"recommend_menu":"찌개_된장","calorie":"350","reason":"나트륨 조절","score":0.9},
		{"recommend_menu":"구이_고등어","calorie":420.5,"reason":"단백질 보충","score":"0.8"},
		{"recommend_menu":"샐러드","calorie":null,"reason":"가벼운 식사"}
	]`
	srv := newRecommender(t, http.StatusOK, body, func(req common.RecommendationRequest) {
		if req.UserState.RecCal != 2500 || req.UserState.CurCal != 1500 || req.UserState.CurPro != 30 {
			t.Errorf("user_state = %+v", req.UserState)
		}
		if len(req.RecentFoodNames) != 1 || req.RecentFoodNames[0] != "김치찌개" {
			t.Errorf("recent_food_names = %v", req.RecentFoodNames)
		}
	})

	got, err := newTestService(srv.URL).Recommend(context.Background(), validInput)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if got.MenuName != "1. 된장 찌개 / 2. 고등어 구이 / 3. 샐러드" {
		t.Errorf("MenuName = %q", got.MenuName)
	}
	if got.Calories != 350 {
		t.Errorf("Calories = %v, want 350", got.Calories)
	}
	if strings.Count(got.Reason, "\n\n") != 2 || !strings.Contains(got.Reason, "[2위] 고등어 구이 (420.5kcal)\n👉 단백질 보충") {
		t.Errorf("Reason = %q", got.Reason)
	}
}

func TestRecommendSendsEmptyFoodList(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	input := validInput
	input.FoodList = nil
	got, err := newTestService(srv.URL).Recommend(context.Background(), input)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got != normalize.NoEligibleMenu() {
		t.Errorf("got %+v, want sentinel", got)
	}
	if list, ok := raw["recent_food_names"].([]any); !ok || len(list) != 0 {
		t.Errorf("recent_food_names = %#v, want []", raw["recent_food_names"])
	}
}

func TestRecommendShapeMismatch(t *testing.T) {
	for _, body := range []string{`{"detail":"model not loaded"}`, `not json`, ``} {
		srv := newRecommender(t, http.StatusOK, body, nil)
		got, err := newTestService(srv.URL).Recommend(context.Background(), validInput)
		if err != nil {
			t.Errorf("body %q: unexpected error %v", body, err)
		}
		if got != normalize.NoEligibleMenu() {
			t.Errorf("body %q: got %+v, want sentinel", body, got)
		}
	}
}

func TestRecommendUpstreamUnavailable(t *testing.T) {
	srv := newRecommender(t, http.StatusInternalServerError, `{"error":"boom"}`, nil)
	_, err := newTestService(srv.URL).Recommend(context.Background(), validInput)
	if !errors.Is(err, common.ErrUpstreamUnavailable) {
		t.Errorf("status 500: error = %v, want ErrUpstreamUnavailable", err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = newTestService(closed.URL).Recommend(context.Background(), validInput)
	if !errors.Is(err, common.ErrUpstreamUnavailable) {
		t.Errorf("connection refused: error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestRecommendValidatesBeforeCalling(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newTestService(srv.URL).Recommend(context.Background(), common.RecommendationInput{Gender: "male"})
	if !errors.Is(err, common.ErrMissingInput) {
		t.Errorf("error = %v, want ErrMissingInput", err)
	}
	if called {
		t.Error("recommender must not be called for invalid input")
	}
}
