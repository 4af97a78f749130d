package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"nutrition-relay/internal/pkg/common"
)

func TestMenuNameRuleClean(t *testing.T) {
	tests := []struct {
		name string
		rule MenuNameRule
		in   string
		want string
	}{
		{"reverse tokens", DefaultMenuNameRule(), "찌개_김치", "김치 찌개"},
		{"three tokens", DefaultMenuNameRule(), "볶음밥_새우_매콤", "매콤 새우 볶음밥"},
		{"no delimiter", DefaultMenuNameRule(), "비빔밥", "비빔밥"},
		{"empty tokens dropped", DefaultMenuNameRule(), "_국__된장_", "된장 국"},
		{"surrounding space", DefaultMenuNameRule(), "  탕_갈비 ", "갈비 탕"},
		{"reverse disabled", MenuNameRule{Reverse: false, Delimiter: "_"}, "찌개_김치", "찌개_김치"},
		{"custom delimiter", MenuNameRule{Reverse: true, Delimiter: "|"}, "면|냉", "냉 면"},
		{"empty name", DefaultMenuNameRule(), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	agg := NewAggregator(DefaultMenuNameRule())

	raw := []map[string]any{
		{"recommend_menu": "찌개_김치", "calorie": "450kcal", "reason": "단백질 보충", "score": json.Number("0.92")},
		{"recommend_menu": "샐러드_닭가슴살", "calorie": json.Number("320"), "reason": "저지방", "score": "0.81"},
		{"recommend_menu": "비빔밥", "calorie": nil, "reason": "균형 잡힌 식사"},
	}

	got := agg.Aggregate(raw)

	segments := strings.Split(got.MenuName, " / ")
	if len(segments) != 3 {
		t.Fatalf("menuName segments = %d (%q), want 3", len(segments), got.MenuName)
	}
	wantSegments := []string{"1. 김치 찌개", "2. 닭가슴살 샐러드", "3. 비빔밥"}
	for i, s := range segments {
		if s != wantSegments[i] {
			t.Errorf("segment[%d] = %q, want %q", i, s, wantSegments[i])
		}
	}

	if n := strings.Count(got.Reason, "\n\n"); n != 2 {
		t.Errorf("reason blank-line separators = %d, want 2", n)
	}
	wantReason := "[1위] 김치 찌개 (450kcal)\n👉 단백질 보충\n\n" +
		"[2위] 닭가슴살 샐러드 (320kcal)\n👉 저지방\n\n" +
		"[3위] 비빔밥 (0kcal)\n👉 균형 잡힌 식사"
	if got.Reason != wantReason {
		t.Errorf("reason = %q, want %q", got.Reason, wantReason)
	}

	if got.Calories != 450 {
		t.Errorf("calories = %v, want first candidate's 450", got.Calories)
	}
}

func TestAggregateKeepsGivenOrder(t *testing.T) {
	agg := NewAggregator(DefaultMenuNameRule())

	got := agg.Aggregate([]map[string]any{
		{"recommend_menu": "국수", "calorie": "300", "score": "0.1"},
		{"recommend_menu": "덮밥", "calorie": "700", "score": "0.9"},
	})

	if got.MenuName != "1. 국수 / 2. 덮밥" {
		t.Errorf("menuName = %q, candidates must not be re-sorted", got.MenuName)
	}
	if got.Calories != 300 {
		t.Errorf("calories = %v, want 300", got.Calories)
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := NewAggregator(DefaultMenuNameRule())

	for _, raw := range [][]map[string]any{nil, {}} {
		got := agg.Aggregate(raw)
		if got != NoEligibleMenu() {
			t.Errorf("Aggregate(%v) = %+v, want sentinel", raw, got)
		}
	}
}

func TestCandidates(t *testing.T) {
	agg := NewAggregator(DefaultMenuNameRule())

	got := agg.Candidates([]map[string]any{
		{"recommend_menu": "전_감자", "calorie": "-20", "reason": nil, "score": "high"},
		{},
	})

	want := []common.RecommendationCandidate{
		{MenuName: "감자 전", Calories: 20, Reason: "", Score: 0},
		{},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCandidateList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array of objects", `[{"recommend_menu":"a"},{"recommend_menu":"b"}]`, 2},
		{"empty array", `[]`, 0},
		{"object is a shape mismatch", `{"error":"no menu"}`, 0},
		{"null", `null`, 0},
		{"non-object elements keep rank", `[1, {"recommend_menu":"b"}]`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body any
			if err := common.ParseJSON(tt.body, &body); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := CandidateList(body); len(got) != tt.want {
				t.Errorf("len(CandidateList) = %d, want %d", len(got), tt.want)
			}
		})
	}
}
