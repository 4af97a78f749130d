package normalize

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"korean prefix with unit", "약 20g", 20},
		{"kcal suffix", "350kcal", 350},
		{"nil", nil, 0},
		{"plain number", 42, 42},
		{"float64", 12.5, 12.5},
		{"json number", json.Number("500"), 500},
		{"json decimal", json.Number("3.25"), 3.25},
		{"no digits", "no digits here", 0},
		{"empty string", "", 0},
		{"decimal in text", "나트륨 1.5 g", 1.5},
		{"first match wins", "10~20g", 10},
		{"thousands separator stops scan", "1,200kcal", 1},
		{"sign is not part of the pattern", "-5g", 5},
		{"negative number passes through", -3.0, -3},
		{"servings", "1인분", 1},
		{"bool", true, 0},
		{"object", map[string]any{"value": 10}, 0},
		{"array", []any{json.Number("7")}, 7},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.value)
			if got != tt.want {
				t.Errorf("Coerce(%#v) = %v, want %v", tt.value, got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("Coerce(%#v) returned a non-finite number", tt.value)
			}
		})
	}
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"  김치찌개 ", "김치찌개"},
		{json.Number("12"), "12"},
		{map[string]any{"a": 1}, ""},
		{true, "true"},
	}

	for _, tt := range tests {
		if got := CoerceString(tt.value); got != tt.want {
			t.Errorf("CoerceString(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
