package numeric

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		value  float64
		places int
		want   float64
	}{
		{1.25, 1, 1.3},
		{-1.25, 1, -1.3},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{91.23456, 2, 91.23},
		{66.666, 1, 66.7},
		{0, 2, 0},
	}

	for _, tt := range tests {
		if got := Round(tt.value, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.value, tt.places, got, tt.want)
		}
	}
}

func TestRatio_ZeroDenominator(t *testing.T) {
	if got := Ratio(5, 0); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	if got := Percent(0, 0, 2); got != 0 || math.IsNaN(got) {
		t.Errorf("Expected 0, got %v", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 3, 2); got != 33.33 {
		t.Errorf("Expected 33.33, got %v", got)
	}
	if got := Percent(7, 12, 1); got != 58.3 {
		t.Errorf("Expected 58.3, got %v", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
	if got := Mean([]float64{90, 92, 94}); got != 92 {
		t.Errorf("Expected 92, got %v", got)
	}
}
