package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round down below midpoint", 1.234, 1.23},
		{"Round up above midpoint", 1.236, 1.24},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number", -1.236, -1.24},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two cents", 0.019, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(0.123456, 4); math.Abs(got-0.1235) > 1e-9 {
		t.Errorf("RoundTo(0.123456, 4) = %v, expected 0.1235", got)
	}
	if got := RoundTo(12.5, 0); got != 13 {
		t.Errorf("RoundTo(12.5, 0) = %v, expected 13", got)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Below range", -12.5, 0},
		{"Inside range", 42, 42},
		{"Above range", 117.2, 100},
		{"Upper bound", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ClampScore(tt.input); result != tt.expected {
				t.Errorf("ClampScore(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	if NonNegative(-0.5) != 0 {
		t.Error("expected negative value to floor at 0")
	}
	if NonNegative(3.25) != 3.25 {
		t.Error("expected positive value to pass through")
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name        string
		numerator   float64
		denominator float64
		expected    float64
	}{
		{"Regular division", 500, 5000, 0.1},
		{"Zero denominator", 500, 0, 0},
		{"Negative denominator", 500, -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SafeDivide(tt.numerator, tt.denominator)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("SafeDivide(%v, %v) = %v, expected %v", tt.numerator, tt.denominator, result, tt.expected)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	if got := CalculatePercentage(25, 200); got != 12.5 {
		t.Errorf("CalculatePercentage(25, 200) = %v, expected 12.5", got)
	}
	if got := CalculatePercentage(25, 0); got != 0 {
		t.Errorf("CalculatePercentage(25, 0) = %v, expected 0", got)
	}
	if got := CalculatePercentage(25, -10); got != 0 {
		t.Errorf("CalculatePercentage(25, -10) = %v, expected 0", got)
	}
}

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(values); got != 5 {
		t.Errorf("Mean() = %v, expected 5", got)
	}
	if got := StdDev(values); math.Abs(got-2) > 1e-12 {
		t.Errorf("StdDev() = %v, expected 2", got)
	}
	if Mean(nil) != 0 || StdDev(nil) != 0 {
		t.Error("expected empty input to yield 0")
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100.004, 100.0, 0.01) {
		t.Error("expected values within tolerance")
	}
	if WithinTolerance(100.2, 100.0, 0.01) {
		t.Error("expected values outside tolerance")
	}
}
