package netpay

import (
	"math"
	"testing"
	"time"

	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

var fixedTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name         string
		salary       float64
		subsidies    float64
		transport    float64
		federal      float64
		fica         float64
		totalTax     float64
		netAnnual    float64
		monthlyNet   float64
		conservative float64
		low95        float64
	}{
		{
			name:         "Mid-range salary",
			salary:       60000,
			federal:      8507.50,
			fica:         4590.00,
			totalTax:     16097.50,
			netAnnual:    43902.50,
			monthlyNet:   3658.54,
			conservative: 37317.13,
			low95:        30995.17,
		},
		{
			name:         "Subsidies and transportation benefit",
			salary:       50000,
			subsidies:    5000,
			transport:    1200,
			federal:      7407.50,
			fica:         4207.50,
			totalTax:     14365.00,
			netAnnual:    41835.00,
			monthlyNet:   3486.25,
			conservative: 35559.75,
			low95:        29535.51,
		},
		{
			name:         "Above Social Security wage base",
			salary:       200000,
			federal:      41400.00,
			fica:         13353.20,
			totalTax:     64753.20,
			netAnnual:    135246.80,
			monthlyNet:   11270.57,
			conservative: 114959.78,
			low95:        95484.24,
		},
		{
			name:         "Top bracket",
			salary:       700000,
			federal:      216817.25,
			fica:         20603.20,
			totalTax:     272420.45,
			netAnnual:    427579.55,
			monthlyNet:   35631.63,
			conservative: 363442.62,
			low95:        301871.16,
		},
	}

	estimator := NewEstimator(zap.NewNop(), reference.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := estimator.EstimateWithFixedTime(tt.salary, tt.subsidies, tt.transport, fixedTime)

			checks := []struct {
				field    string
				got      float64
				expected float64
			}{
				{"federal", result.TaxBreakdown.Federal, tt.federal},
				{"fica", result.TaxBreakdown.FICA, tt.fica},
				{"total tax", result.TaxBreakdown.Total, tt.totalTax},
				{"net annual", result.NetAnnual, tt.netAnnual},
				{"monthly net", result.MonthlyNet, tt.monthlyNet},
				{"conservative", result.ConservativeNetAnnual, tt.conservative},
				{"95 low", result.ConfidenceIntervals.Low95, tt.low95},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.expected) > 0.02 {
					t.Errorf("%s = %.2f, expected %.2f", c.field, c.got, c.expected)
				}
			}

			if result.VolatilityPercentage != 15 {
				t.Errorf("volatility percentage = %.2f, expected 15", result.VolatilityPercentage)
			}
			if result.LastUpdated != "2026-03-01T12:00:00Z" {
				t.Errorf("unexpected timestamp %s", result.LastUpdated)
			}
		})
	}
}

func TestEstimateNonPositiveGross(t *testing.T) {
	estimator := NewEstimator(nil, nil)

	for _, salary := range []float64{0, -5000} {
		result := estimator.EstimateWithFixedTime(salary, 0, 0, fixedTime)
		if result.TaxBreakdown.Total != 0 || result.TaxBreakdown.Federal != 0 ||
			result.TaxBreakdown.State != 0 || result.TaxBreakdown.FICA != 0 {
			t.Errorf("salary %.0f: expected zero taxes, got %+v", salary, result.TaxBreakdown)
		}
		if result.ConservativeNetAnnual < 0 || result.ConfidenceIntervals.Low95 < 0 {
			t.Errorf("salary %.0f: conservative figures must not be negative", salary)
		}
		if salary <= 0 && result.NetAnnual <= 0 && result.VolatilityPercentage != 0 {
			t.Errorf("salary %.0f: expected zero volatility percentage, got %.2f", salary, result.VolatilityPercentage)
		}
	}
}

func TestEstimateMonotonicInSalary(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil)
	previous := estimator.EstimateWithFixedTime(0, 0, 0, fixedTime).NetAnnual
	for salary := 5000.0; salary <= 800000; salary += 5000 {
		net := estimator.EstimateWithFixedTime(salary, 0, 0, fixedTime).NetAnnual
		if net < previous {
			t.Fatalf("net pay fell from %.2f to %.2f at salary %.0f", previous, net, salary)
		}
		previous = net
	}
}

func TestEstimateIsReproducible(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil)
	a := estimator.EstimateWithFixedTime(72000, 3000, 600, fixedTime)
	b := estimator.EstimateWithFixedTime(72000, 3000, 600, fixedTime)
	if a != b {
		t.Errorf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestFederalTaxBracketEdges(t *testing.T) {
	brackets := reference.Default().Tax.FederalBrackets
	tests := []struct {
		name     string
		gross    float64
		expected float64
	}{
		{"First bracket only", 11000, 1100},
		{"Second bracket edge", 44725, 5147},
		{"Negative income", -100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FederalTax(tt.gross, brackets); math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("FederalTax(%.0f) = %.2f, expected %.2f", tt.gross, got, tt.expected)
			}
		})
	}
}
