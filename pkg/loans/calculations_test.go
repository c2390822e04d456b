package loans

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name        string
		principal   float64
		downPayment float64
		annualRate  float64
		termMonths  int
		expected    float64
	}{
		{
			name:        "Standard 4-year vehicle loan",
			principal:   28000,
			downPayment: 2800,
			annualRate:  0.05,
			termMonths:  48,
			expected:    580.34,
		},
		{
			name:        "5-year car loan",
			principal:   25000,
			downPayment: 5000,
			annualRate:  0.04,
			termMonths:  60,
			expected:    368.33,
		},
		{
			name:        "Standard 30-year loan",
			principal:   300000,
			downPayment: 60000,
			annualRate:  0.06,
			termMonths:  360,
			expected:    1438.92,
		},
		{
			name:        "Zero interest loan",
			principal:   12000,
			downPayment: 2000,
			annualRate:  0.0,
			termMonths:  60,
			expected:    166.67,
		},
		{
			name:        "100% down payment",
			principal:   50000,
			downPayment: 50000,
			annualRate:  0.05,
			termMonths:  60,
			expected:    0,
		},
		{
			name:        "High interest loan",
			principal:   10000,
			downPayment: 0,
			annualRate:  0.18,
			termMonths:  36,
			expected:    361.52,
		},
		{
			name:        "Zero term",
			principal:   10000,
			downPayment: 0,
			annualRate:  0.05,
			termMonths:  0,
			expected:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.downPayment, tt.annualRate, tt.termMonths)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("CalculateMonthlyPayment() = %.4f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestCalculateMonthlyPaymentIncreasesWithRate(t *testing.T) {
	previous := 0.0
	for _, rate := range []float64{0, 0.02, 0.05, 0.08, 0.12} {
		payment := CalculateMonthlyPayment(25200, 0, rate, 48)
		if payment <= previous {
			t.Fatalf("payment %.2f at rate %.2f did not exceed %.2f", payment, rate, previous)
		}
		previous = payment
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal float64
		annualRate         float64
		expected           float64
	}{
		{"Standard balance", 25200, 0.05, 105.0},
		{"Zero rate", 25200, 0, 0},
		{"Zero balance", 0, 0.05, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remainingPrincipal, tt.annualRate)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("CalculateInterestPayment() = %.4f, expected %.4f", result, tt.expected)
			}
		})
	}
}

func TestCalculateLeasePayment(t *testing.T) {
	tests := []struct {
		name        string
		price       float64
		residual    float64
		moneyFactor float64
		termMonths  int
		expected    float64
	}{
		{"Typical lease", 30000, 18000, 0.00125, 36, 393.33},
		{"No finance charge", 30000, 18000, 0, 36, 333.33},
		{"Zero term", 30000, 18000, 0.00125, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateLeasePayment(tt.price, tt.residual, tt.moneyFactor, tt.termMonths)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("CalculateLeasePayment() = %.4f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestMoneyFactor(t *testing.T) {
	if got := MoneyFactor(0.06); math.Abs(got-0.0025) > 1e-12 {
		t.Errorf("MoneyFactor(0.06) = %v, expected 0.0025", got)
	}
}

func TestGenerateSchedule(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	schedule := generator.GenerateSchedule(25200, 0.05, 48)

	if len(schedule) != 48 {
		t.Fatalf("expected 48 payments, got %d", len(schedule))
	}
	if schedule[0].Month != 1 || schedule[47].Month != 48 {
		t.Errorf("unexpected month numbering: first %d last %d", schedule[0].Month, schedule[47].Month)
	}
	if math.Abs(schedule[0].Interest-105.0) > 0.0001 {
		t.Errorf("first interest payment = %.4f, expected 105.00", schedule[0].Interest)
	}
	if schedule[47].RemainingPrincipal != 0 {
		t.Errorf("expected final balance of 0, got %.4f", schedule[47].RemainingPrincipal)
	}

	for i := 1; i < len(schedule); i++ {
		if schedule[i].RemainingPrincipal > schedule[i-1].RemainingPrincipal {
			t.Fatalf("balance increased at month %d", schedule[i].Month)
		}
	}

	totalPaid, totalInterest := Totals(schedule)
	if math.Abs(totalPaid-27856.23) > 0.05 {
		t.Errorf("total paid = %.2f, expected about 27856.23", totalPaid)
	}
	if math.Abs(totalInterest-2656.23) > 0.05 {
		t.Errorf("total interest = %.2f, expected about 2656.23", totalInterest)
	}
}

func TestGenerateScheduleDegenerateInputs(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(nil)
	if schedule := generator.GenerateSchedule(0, 0.05, 48); schedule != nil {
		t.Errorf("expected nil schedule for zero principal, got %d payments", len(schedule))
	}
	if schedule := generator.GenerateSchedule(1000, 0.05, 0); schedule != nil {
		t.Errorf("expected nil schedule for zero term, got %d payments", len(schedule))
	}

	schedule := generator.GenerateSchedule(1200, 0, 12)
	if len(schedule) != 12 {
		t.Fatalf("expected 12 payments, got %d", len(schedule))
	}
	for _, p := range schedule {
		if math.Abs(p.Payment-100) > 0.0001 || p.Interest != 0 {
			t.Fatalf("month %d: payment %.4f interest %.4f", p.Month, p.Payment, p.Interest)
		}
	}
}
