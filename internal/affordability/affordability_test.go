package affordability

import (
	"math"
	"testing"

	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func costPtr(v float64) *float64 {
	return &v
}

func TestScoreWithSuppliedCost(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), nil)
	fin := profile.Financial{CreditScore: 720, MonthlyBudget: 600, LeaseTermMonths: 36, Salary: 60000}

	result := scorer.Score(fin, profile.Preferences{Model: "Camry"}, costPtr(500))

	assert.Equal(t, 100.0, result.ComponentScores.DebtToIncome)
	assert.Equal(t, 85.0, result.ComponentScores.CreditScore)
	assert.InDelta(t, 96.67, result.ComponentScores.BudgetAlignment, 0.001)
	assert.Equal(t, 80.0, result.ComponentScores.IncomeStability)
	assert.Equal(t, 100.0, result.ComponentScores.TermAppropriateness)
	assert.InDelta(t, 92.58, result.OverallScore, 0.001)
	assert.Equal(t, RatingExcellent, result.Rating)
	assert.Equal(t, "Highly recommended", result.Recommendation)
	assert.Equal(t, 500.0, result.MonthlyCost)
	assert.Equal(t, 5000.0, result.MonthlyIncome)
	assert.Equal(t, 10.0, result.DebtToIncomeRatio)
}

func TestOverallIsWeightedSum(t *testing.T) {
	scorer := NewScorer(nil, nil)
	fin := profile.Financial{CreditScore: 668, MonthlyBudget: 720, LeaseTermMonths: 54, Salary: 52000, EmploymentSubsidies: 4000}

	result := scorer.Score(fin, profile.Preferences{}, costPtr(910))

	c := result.ComponentScores
	w := result.Weights
	expected := c.DebtToIncome*w.DebtToIncome + c.CreditScore*w.CreditScore +
		c.BudgetAlignment*w.BudgetAlignment + c.IncomeStability*w.IncomeStability +
		c.TermAppropriateness*w.TermAppropriateness
	assert.InDelta(t, expected, result.OverallScore, 0.01)
}

func TestScoreEstimatesCostWhenAbsent(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), nil)
	fin := profile.Financial{CreditScore: 640, MonthlyBudget: 600, LeaseTermMonths: 72, Salary: 60000}

	result := scorer.Score(fin, profile.Preferences{Model: "Corolla"}, nil)
	assert.Equal(t, 220.0, result.MonthlyCost)
	assert.Equal(t, 4.4, result.DebtToIncomeRatio)
	assert.Equal(t, 61.0, result.ComponentScores.TermAppropriateness)
	assert.InDelta(t, 80.6, result.OverallScore, 0.001)
	assert.Equal(t, RatingGood, result.Rating)

	withMax := scorer.Score(fin, profile.Preferences{Model: "Corolla", MaxPrice: 45000}, nil)
	assert.Equal(t, 450.0, withMax.MonthlyCost)

	unknown := scorer.Score(fin, profile.Preferences{}, nil)
	assert.Equal(t, 300.0, unknown.MonthlyCost)
}

func TestScoreZeroIncomeAndBudget(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), nil)
	fin := profile.Financial{CreditScore: 550, LeaseTermMonths: 12}

	result := scorer.Score(fin, profile.Preferences{}, costPtr(400))

	assert.Zero(t, result.ComponentScores.DebtToIncome)
	assert.Zero(t, result.ComponentScores.BudgetAlignment)
	assert.Zero(t, result.DebtToIncomeRatio)
	assert.Equal(t, 50.0, result.ComponentScores.CreditScore)
	assert.Equal(t, 60.0, result.ComponentScores.IncomeStability)
	assert.Zero(t, result.ComponentScores.TermAppropriateness)
	assert.InDelta(t, 21.5, result.OverallScore, 0.001)
	assert.Equal(t, RatingVeryPoor, result.Rating)
	assert.False(t, math.IsNaN(result.OverallScore))
}

func TestDebtToIncomeScore(t *testing.T) {
	tests := []struct {
		name     string
		cost     float64
		expected float64
	}{
		{"At 15%", 750, 100},
		{"At 20%", 1000, 90},
		{"At 25%", 1250, 75},
		{"At 30%", 1500, 60},
		{"At 35%", 1750, 40},
		{"At 40%", 2000, 30},
		{"At 60%", 3000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DebtToIncomeScore(tt.cost, 5000), 1e-9)
		})
	}
	assert.Zero(t, DebtToIncomeScore(100, 0))
	assert.Zero(t, DebtToIncomeScore(100, -10))
}

func TestCreditScoreRating(t *testing.T) {
	tests := []struct {
		score    int
		expected float64
	}{
		{850, 100}, {750, 100}, {749, 85}, {700, 85}, {650, 70}, {600, 50},
		{599, 69.6}, {500, 30}, {400, 0}, {300, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, CreditScoreRating(tt.score), 1e-9, "score %d", tt.score)
	}
}

// The sub-600 ramp reaches 69.6 at 599 before the flat 600 band of 50, so the
// rating falls once at 600 and nowhere else.
func TestCreditScoreRatingDropsOnlyAt600(t *testing.T) {
	var drops []int
	prev := CreditScoreRating(0)
	for score := 1; score <= 900; score++ {
		cur := CreditScoreRating(score)
		if cur < prev {
			drops = append(drops, score)
		}
		prev = cur
	}
	assert.Equal(t, []int{600}, drops)
}

func TestBudgetAlignmentScore(t *testing.T) {
	tests := []struct {
		name     string
		cost     float64
		budget   float64
		expected float64
	}{
		{"Well under budget", 400, 600, 100},
		{"At 80% of budget", 480, 600, 100},
		{"At 90% of budget", 540, 600, 90},
		{"Exactly at budget", 600, 600, 80},
		{"40% over budget", 700, 500, 40},
		{"Double the budget", 1200, 500, 0},
		{"No budget", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, BudgetAlignmentScore(tt.cost, tt.budget), 1e-9)
		})
	}
}

func TestIncomeStabilityScore(t *testing.T) {
	assert.Equal(t, 100.0, IncomeStabilityScore(120000, 0))
	assert.Equal(t, 90.0, IncomeStabilityScore(75000, 0))
	assert.Equal(t, 70.0, IncomeStabilityScore(35000, 0))
	assert.Equal(t, 60.0, IncomeStabilityScore(0, 0))
	assert.InDelta(t, 67.5, IncomeStabilityScore(45000, 15000), 1e-9)
	assert.InDelta(t, 50.0, IncomeStabilityScore(0, 10000), 1e-9)
}

func TestTermScore(t *testing.T) {
	tests := []struct {
		months   int
		expected float64
	}{
		{36, 100}, {48, 100}, {24, 90}, {35, 90}, {49, 85}, {60, 85},
		{61, 83}, {100, 5}, {110, 0}, {23, 31}, {12, 0}, {0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TermScore(tt.months), "months %d", tt.months)
	}
}

func TestRatingBands(t *testing.T) {
	tests := []struct {
		score    float64
		expected Rating
	}{
		{95, RatingExcellent}, {90, RatingExcellent}, {89.99, RatingGood}, {75, RatingGood},
		{60, RatingFair}, {40, RatingPoor}, {39.99, RatingVeryPoor}, {0, RatingVeryPoor},
	}

	for _, tt := range tests {
		rating := RatingFor(tt.score)
		assert.Equal(t, tt.expected, rating, "score %.2f", tt.score)
		assert.NotEmpty(t, rating.Recommendation())
	}
	assert.Equal(t, "Strongly not recommended - financial risk too high", RatingVeryPoor.Recommendation())
}

func TestWeightsSumToOne(t *testing.T) {
	w := DefaultWeights
	sum := w.DebtToIncome + w.CreditScore + w.BudgetAlignment + w.IncomeStability + w.TermAppropriateness
	assert.InDelta(t, 1.0, sum, 1e-12)
}
