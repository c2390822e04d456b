// Package affordability combines debt-to-income, credit, budget, income stability
// and term sub-scores into a single 0-100 affordability index.
package affordability

import (
	"github.com/iwvelando/vehicle-afford/internal/cost"
	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

// estimatedCostShare is the monthly cost assumed per dollar of price when the caller
// supplies no computed cost.
const estimatedCostShare = 0.01

// Weights are the fixed component weights; they sum to 1.
type Weights struct {
	DebtToIncome        float64 `json:"debt_to_income"`
	CreditScore         float64 `json:"credit_score"`
	BudgetAlignment     float64 `json:"budget_alignment"`
	IncomeStability     float64 `json:"income_stability"`
	TermAppropriateness float64 `json:"term_appropriateness"`
}

// DefaultWeights is the weighting used by every scorer.
var DefaultWeights = Weights{
	DebtToIncome:        0.30,
	CreditScore:         0.25,
	BudgetAlignment:     0.20,
	IncomeStability:     0.15,
	TermAppropriateness: 0.10,
}

// ComponentScores holds each 0-100 sub-score.
type ComponentScores struct {
	DebtToIncome        float64 `json:"debt_to_income"`
	CreditScore         float64 `json:"credit_score"`
	BudgetAlignment     float64 `json:"budget_alignment"`
	IncomeStability     float64 `json:"income_stability"`
	TermAppropriateness float64 `json:"term_appropriateness"`
}

// Result is the affordability index.
type Result struct {
	OverallScore      float64         `json:"overall_score"`
	Rating            Rating          `json:"rating"`
	Recommendation    string          `json:"recommendation"`
	ComponentScores   ComponentScores `json:"component_scores"`
	Weights           Weights         `json:"weights"`
	MonthlyCost       float64         `json:"monthly_cost"`
	MonthlyIncome     float64         `json:"monthly_income"`
	DebtToIncomeRatio float64         `json:"debt_to_income_ratio"`
}

// Scorer computes affordability indexes.
type Scorer struct {
	logger  *zap.Logger
	tables  *reference.Tables
	weights Weights
}

// NewScorer creates a scorer. A nil tables pointer uses the built-in tables.
func NewScorer(logger *zap.Logger, tables *reference.Tables) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	return &Scorer{logger: logger, tables: tables, weights: DefaultWeights}
}

// Score computes the affordability index. monthlyCost is the authoritative monthly
// cost from the cost calculator; when nil a rough estimate of 1% of the vehicle price
// is used instead.
func (s *Scorer) Score(fin profile.Financial, prefs profile.Preferences, monthlyCost *float64) Result {
	monthlyIncome := fin.MonthlyIncome()

	var costValue float64
	if monthlyCost != nil {
		costValue = *monthlyCost
	} else {
		costValue = cost.VehiclePrice(prefs, s.tables) * estimatedCostShare
		s.logger.Debug("estimating monthly cost from vehicle price",
			zap.String("op", "affordability.Score"),
			zap.Float64("monthlyCost", costValue),
		)
	}

	components := ComponentScores{
		DebtToIncome:        DebtToIncomeScore(costValue, monthlyIncome),
		CreditScore:         CreditScoreRating(fin.CreditScore),
		BudgetAlignment:     BudgetAlignmentScore(costValue, fin.MonthlyBudget),
		IncomeStability:     IncomeStabilityScore(fin.Salary, fin.EmploymentSubsidies),
		TermAppropriateness: TermScore(fin.LeaseTermMonths),
	}

	overall := mathutil.ClampScore(components.DebtToIncome*s.weights.DebtToIncome +
		components.CreditScore*s.weights.CreditScore +
		components.BudgetAlignment*s.weights.BudgetAlignment +
		components.IncomeStability*s.weights.IncomeStability +
		components.TermAppropriateness*s.weights.TermAppropriateness)

	rating := RatingFor(overall)

	s.logger.Debug("scored affordability",
		zap.String("op", "affordability.Score"),
		zap.Float64("overall", overall),
		zap.String("rating", string(rating)),
	)

	return Result{
		OverallScore:   mathutil.Round(overall),
		Rating:         rating,
		Recommendation: rating.Recommendation(),
		ComponentScores: ComponentScores{
			DebtToIncome:        mathutil.Round(components.DebtToIncome),
			CreditScore:         mathutil.Round(components.CreditScore),
			BudgetAlignment:     mathutil.Round(components.BudgetAlignment),
			IncomeStability:     mathutil.Round(components.IncomeStability),
			TermAppropriateness: mathutil.Round(components.TermAppropriateness),
		},
		Weights:           s.weights,
		MonthlyCost:       mathutil.Round(costValue),
		MonthlyIncome:     mathutil.Round(monthlyIncome),
		DebtToIncomeRatio: mathutil.Round(mathutil.CalculatePercentage(costValue, monthlyIncome)),
	}
}

// DebtToIncomeScore steps down as the cost share of income rises, then falls
// linearly past 35%.
func DebtToIncomeScore(monthlyCost, monthlyIncome float64) float64 {
	if monthlyIncome <= 0 {
		return 0
	}

	ratio := monthlyCost / monthlyIncome
	switch {
	case ratio <= 0.15:
		return 100
	case ratio <= 0.20:
		return 90
	case ratio <= 0.25:
		return 75
	case ratio <= 0.30:
		return 60
	case ratio <= 0.35:
		return 40
	default:
		return mathutil.NonNegative(40 - (ratio-0.35)*200)
	}
}

// CreditScoreRating maps a raw credit score onto 0-100.
func CreditScoreRating(creditScore int) float64 {
	switch {
	case creditScore >= 750:
		return 100
	case creditScore >= 700:
		return 85
	case creditScore >= 650:
		return 70
	case creditScore >= 600:
		return 50
	default:
		return mathutil.ClampScore(30 + float64(creditScore-500)*0.4)
	}
}

// BudgetAlignmentScore is 100 when the cost uses at most 80% of the budget, 80-100
// inside the last 20%, and drops by the excess percentage over budget.
func BudgetAlignmentScore(monthlyCost, monthlyBudget float64) float64 {
	if monthlyBudget <= 0 {
		return 0
	}

	if monthlyCost <= monthlyBudget {
		if monthlyCost <= monthlyBudget*0.8 {
			return 100
		}
		headroom := (monthlyBudget - monthlyCost) / (monthlyBudget * 0.2)
		return 80 + headroom*20
	}

	excess := (monthlyCost - monthlyBudget) / monthlyBudget
	return mathutil.NonNegative(80 - excess*100)
}

// IncomeStabilityScore rewards higher salaries and penalizes reliance on subsidies
// by up to 10 points.
func IncomeStabilityScore(salary, subsidies float64) float64 {
	var score float64
	switch {
	case salary >= 100000:
		score = 100
	case salary >= 75000:
		score = 90
	case salary >= 50000:
		score = 80
	case salary >= 35000:
		score = 70
	default:
		score = 60
	}

	if subsidies > 0 {
		score -= subsidies / (salary + subsidies) * 10
	}
	return mathutil.ClampScore(score)
}

// TermScore favors 36-48 month terms.
func TermScore(months int) float64 {
	switch {
	case months >= 36 && months <= 48:
		return 100
	case months >= 24 && months < 36:
		return 90
	case months > 48 && months <= 60:
		return 85
	case months > 60:
		return mathutil.NonNegative(85 - float64(months-60)*2)
	default:
		return mathutil.NonNegative(70 - float64(36-months)*3)
	}
}
