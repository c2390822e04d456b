// Package recommend enumerates catalog model/trim combinations, scores each against
// the buyer's finances and returns the best matches.
package recommend

import (
	"sort"

	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/loans"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

// Weights are the fixed ranking weights; they sum to 1.
type Weights struct {
	PersonalMatch float64 `json:"personal_match"`
	Reliability   float64 `json:"reliability"`
	Affordability float64 `json:"affordability"`
}

// DefaultWeights is the weighting used by every ranker.
var DefaultWeights = Weights{PersonalMatch: 0.50, Reliability: 0.30, Affordability: 0.20}

// Factors are the raw ratios behind a recommendation.
type Factors struct {
	SalaryMatch float64 `json:"salary_match"`
	BudgetMatch float64 `json:"budget_match"`
	CreditScore int     `json:"credit_score"`
	LeaseTerm   int     `json:"lease_term"`
}

// Recommendation is one scored model/trim.
type Recommendation struct {
	Model                   string  `json:"model"`
	Trim                    string  `json:"trim"`
	Price                   float64 `json:"price"`
	MonthlyPayment          float64 `json:"monthly_payment"`
	APR                     float64 `json:"apr"`
	PersonalPercentageMatch float64 `json:"personal_percentage_match"`
	ReliabilityScore        float64 `json:"reliability_score"`
	OverallScore            float64 `json:"overall_score"`
	FuelEfficiency          float64 `json:"fuel_efficiency"`
	ResidualValue           float64 `json:"residual_value"`
	ResidualPercentage      float64 `json:"residual_percentage"`
	DownPayment             float64 `json:"down_payment"`
	Factors                 Factors `json:"factors"`
}

// UserProfile summarizes the inputs the ranking was computed for.
type UserProfile struct {
	CreditScore   int     `json:"credit_score"`
	MonthlyIncome float64 `json:"monthly_income"`
	MonthlyBudget float64 `json:"monthly_budget"`
	APR           float64 `json:"apr"`
}

// Result is the ranked list.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	TotalOptions    int              `json:"total_options"`
	UserProfile     UserProfile      `json:"user_profile"`
	ScoringWeights  Weights          `json:"scoring_weights"`
}

// Ranker scores catalog vehicles.
type Ranker struct {
	logger  *zap.Logger
	tables  *reference.Tables
	weights Weights
	limit   int
}

// NewRanker creates a ranker. A nil tables pointer uses the built-in tables.
func NewRanker(logger *zap.Logger, tables *reference.Tables) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	return &Ranker{logger: logger, tables: tables, weights: DefaultWeights, limit: constants.MaxRecommendations}
}

// Recommend scores every catalog trim that passes the model and price filters and
// returns the top matches, best first.
func (r *Ranker) Recommend(fin profile.Financial, prefs profile.Preferences, scenario profile.Scenario) Result {
	monthlyIncome := fin.MonthlyIncome()
	apr := APR(fin.CreditScore, scenario.BaseRate())

	var candidates []Recommendation
	for _, vehicle := range r.tables.Vehicles {
		if prefs.Model != "" && vehicle.Model != prefs.Model {
			continue
		}
		for _, trim := range vehicle.Trims {
			price := vehicle.BasePrice * r.tables.PriceTrimMultiplier(trim)
			if prefs.MaxPrice > 0 && price > prefs.MaxPrice {
				continue
			}
			candidates = append(candidates, r.score(vehicle, trim, price, apr, monthlyIncome, fin))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].OverallScore > candidates[j].OverallScore
	})

	total := len(candidates)
	top := candidates
	if len(top) > r.limit {
		top = top[:r.limit]
	}
	if top == nil {
		top = []Recommendation{}
	}

	r.logger.Debug("ranked recommendations",
		zap.String("op", "recommend.Recommend"),
		zap.Int("candidates", total),
		zap.Int("returned", len(top)),
		zap.Float64("apr", apr),
	)

	return Result{
		Recommendations: top,
		TotalOptions:    total,
		UserProfile: UserProfile{
			CreditScore:   fin.CreditScore,
			MonthlyIncome: mathutil.Round(monthlyIncome),
			MonthlyBudget: fin.MonthlyBudget,
			APR:           mathutil.Round(apr * constants.PercentageMultiplier),
		},
		ScoringWeights: r.weights,
	}
}

func (r *Ranker) score(vehicle reference.Vehicle, trim string, price, apr, monthlyIncome float64, fin profile.Financial) Recommendation {
	downPayment := price * constants.DownPaymentFraction
	payment := loans.CalculateMonthlyPayment(price, downPayment, apr, fin.LeaseTermMonths)

	personal := PersonalMatch(payment, fin.MonthlyBudget, monthlyIncome, apr)
	reliability := ReliabilityScore(vehicle.ReliabilityScore, fin.LeaseTermMonths)

	residualShare := vehicle.ResidualValue48
	if fin.LeaseTermMonths <= 36 {
		residualShare = vehicle.ResidualValue36
	}

	affordability := 0.0
	if monthlyIncome > 0 {
		affordability = mathutil.ClampScore(constants.MaxScore - payment/monthlyIncome*constants.PercentageMultiplier)
	}
	overall := mathutil.ClampScore(personal*r.weights.PersonalMatch +
		reliability*r.weights.Reliability +
		affordability*r.weights.Affordability)

	return Recommendation{
		Model:                   vehicle.Model,
		Trim:                    trim,
		Price:                   mathutil.Round(price),
		MonthlyPayment:          mathutil.Round(payment),
		APR:                     mathutil.Round(apr * constants.PercentageMultiplier),
		PersonalPercentageMatch: mathutil.Round(personal),
		ReliabilityScore:        mathutil.Round(reliability),
		OverallScore:            mathutil.Round(overall),
		FuelEfficiency:          vehicle.FuelEfficiency,
		ResidualValue:           mathutil.Round(price * residualShare),
		ResidualPercentage:      mathutil.Round(residualShare * constants.PercentageMultiplier),
		DownPayment:             mathutil.Round(downPayment),
		Factors: Factors{
			SalaryMatch: mathutil.Round(mathutil.CalculatePercentage(payment, monthlyIncome)),
			BudgetMatch: mathutil.Round(mathutil.CalculatePercentage(payment, fin.MonthlyBudget)),
			CreditScore: fin.CreditScore,
			LeaseTerm:   fin.LeaseTermMonths,
		},
	}
}
