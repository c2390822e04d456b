package recommend

import "github.com/iwvelando/vehicle-afford/pkg/mathutil"

const (
	maxBudgetPoints = 50.0
	maxIncomePoints = 30.0
	maxAPRPoints    = 20.0

	idealIncomeShareLow  = 0.15
	idealIncomeShareHigh = 0.20
)

// APR is the credit-adjusted rate used for ranking.
func APR(creditScore int, baseRate float64) float64 {
	switch {
	case creditScore >= 750:
		return baseRate - 0.02
	case creditScore >= 700:
		return baseRate
	case creditScore >= 650:
		return baseRate + 0.02
	default:
		return baseRate + 0.05
	}
}

// PersonalMatch scores 0-100 from budget fit (50), income share (30) and APR (20).
func PersonalMatch(payment, monthlyBudget, monthlyIncome, apr float64) float64 {
	return BudgetMatch(payment, monthlyBudget) + IncomeMatch(payment, monthlyIncome) + APRMatch(apr)
}

// BudgetMatch is full marks within budget, falling by the excess share of budget.
func BudgetMatch(payment, monthlyBudget float64) float64 {
	if payment <= monthlyBudget {
		return maxBudgetPoints
	}
	if monthlyBudget <= 0 {
		return 0
	}
	excess := payment - monthlyBudget
	return mathutil.NonNegative(maxBudgetPoints - excess/monthlyBudget*maxBudgetPoints)
}

// IncomeMatch peaks when the payment is 15-20% of income. No income counts as a
// payment equal to all of it.
func IncomeMatch(payment, monthlyIncome float64) float64 {
	ratio := 1.0
	if monthlyIncome > 0 {
		ratio = payment / monthlyIncome
	}

	switch {
	case ratio >= idealIncomeShareLow && ratio <= idealIncomeShareHigh:
		return maxIncomePoints
	case ratio < idealIncomeShareLow:
		return maxIncomePoints * ratio / idealIncomeShareLow
	default:
		return mathutil.NonNegative(maxIncomePoints - (ratio-idealIncomeShareHigh)*300)
	}
}

// APRMatch rewards low rates.
func APRMatch(apr float64) float64 {
	switch {
	case apr <= 0.03:
		return maxAPRPoints
	case apr <= 0.05:
		return 15
	case apr <= 0.07:
		return 10
	default:
		return mathutil.NonNegative(10 - (apr-0.07)*100)
	}
}

// ReliabilityScore scales the catalog reliability up for longer terms, capped at 100.
func ReliabilityScore(base float64, termMonths int) float64 {
	multiplier := 1.10
	switch {
	case termMonths <= 36:
		multiplier = 1.0
	case termMonths <= 48:
		multiplier = 1.05
	}
	return mathutil.ClampScore(base * multiplier)
}
