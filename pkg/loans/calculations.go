// Package loans provides common loan processing utilities.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given payment.
type Payment struct {
	Month              int
	Payment            float64
	Principal          float64
	Interest           float64
	RemainingPrincipal float64
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard
// amortization formula. annualRate is a fraction (0.05 for 5%).
func CalculateMonthlyPayment(principal, downPayment, annualRate float64, termMonths int) float64 {
	financed := principal - downPayment
	if financed <= 0 || termMonths <= 0 {
		return 0
	}

	periodicRate := annualRate / constants.MonthsPerYear
	if periodicRate == 0 {
		// For zero interest, simply divide the principal by term
		return financed / float64(termMonths)
	}

	power := math.Pow(1.00+periodicRate, float64(termMonths))
	return financed * periodicRate * power / (power - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualRate float64) float64 {
	return remainingPrincipal * annualRate / constants.MonthsPerYear
}

// CalculateLeasePayment returns the monthly lease payment: the depreciation charge
// spread over the term plus the finance charge on price and residual.
func CalculateLeasePayment(price, residual, moneyFactor float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	depreciation := (price - residual) / float64(termMonths)
	finance := (price + residual) * moneyFactor
	return mathutil.NonNegative(depreciation + finance)
}

// MoneyFactor converts an APR fraction into the equivalent lease money factor.
func MoneyFactor(annualRate float64) float64 {
	return annualRate / constants.LeaseMoneyFactorDivisor
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates the month-by-month amortization schedule for a fixed-rate loan.
func (g *AmortizationScheduleGenerator) GenerateSchedule(principal, annualRate float64, termMonths int) []Payment {
	if principal <= 0 || termMonths <= 0 {
		return nil
	}

	monthlyPayment := CalculateMonthlyPayment(principal, 0, annualRate, termMonths)
	schedule := make([]Payment, 0, termMonths)
	remaining := principal

	for month := 1; month <= termMonths; month++ {
		var current Payment
		current.Month = month
		current.Interest = CalculateInterestPayment(remaining, annualRate)
		current.Principal = monthlyPayment - current.Interest
		current.Payment = monthlyPayment

		if month == termMonths || mathutil.Round(remaining-current.Principal) <= 0 {
			// We will get machine error otherwise so just settle the balance.
			current.Principal = remaining
			current.Payment = remaining + current.Interest
			current.RemainingPrincipal = 0
			schedule = append(schedule, current)
			break
		}

		current.RemainingPrincipal = remaining - current.Principal
		remaining = current.RemainingPrincipal
		schedule = append(schedule, current)
	}

	g.logger.Debug(fmt.Sprintf("generated %d payment amortization schedule for %.2f", len(schedule), principal),
		zap.String("op", "loans.GenerateSchedule"),
	)
	return schedule
}

// Totals sums payments and interest across a schedule.
func Totals(schedule []Payment) (totalPaid, totalInterest float64) {
	for _, p := range schedule {
		totalPaid += p.Payment
		totalInterest += p.Interest
	}
	return totalPaid, totalInterest
}
