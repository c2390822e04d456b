// Package netpay estimates take-home pay from gross salary using simplified
// progressive federal brackets, a flat state rate and FICA.
package netpay

import (
	"time"

	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

const (
	// volatilityRate is the share of net income treated as one standard deviation.
	volatilityRate = 0.15

	// confidenceZ95 is the two-sided 95% z-score.
	confidenceZ95 = 1.96
)

// TaxBreakdown itemizes annual taxes.
type TaxBreakdown struct {
	Federal float64 `json:"federal"`
	State   float64 `json:"state"`
	FICA    float64 `json:"fica"`
	Total   float64 `json:"total"`
}

// ConfidenceIntervals bounds annual net income.
type ConfidenceIntervals struct {
	Low95  float64 `json:"95_low"`
	High95 float64 `json:"95_high"`
}

// Result is the net pay estimate.
type Result struct {
	GrossAnnual            float64             `json:"gross_annual"`
	NetAnnual              float64             `json:"net_annual"`
	ConservativeNetAnnual  float64             `json:"conservative_net_annual"`
	MonthlyGross           float64             `json:"monthly_gross"`
	MonthlyNet             float64             `json:"monthly_net"`
	ConservativeMonthlyNet float64             `json:"conservative_monthly_net"`
	Volatility             float64             `json:"volatility"`
	VolatilityPercentage   float64             `json:"volatility_percentage"`
	TaxBreakdown           TaxBreakdown        `json:"tax_breakdown"`
	ConfidenceIntervals    ConfidenceIntervals `json:"confidence_intervals"`
	LastUpdated            string              `json:"last_updated"`
}

// Estimator computes net pay against a fixed tax table.
type Estimator struct {
	logger *zap.Logger
	tables *reference.Tables
}

// NewEstimator creates an estimator. A nil tables pointer uses the built-in tables.
func NewEstimator(logger *zap.Logger, tables *reference.Tables) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	return &Estimator{logger: logger, tables: tables}
}

// Estimate computes the net pay estimate stamped with the current time.
func (e *Estimator) Estimate(salary, subsidies, transportationSubsidy float64) Result {
	return e.EstimateWithFixedTime(salary, subsidies, transportationSubsidy, time.Now())
}

// EstimateWithFixedTime computes the net pay estimate stamped with the given time.
func (e *Estimator) EstimateWithFixedTime(salary, subsidies, transportationSubsidy float64, now time.Time) Result {
	gross := salary + subsidies
	federal := FederalTax(gross, e.tables.Tax.FederalBrackets)
	state := StateTax(gross, e.tables.Tax)
	fica := FICA(gross, e.tables.Tax)
	totalTax := federal + state + fica

	net := gross - totalTax + transportationSubsidy
	volatility := net * volatilityRate
	conservative := mathutil.NonNegative(net - volatility)

	volatilityPct := 0.0
	if net > 0 {
		volatilityPct = volatility / net * constants.PercentageMultiplier
	}

	e.logger.Debug("estimated net pay",
		zap.String("op", "netpay.Estimate"),
		zap.Float64("gross", gross),
		zap.Float64("net", net),
		zap.Float64("totalTax", totalTax),
	)

	return Result{
		GrossAnnual:            mathutil.Round(gross),
		NetAnnual:              mathutil.Round(net),
		ConservativeNetAnnual:  mathutil.Round(conservative),
		MonthlyGross:           mathutil.Round(gross / constants.MonthsPerYear),
		MonthlyNet:             mathutil.Round(net / constants.MonthsPerYear),
		ConservativeMonthlyNet: mathutil.Round(conservative / constants.MonthsPerYear),
		Volatility:             mathutil.Round(volatility),
		VolatilityPercentage:   mathutil.Round(volatilityPct),
		TaxBreakdown: TaxBreakdown{
			Federal: mathutil.Round(federal),
			State:   mathutil.Round(state),
			FICA:    mathutil.Round(fica),
			Total:   mathutil.Round(totalTax),
		},
		ConfidenceIntervals: ConfidenceIntervals{
			Low95:  mathutil.Round(mathutil.NonNegative(net - confidenceZ95*volatility)),
			High95: mathutil.Round(net + confidenceZ95*volatility),
		},
		LastUpdated: now.UTC().Format(time.RFC3339),
	}
}

// FederalTax applies the progressive brackets to gross income. Each bracket taxes
// the slice of income between its floor and the next bracket's floor.
func FederalTax(gross float64, brackets []reference.TaxBracket) float64 {
	if gross <= 0 {
		return 0
	}

	tax := 0.0
	for i, bracket := range brackets {
		if gross <= bracket.Floor {
			break
		}
		ceiling := gross
		if i+1 < len(brackets) && brackets[i+1].Floor < gross {
			ceiling = brackets[i+1].Floor
		}
		tax += (ceiling - bracket.Floor) * bracket.Rate
	}
	return tax
}

// StateTax is a flat rate on gross income.
func StateTax(gross float64, tax reference.Tax) float64 {
	if gross <= 0 {
		return 0
	}
	return gross * tax.StateRate
}

// FICA is Social Security up to the wage base plus uncapped Medicare.
func FICA(gross float64, tax reference.Tax) float64 {
	if gross <= 0 {
		return 0
	}
	socialSecurity := gross
	if socialSecurity > tax.SocialSecurityWageBase {
		socialSecurity = tax.SocialSecurityWageBase
	}
	return socialSecurity*tax.SocialSecurityRate + gross*tax.MedicareRate
}
