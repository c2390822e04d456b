// Package optimizer searches for the highest vehicle price a buyer can carry
// without the monthly cost of ownership exceeding their ceiling.
package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/vehicle-afford/internal/cost"
	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/format"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"github.com/iwvelando/vehicle-afford/pkg/optimization"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

// ErrNoCeiling is returned when the buyer has neither a monthly budget nor income.
var ErrNoCeiling = errors.New("a monthly budget or income is required to size a price")

// Runner performs price searches against the cost calculator.
type Runner struct {
	logger     *zap.Logger
	tables     *reference.Tables
	calculator *cost.Calculator

	minPrice      float64
	maxPrice      float64
	tolerance     float64
	maxIterations int
}

type evaluation struct {
	value       float64
	monthlyCost float64
	ceiling     float64
}

func (e evaluation) feasible() bool {
	return e.monthlyCost <= e.ceiling
}

func (e evaluation) headroom() float64 {
	return e.ceiling - e.monthlyCost
}

// NewRunner constructs a Runner. A nil tables pointer uses the built-in tables.
func NewRunner(logger *zap.Logger, tables *reference.Tables) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	return &Runner{
		logger:        logger,
		tables:        tables,
		calculator:    cost.NewCalculator(logger, tables),
		minPrice:      constants.MinSearchPrice,
		maxPrice:      constants.MaxSearchPrice,
		tolerance:     constants.SearchTolerance,
		maxIterations: constants.MaxSearchIterations,
	}
}

// Ceiling is the monthly cost the buyer should not exceed: the monthly budget when
// set, otherwise the recommended share of monthly income.
func Ceiling(fin profile.Financial) float64 {
	if fin.MonthlyBudget > 0 {
		return fin.MonthlyBudget
	}
	return mathutil.NonNegative(fin.MonthlyIncome() * cost.RecommendedIncomeShare)
}

// MaxAffordablePrice bisects the price range for the highest whole-dollar price whose
// total monthly cost stays within Ceiling.
func (r *Runner) MaxAffordablePrice(fin profile.Financial, prefs profile.Preferences, scenario profile.Scenario) (optimization.Summary, error) {
	if fin.LeaseTermMonths <= 0 {
		return optimization.Summary{}, fmt.Errorf("lease term must be positive, got %d", fin.LeaseTermMonths)
	}
	ceiling := Ceiling(fin)
	if ceiling <= 0 {
		return optimization.Summary{}, ErrNoCeiling
	}
	scenario.ApplyDefaults()

	original := cost.VehiclePrice(prefs, r.tables)
	target := prefs.Model
	if target == "" {
		target = "any"
	}
	summary := optimization.Summary{
		Scope:           "vehicle",
		TargetName:      target,
		Field:           "price",
		Original:        mathutil.Round(original),
		OriginalDisplay: format.Currency(original),
		Ceiling:         mathutil.Round(ceiling),
	}

	lowerEval := r.evaluate(fin, prefs, scenario, r.minPrice, ceiling)
	upperEval := r.evaluate(fin, prefs, scenario, r.maxPrice, ceiling)

	var final evaluation
	iterations := 0
	switch {
	case !lowerEval.feasible():
		final = lowerEval
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"monthly cost %s at the minimum price %s already exceeds the ceiling %s",
			format.Currency(lowerEval.monthlyCost),
			format.Currency(r.minPrice),
			format.Currency(ceiling),
		))
	case upperEval.feasible():
		final = upperEval
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"ceiling %s supports every price up to the search bound %s",
			format.Currency(ceiling),
			format.Currency(r.maxPrice),
		))
	default:
		final = lowerEval
		lower := lowerEval.value
		upper := upperEval.value
		for iterations < r.maxIterations && !mathutil.WithinTolerance(upper, lower, r.tolerance) {
			mid := math.Floor(lower + (upper-lower)/2)
			if mid == lower {
				break
			}
			evalMid := r.evaluate(fin, prefs, scenario, mid, ceiling)
			iterations++
			if evalMid.feasible() {
				final = evalMid
				lower = evalMid.value
			} else {
				upper = evalMid.value
			}
		}
	}

	summary.Value = final.value
	summary.ValueDisplay = format.Currency(final.value)
	summary.MonthlyCost = final.monthlyCost
	summary.Headroom = mathutil.Round(final.headroom())
	summary.Iterations = iterations
	summary.Converged = final.feasible()
	summary.AffordableTrims = r.affordableTrims(prefs.Model, final.value, summary.Feasible())

	r.logger.Info("optimizer searched affordable price",
		zap.String("op", "optimizer.MaxAffordablePrice"),
		zap.String("model", target),
		zap.Float64("original", summary.Original),
		zap.Float64("value", summary.Value),
		zap.Float64("ceiling", summary.Ceiling),
		zap.Float64("monthlyCost", summary.MonthlyCost),
		zap.Float64("headroom", summary.Headroom),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)

	return summary, nil
}

func (r *Runner) evaluate(fin profile.Financial, prefs profile.Preferences, scenario profile.Scenario, price, ceiling float64) evaluation {
	value := clampValue(math.Floor(price), r.minPrice, r.maxPrice)
	prefs.MaxPrice = value
	result := r.calculator.Calculate(fin, prefs, scenario)
	return evaluation{
		value:       value,
		monthlyCost: result.CostBreakdown.Total,
		ceiling:     ceiling,
	}
}

// affordableTrims lists the catalog trims priced at or below limit, restricted to
// model when one is given. Without a model each entry is "Model Trim".
func (r *Runner) affordableTrims(model string, limit float64, feasible bool) []string {
	trims := make([]string, 0)
	if !feasible {
		return trims
	}
	for _, v := range r.tables.Vehicles {
		if model != "" && v.Model != model {
			continue
		}
		for _, trim := range v.Trims {
			if v.BasePrice*r.tables.PriceTrimMultiplier(trim) > limit {
				continue
			}
			if model != "" {
				trims = append(trims, trim)
			} else {
				trims = append(trims, v.Model+" "+trim)
			}
		}
	}
	return trims
}

func clampValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
