// Package backtest measures how well the depreciation model tracks a cohort's
// observed values. Cohorts are synthesized from the same depreciation curve with
// seeded noise, so identical inputs always produce identical metrics.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/vehicle-afford/internal/forecast"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/datetime"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

const (
	conditionGood  = "good"
	conditionFair  = "fair"
	fairFromYear   = 3
	defaultHistory = 5
)

// ErrInsufficientHistory is returned when no observation falls on or after the
// forecast start.
var ErrInsufficientHistory = errors.New("insufficient historical data for backtesting")

// Observation is one dated value in a cohort's history.
type Observation struct {
	Year      int     `json:"year"`
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	Mileage   int     `json:"mileage"`
	Condition string  `json:"condition"`
}

// Cohort is a group of identical vehicles bought on the same date.
type Cohort struct {
	Model         string        `json:"model"`
	Trim          string        `json:"trim"`
	PurchaseDate  string        `json:"purchase_date"`
	PurchasePrice float64       `json:"purchase_price"`
	History       []Observation `json:"historical_values"`
}

// Metrics compares forecast and actual values over the backtest window.
type Metrics struct {
	MAE            float64   `json:"mae"`
	MAPE           float64   `json:"mape"`
	RMSE           float64   `json:"rmse"`
	ForecastValues []float64 `json:"forecast_values"`
	ActualValues   []float64 `json:"actual_values"`
	DataPoints     int       `json:"data_points"`
}

// CohortResult is a single cohort and its backtest.
type CohortResult struct {
	Cohort  Cohort  `json:"cohort"`
	Results Metrics `json:"backtest_results"`
}

// Aggregate summarizes errors across cohorts.
type Aggregate struct {
	MeanMAE  float64 `json:"mean_mae"`
	MeanMAPE float64 `json:"mean_mape"`
	StdMAE   float64 `json:"std_mae"`
	StdMAPE  float64 `json:"std_mape"`
}

// BatchResult holds per-model results keyed by model name.
type BatchResult struct {
	Individual map[string]CohortResult `json:"individual_results"`
	Aggregate  Aggregate               `json:"aggregate_metrics"`
}

// Backtester runs cohort backtests against the reference depreciation rates.
type Backtester struct {
	logger *zap.Logger
	tables *reference.Tables
}

// NewBacktester creates a backtester. A nil tables pointer uses the built-in tables.
func NewBacktester(logger *zap.Logger, tables *reference.Tables) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	return &Backtester{logger: logger, tables: tables}
}

// GenerateCohort synthesizes a yearly history ending at asOf. Values follow the
// model's front-loaded depreciation with seeded noise of up to 5% per year.
func (b *Backtester) GenerateCohort(model, trim string, price float64, years int, asOf time.Time) Cohort {
	if years < 0 {
		years = 0
	}
	purchase := datetime.OffsetYears(datetime.Truncate(asOf), -years)
	rate := b.tables.DepreciationRate(model)

	history := make([]Observation, 0, years+1)
	current := price
	mileage := 0
	for year := 0; year <= years; year++ {
		if year > 0 {
			current -= current * forecast.YearRate(rate, year)
			mileage += constants.DefaultAnnualMiles
			current = mathutil.NonNegative(current + forecast.Perturbation(current, year))
		}

		condition := conditionGood
		if year >= fairFromYear {
			condition = conditionFair
		}
		history = append(history, Observation{
			Year:      year,
			Date:      datetime.FormatDate(datetime.OffsetYears(purchase, year)),
			Value:     mathutil.Round(current),
			Mileage:   mileage,
			Condition: condition,
		})
	}

	return Cohort{
		Model:         model,
		Trim:          trim,
		PurchaseDate:  datetime.FormatDate(purchase),
		PurchasePrice: price,
		History:       history,
	}
}

// Run forecasts forward from the first observation on or after start using the
// noiseless depreciation step and scores the forecast against the observations.
func (b *Backtester) Run(cohort Cohort, start time.Time) (Metrics, error) {
	var window []Observation
	for _, obs := range cohort.History {
		date, err := datetime.ParseDate(obs.Date)
		if err != nil {
			return Metrics{}, fmt.Errorf("cohort %s year %d: %w", cohort.Model, obs.Year, err)
		}
		if datetime.OnOrAfter(date, start) {
			window = append(window, obs)
		}
	}
	if len(window) == 0 {
		return Metrics{}, ErrInsufficientHistory
	}

	rate := b.tables.DepreciationRate(cohort.Model)
	forecastValues := make([]float64, len(window))
	actualValues := make([]float64, len(window))

	var absSum, sqSum, pctSum float64
	pctCount := 0
	for i, obs := range window {
		if i == 0 {
			forecastValues[i] = obs.Value
		} else {
			prev := forecastValues[i-1]
			forecastValues[i] = mathutil.Round(prev - prev*forecast.YearRate(rate, obs.Year))
		}
		actualValues[i] = obs.Value

		diff := forecastValues[i] - obs.Value
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if obs.Value > 0 {
			pctSum += math.Abs(diff/obs.Value) * constants.PercentageMultiplier
			pctCount++
		}
	}

	n := float64(len(window))
	return Metrics{
		MAE:            mathutil.Round(absSum / n),
		MAPE:           mathutil.Round(mathutil.SafeDivide(pctSum, float64(pctCount))),
		RMSE:           mathutil.Round(math.Sqrt(sqSum / n)),
		ForecastValues: forecastValues,
		ActualValues:   actualValues,
		DataPoints:     len(window),
	}, nil
}

// RunCohort generates a cohort and backtests it from the midpoint of its history.
func (b *Backtester) RunCohort(model, trim string, price float64, years int, asOf time.Time) (CohortResult, error) {
	cohort := b.GenerateCohort(model, trim, price, years, asOf)

	mid := cohort.History[len(cohort.History)/2]
	start, err := datetime.ParseDate(mid.Date)
	if err != nil {
		return CohortResult{}, fmt.Errorf("cohort %s: %w", model, err)
	}

	metrics, err := b.Run(cohort, start)
	if err != nil {
		return CohortResult{}, fmt.Errorf("cohort %s: %w", model, err)
	}
	return CohortResult{Cohort: cohort, Results: metrics}, nil
}

// Batch backtests each model at the given price. An empty model list covers the
// whole catalog; a non-positive price uses the default backtest price.
func (b *Backtester) Batch(models []string, price float64, asOf time.Time) (BatchResult, error) {
	if len(models) == 0 {
		models = b.tables.Models()
	}
	if price <= 0 {
		price = constants.DefaultBacktestPrice
	}

	individual := make(map[string]CohortResult, len(models))
	maes := make([]float64, 0, len(models))
	mapes := make([]float64, 0, len(models))
	for _, model := range models {
		result, err := b.RunCohort(model, constants.DefaultBacktestTrim, price, defaultHistory, asOf)
		if err != nil {
			return BatchResult{}, err
		}
		individual[model] = result
		maes = append(maes, result.Results.MAE)
		mapes = append(mapes, result.Results.MAPE)
	}

	aggregate := Aggregate{
		MeanMAE:  mathutil.Round(mathutil.Mean(maes)),
		MeanMAPE: mathutil.Round(mathutil.Mean(mapes)),
		StdMAE:   mathutil.Round(mathutil.StdDev(maes)),
		StdMAPE:  mathutil.Round(mathutil.StdDev(mapes)),
	}

	b.logger.Info("batch backtest complete",
		zap.String("op", "backtest.Batch"),
		zap.Int("models", len(models)),
		zap.Float64("mean_mae", aggregate.MeanMAE),
		zap.Float64("mean_mape", aggregate.MeanMAPE),
	)

	return BatchResult{Individual: individual, Aggregate: aggregate}, nil
}
