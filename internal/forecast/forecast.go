// Package forecast projects a vehicle's value over a multi-year horizon using a
// front-loaded depreciation curve, macroeconomic adjustments and widening
// confidence bands.
package forecast

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/iwvelando/vehicle-afford/internal/cost"
	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

const (
	earlyYears           = 3
	earlyYearMultiplier  = 1.2
	laterYearMultiplier  = 0.8
	mileageSensitivity   = 0.1
	volatilityShare      = 0.05
	interestSensitivity  = -0.1
	fuelSensitivity      = -0.05
	hybridFuelBenefit    = 0.03
	band68Share          = 0.15
	band95Share          = 0.30
	uncertaintyPerYear   = 0.1
	confidenceDecayYears = 10.0
)

// Bands are the confidence intervals around an adjusted value.
type Bands struct {
	Low68  float64 `json:"68_low"`
	High68 float64 `json:"68_high"`
	Low95  float64 `json:"95_low"`
	High95 float64 `json:"95_high"`
}

// Point is one year of the forecast curve.
type Point struct {
	Year                   int     `json:"year"`
	Value                  float64 `json:"value"`
	Depreciation           float64 `json:"depreciation"`
	DepreciationPercentage float64 `json:"depreciation_percentage"`
	AdjustedValue          float64 `json:"adjusted_value"`
	ConfidenceIntervals    Bands   `json:"confidence_intervals"`
}

// Scenarios are per-year value paths: the 68% high, the adjusted value and the 68% low.
type Scenarios struct {
	Optimistic  []float64 `json:"optimistic"`
	Base        []float64 `json:"base"`
	Pessimistic []float64 `json:"pessimistic"`
}

// Factors echoes the inputs that shaped the forecast.
type Factors struct {
	Model        string  `json:"model"`
	Trim         string  `json:"trim"`
	AnnualMiles  int     `json:"annual_miles"`
	InterestRate float64 `json:"interest_rate"`
	FuelPrice    float64 `json:"fuel_price"`
}

// Result is the value forecast.
type Result struct {
	InitialValue                float64   `json:"initial_value"`
	FinalValue                  float64   `json:"final_value"`
	TotalDepreciation           float64   `json:"total_depreciation"`
	TotalDepreciationPercentage float64   `json:"total_depreciation_percentage"`
	ForecastCurve               []Point   `json:"forecast_curve"`
	Scenarios                   Scenarios `json:"scenarios"`
	Factors                     Factors   `json:"factors"`
	LastUpdated                 string    `json:"last_updated"`
	ConfidenceScore             float64   `json:"confidence_score"`
}

// Forecaster projects vehicle values.
type Forecaster struct {
	logger *zap.Logger
	tables *reference.Tables
}

// NewForecaster creates a forecaster. A nil tables pointer uses the built-in tables.
func NewForecaster(logger *zap.Logger, tables *reference.Tables) *Forecaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	return &Forecaster{logger: logger, tables: tables}
}

// Forecast projects the value of the preferred vehicle yearsAhead years out.
func (f *Forecaster) Forecast(prefs profile.Preferences, scenario profile.Scenario, yearsAhead int) Result {
	return f.ForecastWithFixedTime(prefs, scenario, yearsAhead, time.Now())
}

// ForecastWithFixedTime is Forecast stamped with the given time.
func (f *Forecaster) ForecastWithFixedTime(prefs profile.Preferences, scenario profile.Scenario, yearsAhead int, now time.Time) Result {
	scenario.ApplyDefaults()
	if yearsAhead < 0 {
		yearsAhead = 0
	}

	initial := cost.VehiclePrice(prefs, f.tables)
	interestRate := scenario.BaseRate()

	curve := f.DepreciationCurve(initial, yearsAhead, prefs.Model, prefs.Trim, scenario.AnnualMiles)

	scenarios := Scenarios{
		Optimistic:  make([]float64, 0, len(curve)),
		Base:        make([]float64, 0, len(curve)),
		Pessimistic: make([]float64, 0, len(curve)),
	}
	for i := range curve {
		adjusted := f.ApplyMacroFactors(curve[i].Value, interestRate, scenario.FuelPricePerGallon, prefs.Model)
		curve[i].AdjustedValue = mathutil.Round(adjusted)
		curve[i].ConfidenceIntervals = ConfidenceBands(adjusted, curve[i].Year)

		scenarios.Optimistic = append(scenarios.Optimistic, curve[i].ConfidenceIntervals.High68)
		scenarios.Base = append(scenarios.Base, curve[i].AdjustedValue)
		scenarios.Pessimistic = append(scenarios.Pessimistic, curve[i].ConfidenceIntervals.Low68)
	}

	final := curve[len(curve)-1].AdjustedValue
	totalDepreciation := initial - final

	f.logger.Debug(fmt.Sprintf("forecast %d years for %s: %.2f -> %.2f", yearsAhead, prefs.Model, initial, final),
		zap.String("op", "forecast.Forecast"),
	)

	return Result{
		InitialValue:                mathutil.Round(initial),
		FinalValue:                  mathutil.Round(final),
		TotalDepreciation:           mathutil.Round(totalDepreciation),
		TotalDepreciationPercentage: mathutil.Round(mathutil.CalculatePercentage(totalDepreciation, initial)),
		ForecastCurve:               curve,
		Scenarios:                   scenarios,
		Factors: Factors{
			Model:        prefs.Model,
			Trim:         prefs.Trim,
			AnnualMiles:  scenario.AnnualMiles,
			InterestRate: interestRate,
			FuelPrice:    scenario.FuelPricePerGallon,
		},
		LastUpdated:     now.UTC().Format(time.RFC3339),
		ConfidenceScore: mathutil.Round(mathutil.NonNegative(constants.MaxScore - float64(yearsAhead)*confidenceDecayYears)),
	}
}

// AnnualRate is the model's depreciation rate adjusted for trim strength and mileage.
func (f *Forecaster) AnnualRate(model, trim string, annualMiles int) float64 {
	rate := f.tables.DepreciationRate(model) / f.tables.DepreciationTrimMultiplier(trim)
	mileageFactor := 1 + float64(annualMiles-constants.DefaultAnnualMiles)/constants.DefaultAnnualMiles*mileageSensitivity
	return rate * mileageFactor
}

// YearRate is the share of current value lost in the given year: front-loaded over
// the first three years.
func YearRate(annualRate float64, year int) float64 {
	if year <= 0 {
		return 0
	}
	if year <= earlyYears {
		return annualRate * earlyYearMultiplier
	}
	return annualRate * laterYearMultiplier
}

// Perturbation is the deterministic noise applied to a year's value: up to ±5% of
// value, drawn from a generator seeded by the year. Year 0 is never perturbed.
func Perturbation(value float64, year int) float64 {
	if year <= 0 {
		return 0
	}
	rng := rand.New(rand.NewSource(int64(year)))
	z := mathutil.Clamp(rng.NormFloat64(), -1, 1)
	return value * volatilityShare * z
}

// DepreciationCurve produces years+1 points starting at the initial value.
func (f *Forecaster) DepreciationCurve(initial float64, years int, model, trim string, annualMiles int) []Point {
	rate := f.AnnualRate(model, trim, annualMiles)

	curve := make([]Point, 0, years+1)
	current := initial
	for year := 0; year <= years; year++ {
		depreciation := current * YearRate(rate, year)
		current -= depreciation

		value := mathutil.NonNegative(current + Perturbation(current, year))
		curve = append(curve, Point{
			Year:                   year,
			Value:                  mathutil.Round(value),
			Depreciation:           mathutil.Round(depreciation),
			DepreciationPercentage: mathutil.Round(mathutil.CalculatePercentage(depreciation, initial)),
		})
	}
	return curve
}

// ApplyMacroFactors scales a value for the interest rate and fuel price environment.
// Higher rates lower values; higher fuel prices lower conventional values and lift
// hybrid values.
func (f *Forecaster) ApplyMacroFactors(value, interestRate, fuelPrice float64, model string) float64 {
	adjusted := value * (1 + (interestRate-constants.BaseInterestRate)*interestSensitivity)

	fuelDeviation := (fuelPrice - constants.DefaultFuelPrice) / constants.DefaultFuelPrice
	if f.tables.IsHybrid(model) {
		adjusted *= 1 + fuelDeviation*hybridFuelBenefit
	} else {
		adjusted *= 1 + fuelDeviation*fuelSensitivity
	}
	return mathutil.NonNegative(adjusted)
}

// ConfidenceBands widens by 10% per year of horizon.
func ConfidenceBands(value float64, year int) Bands {
	uncertainty := 1 + float64(year)*uncertaintyPerYear
	half68 := value * band68Share * uncertainty
	half95 := value * band95Share * uncertainty
	return Bands{
		Low68:  mathutil.Round(mathutil.NonNegative(value - half68)),
		High68: mathutil.Round(value + half68),
		Low95:  mathutil.Round(mathutil.NonNegative(value - half95)),
		High95: mathutil.Round(value + half95),
	}
}
