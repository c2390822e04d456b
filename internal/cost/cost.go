// Package cost computes the monthly cost of owning a vehicle: financing,
// insurance, fuel, maintenance and taxes, and compares it to income.
package cost

import (
	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/loans"
	"github.com/iwvelando/vehicle-afford/pkg/mathutil"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"go.uber.org/zap"
)

const (
	baseInsurance           = 120.0
	insuranceReferencePrice = 50000.0
	insurancePriceWeight    = 0.3
	suvInsuranceSurcharge   = 1.1

	maintenanceRate = 0.05
	salesTaxRate    = 0.07
	registrationFee = 150.0
	documentFee     = 50.0

	// RecommendedIncomeShare is the share of monthly income a vehicle should not exceed.
	RecommendedIncomeShare = 0.20
)

// Breakdown itemizes the monthly cost.
type Breakdown struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	Insurance      float64 `json:"insurance"`
	Fuel           float64 `json:"fuel"`
	Maintenance    float64 `json:"maintenance"`
	TaxesAndFees   float64 `json:"taxes_and_fees"`
	Total          float64 `json:"total"`
}

// Affordability compares the monthly cost with income and budget.
type Affordability struct {
	MonthlyNetIncome   float64 `json:"monthly_net_income"`
	TotalMonthlyCost   float64 `json:"total_monthly_cost"`
	AffordabilityRatio float64 `json:"affordability_ratio"`
	WithinBudget       bool    `json:"within_budget"`
	RecommendedMax     float64 `json:"recommended_max"`
}

// Assumptions echoes the fixed inputs used.
type Assumptions struct {
	DownPaymentPercentage float64 `json:"down_payment_percentage"`
	MaintenanceRate       float64 `json:"maintenance_rate"`
	AnnualMiles           int     `json:"annual_miles"`
	FuelPrice             float64 `json:"fuel_price"`
}

// Financing totals the loan over its term.
type Financing struct {
	TotalOfPayments float64 `json:"total_of_payments"`
	TotalInterest   float64 `json:"total_interest"`
}

// LeaseComparison is the lease payment for the same vehicle and term.
type LeaseComparison struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	ResidualValue  float64 `json:"residual_value"`
	MoneyFactor    float64 `json:"money_factor"`
}

// Result is the monthly cost estimate.
type Result struct {
	VehiclePrice    float64          `json:"vehicle_price"`
	DownPayment     float64          `json:"down_payment"`
	APR             float64          `json:"apr"`
	TermMonths      int              `json:"term_months"`
	CostBreakdown   Breakdown        `json:"cost_breakdown"`
	Affordability   Affordability    `json:"affordability"`
	Assumptions     Assumptions      `json:"assumptions"`
	Financing       Financing        `json:"financing"`
	LeaseComparison *LeaseComparison `json:"lease_comparison,omitempty"`
}

// Calculator computes ownership costs.
type Calculator struct {
	logger    *zap.Logger
	tables    *reference.Tables
	schedules *loans.AmortizationScheduleGenerator
}

// NewCalculator creates a cost calculator. A nil tables pointer uses the built-in tables.
func NewCalculator(logger *zap.Logger, tables *reference.Tables) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	return &Calculator{
		logger:    logger,
		tables:    tables,
		schedules: loans.NewAmortizationScheduleGenerator(logger),
	}
}

// VehiclePrice is the caller's maximum price when set, otherwise the shared default
// price for the model.
func VehiclePrice(prefs profile.Preferences, tables *reference.Tables) float64 {
	if prefs.MaxPrice > 0 {
		return prefs.MaxPrice
	}
	return tables.DefaultPrice(prefs.Model)
}

// Calculate computes the monthly cost of owning the preferred vehicle.
func (c *Calculator) Calculate(fin profile.Financial, prefs profile.Preferences, scenario profile.Scenario) Result {
	scenario.ApplyDefaults()

	price := VehiclePrice(prefs, c.tables)
	tier := TierFor(fin.CreditScore)
	apr := APR(scenario.BaseRate(), fin.CreditScore)
	downPayment := price * constants.DownPaymentFraction
	term := fin.LeaseTermMonths

	payment := loans.CalculateMonthlyPayment(price, downPayment, apr, term)
	insurance := c.Insurance(price, tier, prefs.Model)
	fuel := c.Fuel(scenario.AnnualMiles, scenario.FuelPricePerGallon, prefs.Model)
	maintenance := price * maintenanceRate / constants.MonthsPerYear
	taxesAndFees := (price*salesTaxRate + registrationFee + documentFee) / constants.MonthsPerYear
	total := payment + insurance + fuel + maintenance + taxesAndFees

	monthlyIncome := fin.MonthlyIncome()
	ratio := mathutil.CalculatePercentage(total, monthlyIncome)

	schedule := c.schedules.GenerateSchedule(price-downPayment, apr, term)
	totalPaid, totalInterest := loans.Totals(schedule)

	c.logger.Debug("calculated monthly cost",
		zap.String("op", "cost.Calculate"),
		zap.String("model", prefs.Model),
		zap.Float64("price", price),
		zap.Float64("apr", apr),
		zap.Float64("total", total),
	)

	return Result{
		VehiclePrice: mathutil.Round(price),
		DownPayment:  mathutil.Round(downPayment),
		APR:          mathutil.Round(apr * constants.PercentageMultiplier),
		TermMonths:   term,
		CostBreakdown: Breakdown{
			MonthlyPayment: mathutil.Round(payment),
			Insurance:      mathutil.Round(insurance),
			Fuel:           mathutil.Round(fuel),
			Maintenance:    mathutil.Round(maintenance),
			TaxesAndFees:   mathutil.Round(taxesAndFees),
			Total:          mathutil.Round(total),
		},
		Affordability: Affordability{
			MonthlyNetIncome:   mathutil.Round(monthlyIncome),
			TotalMonthlyCost:   mathutil.Round(total),
			AffordabilityRatio: mathutil.Round(ratio),
			WithinBudget:       total <= fin.MonthlyBudget,
			RecommendedMax:     mathutil.Round(monthlyIncome * RecommendedIncomeShare),
		},
		Assumptions: Assumptions{
			DownPaymentPercentage: constants.DownPaymentFraction * constants.PercentageMultiplier,
			MaintenanceRate:       maintenanceRate,
			AnnualMiles:           scenario.AnnualMiles,
			FuelPrice:             scenario.FuelPricePerGallon,
		},
		Financing: Financing{
			TotalOfPayments: mathutil.Round(totalPaid),
			TotalInterest:   mathutil.Round(totalInterest),
		},
		LeaseComparison: c.leaseComparison(price, apr, term, prefs.Model),
	}
}

// Insurance is the monthly premium: a base rate scaled by credit tier and price,
// with a surcharge for SUVs.
func (c *Calculator) Insurance(price float64, tier Tier, model string) float64 {
	priceMultiplier := 1 + (price/insuranceReferencePrice-1)*insurancePriceWeight
	premium := baseInsurance * tier.InsuranceMultiplier() * priceMultiplier
	if c.tables.IsSUV(model) {
		premium *= suvInsuranceSurcharge
	}
	return mathutil.NonNegative(premium)
}

// Fuel is the monthly fuel spend for the model's MPG.
func (c *Calculator) Fuel(annualMiles int, fuelPrice float64, model string) float64 {
	mpg := c.tables.FuelEfficiency(model)
	if mpg <= 0 {
		return 0
	}
	monthlyMiles := float64(annualMiles) / constants.MonthsPerYear
	return mathutil.NonNegative(monthlyMiles / mpg * fuelPrice)
}

func (c *Calculator) leaseComparison(price, apr float64, term int, model string) *LeaseComparison {
	vehicle, ok := c.tables.Vehicle(model)
	if !ok || term <= 0 {
		return nil
	}
	residualFraction := vehicle.ResidualValue48
	if term <= 36 {
		residualFraction = vehicle.ResidualValue36
	}
	residual := price * residualFraction
	moneyFactor := loans.MoneyFactor(apr)
	return &LeaseComparison{
		MonthlyPayment: mathutil.Round(loans.CalculateLeasePayment(price, residual, moneyFactor, term)),
		ResidualValue:  mathutil.Round(residual),
		MoneyFactor:    mathutil.RoundTo(moneyFactor, 6),
	}
}
