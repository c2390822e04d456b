// Package profile defines the caller-supplied inputs shared by every calculator:
// the financial profile, vehicle preferences and scenario assumptions.
package profile

import (
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/validation"
)

// Financial describes the buyer.
type Financial struct {
	CreditScore           int     `json:"credit_score" yaml:"credit_score"`
	AnnualIncome          float64 `json:"annual_income" yaml:"annual_income"`
	MonthlyBudget         float64 `json:"monthly_budget" yaml:"monthly_budget"`
	LeaseTermMonths       int     `json:"lease_term_months" yaml:"lease_term_months"`
	Salary                float64 `json:"salary" yaml:"salary"`
	EmploymentSubsidies   float64 `json:"employment_subsidies" yaml:"employment_subsidies"`
	TransportationSubsidy float64 `json:"transportation_subsidy" yaml:"transportation_subsidy"`
}

// MonthlyIncome is salary plus employment subsidies spread over twelve months.
func (f Financial) MonthlyIncome() float64 {
	return (f.Salary + f.EmploymentSubsidies) / constants.MonthsPerYear
}

// Preferences narrows the vehicle search. Zero values mean unset.
type Preferences struct {
	Make              string  `json:"make,omitempty" yaml:"make,omitempty"`
	Model             string  `json:"model,omitempty" yaml:"model,omitempty"`
	Trim              string  `json:"trim,omitempty" yaml:"trim,omitempty"`
	MaxPrice          float64 `json:"max_price,omitempty" yaml:"max_price,omitempty"`
	PreferredFuelType string  `json:"preferred_fuel_type,omitempty" yaml:"preferred_fuel_type,omitempty"`
}

// ApplyDefaults fills the documented default make.
func (p *Preferences) ApplyDefaults() {
	if p.Make == "" {
		p.Make = constants.DefaultMake
	}
}

// Scenario carries the macro assumptions. Zero values mean unset.
type Scenario struct {
	AnnualMiles            int     `json:"annual_miles" yaml:"annual_miles"`
	FuelPricePerGallon     float64 `json:"fuel_price_per_gallon" yaml:"fuel_price_per_gallon"`
	InternshipLengthMonths int     `json:"internship_length_months,omitempty" yaml:"internship_length_months,omitempty"`
	InterestRate           float64 `json:"interest_rate,omitempty" yaml:"interest_rate,omitempty"`
}

// DefaultScenario returns the scenario used when a caller supplies none.
func DefaultScenario() Scenario {
	s := Scenario{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills unset mileage and fuel price.
func (s *Scenario) ApplyDefaults() {
	if s.AnnualMiles == 0 {
		s.AnnualMiles = constants.DefaultAnnualMiles
	}
	if s.FuelPricePerGallon == 0 {
		s.FuelPricePerGallon = constants.DefaultFuelPrice
	}
}

// BaseRate is the scenario's APR override, or the market base rate when unset.
func (s Scenario) BaseRate() float64 {
	if s.InterestRate > 0 {
		return s.InterestRate
	}
	return constants.BaseInterestRate
}

// Request bundles the three inputs the multi-part calculators take.
type Request struct {
	Profile     Financial   `json:"profile" yaml:"profile"`
	Preferences Preferences `json:"preferences" yaml:"preferences"`
	Scenario    Scenario    `json:"scenario" yaml:"scenario"`
}

// Normalize applies defaults to every section.
func (r *Request) Normalize() {
	r.Preferences.ApplyDefaults()
	r.Scenario.ApplyDefaults()
}

// Validate checks the request against the catalog, returning warnings for unusual
// inputs and an error for unusable ones.
func (r Request) Validate(knownModels []string) ([]string, error) {
	return validation.ValidateRequest(validation.RequestInput{
		CreditScore:           r.Profile.CreditScore,
		LeaseTermMonths:       r.Profile.LeaseTermMonths,
		Salary:                r.Profile.Salary,
		EmploymentSubsidies:   r.Profile.EmploymentSubsidies,
		TransportationSubsidy: r.Profile.TransportationSubsidy,
		MonthlyBudget:         r.Profile.MonthlyBudget,
		MaxPrice:              r.Preferences.MaxPrice,
		InterestRate:          r.Scenario.InterestRate,
		AnnualMiles:           r.Scenario.AnnualMiles,
		Model:                 r.Preferences.Model,
		KnownModels:           knownModels,
	})
}
