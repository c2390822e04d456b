package validation

import (
	"errors"
	"fmt"
	"math"
)

const (
	minCreditScore = 300
	maxCreditScore = 850
	maxTermMonths  = 96
)

// Sentinel errors for inputs no calculator can interpret.
var (
	ErrInvalidTerm     = errors.New("lease term must be a positive number of months")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidCurrency = errors.New("amount must be a finite number")
)

// RequestInput is the subset of a calculator request that is checked before any
// computation runs.
type RequestInput struct {
	CreditScore           int
	LeaseTermMonths       int
	Salary                float64
	EmploymentSubsidies   float64
	TransportationSubsidy float64
	MonthlyBudget         float64
	MaxPrice              float64
	InterestRate          float64
	AnnualMiles           int
	Model                 string
	KnownModels           []string
}

// ValidateRequest returns a hard error for inputs that make the request
// meaningless and warnings for inputs that are merely unusual.
func ValidateRequest(in RequestInput) ([]string, error) {
	if in.LeaseTermMonths <= 0 {
		return nil, fmt.Errorf("lease_term_months %d: %w", in.LeaseTermMonths, ErrInvalidTerm)
	}

	amounts := []struct {
		field string
		value float64
	}{
		{"salary", in.Salary},
		{"employment_subsidies", in.EmploymentSubsidies},
		{"transportation_subsidy", in.TransportationSubsidy},
		{"monthly_budget", in.MonthlyBudget},
		{"max_price", in.MaxPrice},
		{"interest_rate", in.InterestRate},
	}
	for _, a := range amounts {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			return nil, fmt.Errorf("%s: %w", a.field, ErrInvalidCurrency)
		}
		if a.value < 0 {
			return nil, fmt.Errorf("%s %.2f: %w", a.field, a.value, ErrNegativeAmount)
		}
	}
	if in.AnnualMiles < 0 {
		return nil, fmt.Errorf("annual_miles %d: %w", in.AnnualMiles, ErrNegativeAmount)
	}

	var warnings []string
	if in.CreditScore < minCreditScore || in.CreditScore > maxCreditScore {
		warnings = append(warnings, fmt.Sprintf("Credit score %d is outside the %d-%d range", in.CreditScore, minCreditScore, maxCreditScore))
	}
	if in.LeaseTermMonths > maxTermMonths {
		warnings = append(warnings, fmt.Sprintf("Term of %d months is longer than any standard auto loan", in.LeaseTermMonths))
	}
	if in.Salary+in.EmploymentSubsidies == 0 {
		warnings = append(warnings, "No income supplied - income-based scores will be zero")
	}
	if in.InterestRate > 1 {
		warnings = append(warnings, fmt.Sprintf("Interest rate %.2f looks like a percentage; rates are fractions (0.05 = 5%%)", in.InterestRate))
	}
	if in.Model != "" && len(in.KnownModels) > 0 && !contains(in.KnownModels, in.Model) {
		warnings = append(warnings, fmt.Sprintf("Model '%s' is not in the catalog - default pricing applies", in.Model))
	}

	return warnings, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
