// Package testutil provides common fixtures and helpers for testing.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/internal/recommend"
)

// SampleProfile is a mid-market buyer: 720 credit, $60k salary, $600/month budget
// over 48 months.
func SampleProfile() profile.Financial {
	return profile.Financial{
		CreditScore:     720,
		AnnualIncome:    60000,
		MonthlyBudget:   600,
		LeaseTermMonths: 48,
		Salary:          60000,
	}
}

// SampleRequest pairs SampleProfile with the given model and the default scenario.
func SampleRequest(model string) profile.Request {
	return profile.Request{
		Profile:     SampleProfile(),
		Preferences: profile.Preferences{Model: model},
		Scenario:    profile.DefaultScenario(),
	}
}

// MustJSON marshals v or fails the test.
func MustJSON(t testing.TB, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %T: %v", v, err)
	}
	return data
}

// FindRecommendation finds a model/trim in the results slice.
// Returns a pointer to the recommendation if found, nil otherwise.
func FindRecommendation(recs []recommend.Recommendation, model, trim string) *recommend.Recommendation {
	for i := range recs {
		if recs[i].Model == model && recs[i].Trim == trim {
			return &recs[i]
		}
	}
	return nil
}
