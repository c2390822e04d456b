package testutil

import (
	"encoding/json"
	"testing"

	"github.com/iwvelando/vehicle-afford/internal/recommend"
)

func TestFindRecommendation(t *testing.T) {
	recs := []recommend.Recommendation{
		{Model: "Camry", Trim: "LE", OverallScore: 91.65},
		{Model: "Camry", Trim: "SE", OverallScore: 91.92},
		{Model: "Corolla", Trim: "LE", OverallScore: 89.99},
	}

	tests := []struct {
		name          string
		model, trim   string
		expectFound   bool
		expectedScore float64
	}{
		{"Find exact trim", "Camry", "SE", true, 91.92},
		{"Same trim other model", "Corolla", "LE", true, 89.99},
		{"Missing trim", "Camry", "XSE", false, 0},
		{"Missing model", "Prius", "LE", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := FindRecommendation(recs, tt.model, tt.trim)
			if (found != nil) != tt.expectFound {
				t.Fatalf("FindRecommendation(%s, %s) found = %v, expected %v", tt.model, tt.trim, found != nil, tt.expectFound)
			}
			if found != nil && found.OverallScore != tt.expectedScore {
				t.Errorf("OverallScore = %v, expected %v", found.OverallScore, tt.expectedScore)
			}
		})
	}

	if FindRecommendation(nil, "Camry", "LE") != nil {
		t.Error("expected nil for empty slice")
	}
}

func TestSampleRequest(t *testing.T) {
	req := SampleRequest("Prius")
	if req.Preferences.Model != "Prius" {
		t.Errorf("model = %s", req.Preferences.Model)
	}
	if req.Scenario.AnnualMiles != 12000 {
		t.Errorf("scenario defaults not applied: %+v", req.Scenario)
	}

	var decoded map[string]any
	if err := json.Unmarshal(MustJSON(t, req), &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"profile", "preferences", "scenario"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing %s section", key)
		}
	}
}
