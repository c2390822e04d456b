// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single price search.
type Summary struct {
	Scope           string   `json:"scope"`
	TargetName      string   `json:"target_name"`
	Field           string   `json:"field"`
	Original        float64  `json:"original"`
	Value           float64  `json:"value"`
	Ceiling         float64  `json:"ceiling"`
	MonthlyCost     float64  `json:"monthly_cost"`
	Headroom        float64  `json:"headroom"`
	Iterations      int      `json:"iterations"`
	Converged       bool     `json:"converged"`
	AffordableTrims []string `json:"affordable_trims"`
	Notes           []string `json:"notes,omitempty"`
	OriginalDisplay string   `json:"original_display,omitempty"`
	ValueDisplay    string   `json:"value_display,omitempty"`
}

// Feasible reports whether the found value keeps the monthly cost within the ceiling.
func (s Summary) Feasible() bool {
	return s.Converged && s.Headroom >= 0
}
