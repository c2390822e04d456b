// Package reference holds the immutable lookup tables shared by every calculator:
// the vehicle catalog, trim multipliers, default prices and tax parameters.
package reference

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Vehicle is one catalog model.
type Vehicle struct {
	Model            string   `yaml:"model" json:"model"`
	Trims            []string `yaml:"trims" json:"trims"`
	BasePrice        float64  `yaml:"basePrice" json:"base_price"`
	ReliabilityScore float64  `yaml:"reliabilityScore" json:"reliability_score"`
	FuelEfficiency   float64  `yaml:"fuelEfficiency" json:"fuel_efficiency"`
	ResidualValue36  float64  `yaml:"residualValue36" json:"residual_value_36mo"`
	ResidualValue48  float64  `yaml:"residualValue48" json:"residual_value_48mo"`
	DefaultPrice     float64  `yaml:"defaultPrice" json:"default_price"`
	DepreciationRate float64  `yaml:"depreciationRate" json:"depreciation_rate"`
	SUV              bool     `yaml:"suv" json:"suv"`
	Hybrid           bool     `yaml:"hybrid" json:"hybrid"`
}

// TaxBracket is a marginal federal bracket: income above Floor is taxed at Rate
// until the next bracket's floor.
type TaxBracket struct {
	Floor float64 `yaml:"floor"`
	Rate  float64 `yaml:"rate"`
}

// Tax holds the payroll and income tax parameters.
type Tax struct {
	FederalBrackets        []TaxBracket `yaml:"federalBrackets"`
	StateRate              float64      `yaml:"stateRate"`
	SocialSecurityRate     float64      `yaml:"socialSecurityRate"`
	SocialSecurityWageBase float64      `yaml:"socialSecurityWageBase"`
	MedicareRate           float64      `yaml:"medicareRate"`
}

// Tables is the full set of reference data. Build it once with Default or Load and
// share the pointer; nothing mutates it afterwards.
type Tables struct {
	Vehicles                    []Vehicle          `yaml:"vehicles"`
	PriceTrimMultipliers        map[string]float64 `yaml:"priceTrimMultipliers"`
	DepreciationTrimMultipliers map[string]float64 `yaml:"depreciationTrimMultipliers"`
	DefaultDepreciationTrim     string             `yaml:"defaultDepreciationTrim"`
	FallbackPrice               float64            `yaml:"fallbackPrice"`
	DefaultFuelEfficiency       float64            `yaml:"defaultFuelEfficiency"`
	DefaultDepreciationRate     float64            `yaml:"defaultDepreciationRate"`
	Tax                         Tax                `yaml:"tax"`

	index map[string]int
}

// Default returns the built-in reference tables.
func Default() *Tables {
	t := &Tables{
		Vehicles: []Vehicle{
			{Model: "Camry", Trims: []string{"LE", "SE", "XLE", "XSE"}, BasePrice: 26500, ReliabilityScore: 95, FuelEfficiency: 32, ResidualValue36: 0.60, ResidualValue48: 0.50, DefaultPrice: 28000, DepreciationRate: 0.15},
			{Model: "Corolla", Trims: []string{"L", "LE", "SE", "XLE", "XSE"}, BasePrice: 21500, ReliabilityScore: 98, FuelEfficiency: 33, ResidualValue36: 0.65, ResidualValue48: 0.55, DefaultPrice: 22000, DepreciationRate: 0.12},
			{Model: "RAV4", Trims: []string{"LE", "XLE", "XLE Premium", "Limited", "Adventure"}, BasePrice: 31000, ReliabilityScore: 92, FuelEfficiency: 28, ResidualValue36: 0.58, ResidualValue48: 0.48, DefaultPrice: 32000, DepreciationRate: 0.18},
			{Model: "Highlander", Trims: []string{"L", "LE", "XLE", "Limited", "Platinum"}, BasePrice: 36500, ReliabilityScore: 90, FuelEfficiency: 24, ResidualValue36: 0.55, ResidualValue48: 0.45, DefaultPrice: 38000, DepreciationRate: 0.20, SUV: true},
			{Model: "Prius", Trims: []string{"LE", "XLE", "Limited"}, BasePrice: 27500, ReliabilityScore: 96, FuelEfficiency: 52, ResidualValue36: 0.62, ResidualValue48: 0.52, DefaultPrice: 28000, DepreciationRate: 0.14, Hybrid: true},
			{Model: "4Runner", Trims: []string{"SR5", "TRD Off-Road", "Limited", "TRD Pro"}, BasePrice: 38500, ReliabilityScore: 94, FuelEfficiency: 17, ResidualValue36: 0.70, ResidualValue48: 0.60, DefaultPrice: 40000, DepreciationRate: 0.16, SUV: true},
		},
		PriceTrimMultipliers: map[string]float64{
			"L":            1.0,
			"LE":           1.05,
			"SE":           1.10,
			"XLE":          1.15,
			"XSE":          1.12,
			"Limited":      1.20,
			"Platinum":     1.25,
			"Adventure":    1.18,
			"TRD Off-Road": 1.22,
			"TRD Pro":      1.30,
			"XLE Premium":  1.18,
		},
		DepreciationTrimMultipliers: map[string]float64{
			"base":     0.95,
			"LE":       1.0,
			"SE":       1.02,
			"XLE":      1.05,
			"Limited":  1.08,
			"Platinum": 1.10,
			"TRD":      1.12,
		},
		DefaultDepreciationTrim: "LE",
		FallbackPrice:           30000,
		DefaultFuelEfficiency:   28,
		DefaultDepreciationRate: 0.15,
		Tax: Tax{
			FederalBrackets: []TaxBracket{
				{Floor: 0, Rate: 0.10},
				{Floor: 11000, Rate: 0.12},
				{Floor: 44725, Rate: 0.22},
				{Floor: 95375, Rate: 0.24},
				{Floor: 201050, Rate: 0.32},
				{Floor: 243725, Rate: 0.35},
				{Floor: 609350, Rate: 0.37},
			},
			StateRate:              0.05,
			SocialSecurityRate:     0.062,
			SocialSecurityWageBase: 168600,
			MedicareRate:           0.0145,
		},
	}
	t.buildIndex()
	return t
}

// Load overlays the YAML tables file at path onto the defaults. Sections absent from
// the file keep their default values. An empty path or a missing file yields the
// defaults unchanged.
func Load(path string) (*Tables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("failed to read reference tables: %w", err)
	}

	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse reference tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	t.buildIndex()
	return t, nil
}

// Validate checks the structural invariants the calculators rely on.
func (t *Tables) Validate() error {
	if len(t.Vehicles) == 0 {
		return errors.New("reference tables: catalog is empty")
	}
	seen := make(map[string]struct{}, len(t.Vehicles))
	for _, v := range t.Vehicles {
		if v.Model == "" {
			return errors.New("reference tables: vehicle without model name")
		}
		if _, dup := seen[v.Model]; dup {
			return fmt.Errorf("reference tables: duplicate model %s", v.Model)
		}
		seen[v.Model] = struct{}{}
		if v.BasePrice <= 0 || v.FuelEfficiency <= 0 {
			return fmt.Errorf("reference tables: model %s needs a positive base price and fuel efficiency", v.Model)
		}
	}
	brackets := t.Tax.FederalBrackets
	if len(brackets) == 0 {
		return errors.New("reference tables: no federal tax brackets")
	}
	if !sort.SliceIsSorted(brackets, func(i, j int) bool { return brackets[i].Floor < brackets[j].Floor }) {
		return errors.New("reference tables: federal brackets must be ordered by floor")
	}
	if t.FallbackPrice <= 0 || t.DefaultFuelEfficiency <= 0 {
		return errors.New("reference tables: fallback price and default fuel efficiency must be positive")
	}
	return nil
}

func (t *Tables) buildIndex() {
	t.index = make(map[string]int, len(t.Vehicles))
	for i, v := range t.Vehicles {
		t.index[v.Model] = i
	}
}

// Vehicle looks up a catalog entry by model name.
func (t *Tables) Vehicle(model string) (Vehicle, bool) {
	i, ok := t.index[model]
	if !ok {
		return Vehicle{}, false
	}
	return t.Vehicles[i], true
}

// Models lists the catalog model names in catalog order.
func (t *Tables) Models() []string {
	names := make([]string, 0, len(t.Vehicles))
	for _, v := range t.Vehicles {
		names = append(names, v.Model)
	}
	return names
}

// DefaultPrice is the shared price lookup used when a caller names no maximum price.
func (t *Tables) DefaultPrice(model string) float64 {
	if v, ok := t.Vehicle(model); ok && v.DefaultPrice > 0 {
		return v.DefaultPrice
	}
	return t.FallbackPrice
}

// FuelEfficiency returns the combined MPG for model.
func (t *Tables) FuelEfficiency(model string) float64 {
	if v, ok := t.Vehicle(model); ok {
		return v.FuelEfficiency
	}
	return t.DefaultFuelEfficiency
}

// DepreciationRate returns the annual base depreciation rate for model.
func (t *Tables) DepreciationRate(model string) float64 {
	if v, ok := t.Vehicle(model); ok && v.DepreciationRate > 0 {
		return v.DepreciationRate
	}
	return t.DefaultDepreciationRate
}

// IsSUV reports whether model carries the SUV insurance surcharge.
func (t *Tables) IsSUV(model string) bool {
	v, ok := t.Vehicle(model)
	return ok && v.SUV
}

// IsHybrid reports whether model responds inversely to fuel prices.
func (t *Tables) IsHybrid(model string) bool {
	v, ok := t.Vehicle(model)
	return ok && v.Hybrid
}

// PriceTrimMultiplier scales a base price for trim; unknown trims are priced at base.
func (t *Tables) PriceTrimMultiplier(trim string) float64 {
	if m, ok := t.PriceTrimMultipliers[trim]; ok {
		return m
	}
	return 1.0
}

// DepreciationTrimMultiplier returns the residual-strength multiplier for trim.
// An empty trim uses the default trim.
func (t *Tables) DepreciationTrimMultiplier(trim string) float64 {
	if trim == "" {
		trim = t.DefaultDepreciationTrim
	}
	if m, ok := t.DepreciationTrimMultipliers[trim]; ok && m > 0 {
		return m
	}
	return 1.0
}
