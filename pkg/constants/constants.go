// Package constants provides shared constants for the vehicle-afford application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxScore is the upper bound of every 0-100 score
	MaxScore = 100.0
)

// Financing defaults shared by the calculators.
const (
	// BaseInterestRate is the APR used when a scenario supplies no override
	BaseInterestRate = 0.05

	// DownPaymentFraction is the share of the price paid up front
	DownPaymentFraction = 0.10

	// LeaseMoneyFactorDivisor converts an APR fraction into a lease money factor
	LeaseMoneyFactorDivisor = 24.0
)

// Scenario defaults
const (
	// DefaultMake is the only make carried in the catalog
	DefaultMake = "Toyota"

	// DefaultAnnualMiles is the assumed yearly mileage
	DefaultAnnualMiles = 12000

	// DefaultFuelPrice is the assumed price per gallon
	DefaultFuelPrice = 3.50

	// DefaultForecastYears is the forecast horizon when none is requested
	DefaultForecastYears = 5

	// MaxRecommendations caps the ranked recommendation list
	MaxRecommendations = 10
)

// Backtest constants
const (
	// DateLayout is the date format used for cohort observations
	DateLayout = "2006-01-02"

	// DaysPerYear is the spacing between synthetic cohort observations
	DaysPerYear = 365

	// DefaultBacktestPrice is the purchase price used for batch backtests
	DefaultBacktestPrice = 30000.0

	// DefaultBacktestTrim is the trim used for batch backtests
	DefaultBacktestTrim = "LE"
)

// Price search constants
const (
	// MinSearchPrice is the lowest price the affordable price search considers
	MinSearchPrice = 5000.0

	// MaxSearchPrice is the highest price the affordable price search considers
	MaxSearchPrice = 150000.0

	// SearchTolerance is the price resolution at which the search stops (whole dollars)
	SearchTolerance = 1.0

	// MaxSearchIterations bounds the bisection
	MaxSearchIterations = 60
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix namespaces environment overrides read by viper
	EnvPrefix = "VEHICLE_AFFORD"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long cached responses live
	DefaultCacheTTLSeconds = 300
)

// DefaultAllowedOrigins are the browser origins allowed by CORS when none are configured.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
