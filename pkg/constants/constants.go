// Package constants provides shared constants for the dream-calculator application.
package constants

// Calendar constants
const (
	// DaysPerYear is the number of contribution periods in a year for daily saving
	DaysPerYear = 365

	// BiweeklyPeriodsPerYear is the number of two-week periods in a year
	BiweeklyPeriodsPerYear = 26

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Plan bounds
const (
	// MinTermYears is the shortest plan the engine computes
	MinTermYears = 1

	// MaxTermYears is the longest plan the engine computes
	MaxTermYears = 50

	// MaxPercent is the upper bound for annual rates and contribution growth
	MaxPercent = 100.0
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// RatePrecision is the precision for 4 decimal place rounding
	RatePrecision = 10000

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Self-test tolerances
const (
	// ExactTolerance is the absolute tolerance for interest-free checks
	ExactTolerance = 1e-6

	// CompoundTolerance is the tolerance for checks involving compounding
	CompoundTolerance = 1e-4
)

// Default savings plan
const (
	DefaultAmountPerPeriod = 100.0
	DefaultSavingsYears    = 10
	DefaultAnnualRate      = 8.0
	DefaultFrequency       = "monthly"
)

// Default goal plan
const (
	DefaultGoalAmount = 20000.0
	DefaultGoalYears  = 5
)

// Currency defaults
const (
	// DefaultPivotCurrency is the currency every exchange rate is expressed against
	DefaultPivotCurrency = "USD"

	// DefaultLanguage is the display language for pretty output
	DefaultLanguage = "en"
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

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. DREAMCALC_SAVINGS_AMOUNTPERPERIOD
	EnvPrefix = "DREAMCALC"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum JSON request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultCacheTTLSeconds is how long memoized reports live in Redis
	DefaultCacheTTLSeconds = 3600

	// MetricsNamespace prefixes every Prometheus metric
	MetricsNamespace = "dreamcalc"
)
