// Package constants provides shared constants for the propforma application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// DefaultFrequency is the default frequency for monthly events
	DefaultFrequency = 1

	// QuarterlyFrequency is the frequency for quarterly events
	QuarterlyFrequency = 3

	// AnnualFrequency is the frequency for annual events
	AnnualFrequency = 12

	// BasisPointsPerUnit converts basis points to a decimal fraction
	BasisPointsPerUnit = 10000.0

	// DepreciationLifeYears is the IRS straight-line recovery period for
	// residential rental property
	DepreciationLifeYears = 27.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API server
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes is the default maximum request body size for deal
	// payloads (256 KB)
	DefaultMaxBodyBytes int64 = 256 * 1024
)

// Validation constants
const (
	// MortgageInsuranceCutoffLTV is the loan-to-value ratio below which the
	// mortgage insurance premium drops off
	MortgageInsuranceCutoffLTV = 0.80

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// RelativeTolerance is the relative error accepted in conservation checks
	RelativeTolerance = 1e-6
)
