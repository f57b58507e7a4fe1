// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"

	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for propforma.
type Configuration struct {
	Common    Deal
	Benchmark Benchmark
	Scenarios []Scenario
	Solve     []SolveConfig `yaml:"solve,omitempty"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Benchmark holds the equity-benchmark assumptions shared by all scenarios.
// Rates are annual decimal fractions; the fee is in basis points per year.
type Benchmark struct {
	AnnualReturn   float64 `yaml:"annualReturn,omitempty"`
	AnnualDividend float64 `yaml:"annualDividend,omitempty"`
	FeeBps         float64 `yaml:"feeBps,omitempty"`
}

// Scenario holds one named variation of the common deal. Overrides are
// pointer fields; nil inherits the common value. Scenario events run in
// addition to the common events.
type Scenario struct {
	Name   string
	Active bool
	Deal   DealOverrides `yaml:"deal,omitempty"`
	Events []Event       `yaml:"events,omitempty"`
	Solve  []SolveConfig `yaml:"solve,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory reader, for request bodies. JSON bodies parse through the same
// path since YAML is a superset.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ValidateConfiguration performs advisory validation of the configuration and
// returns warnings. Hard errors are the resolved deals' Validate.
func (conf *Configuration) ValidateConfiguration() []string {
	var commonEvents []validation.EventCheck
	for _, event := range conf.Common.Events {
		commonEvents = append(commonEvents, validation.EventCheck{
			Name:      event.Name,
			StartDate: event.StartDate,
			EndDate:   event.EndDate,
		})
	}

	deals := []validation.DealCheck{{
		Price:             conf.Common.Price,
		DownPaymentPct:    conf.Common.DownPaymentPct,
		RentMonthly:       conf.Common.RentMonthly,
		TermYears:         conf.Common.TermYears,
		TimelineYears:     conf.Common.TimelineYears,
		MortgageInsurance: conf.Common.MortgageInsuranceMonthly,
		MarginalTaxRate:   conf.Common.MarginalTaxRate,
		CostSegregation:   conf.Common.CostSegregation,
		FeeBps:            conf.Benchmark.FeeBps,
		Events:            commonEvents,
	}}

	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			continue
		}
		resolved := scenario.ResolveDeal(conf.Common)

		var scenarioEvents []validation.EventCheck
		for _, event := range scenario.Events {
			scenarioEvents = append(scenarioEvents, validation.EventCheck{
				Name:      event.Name,
				StartDate: event.StartDate,
				EndDate:   event.EndDate,
			})
		}

		deals = append(deals, validation.DealCheck{
			Scenario:          scenario.Name,
			Price:             resolved.Price,
			DownPaymentPct:    resolved.DownPaymentPct,
			RentMonthly:       resolved.RentMonthly,
			TermYears:         resolved.TermYears,
			TimelineYears:     resolved.TimelineYears,
			MortgageInsurance: resolved.MortgageInsuranceMonthly,
			MarginalTaxRate:   resolved.MarginalTaxRate,
			CostSegregation:   resolved.CostSegregation,
			FeeBps:            conf.Benchmark.FeeBps,
			Events:            scenarioEvents,
		})
	}

	validator := validation.ConfigValidator{
		AnalysisStart: conf.Common.StartDate,
		AnalysisEnd:   conf.Common.AnalysisEnd(),
		Deals:         deals,
	}
	return validator.ValidateAll()
}

// SolveDirectives returns the effective solve directives for a scenario:
// the common ones followed by the scenario's own.
func (conf *Configuration) SolveDirectives(scenario *Scenario) []SolveConfig {
	directives := append([]SolveConfig(nil), conf.Solve...)
	if scenario != nil {
		directives = append(directives, scenario.Solve...)
	}
	return directives
}

// HasSolveDirectives reports whether any solve directive exists, common or
// per scenario. Callers skip the solver entirely when it returns false.
func (conf *Configuration) HasSolveDirectives() bool {
	if len(conf.Solve) > 0 {
		return true
	}
	for _, scenario := range conf.Scenarios {
		if len(scenario.Solve) > 0 {
			return true
		}
	}
	return false
}
