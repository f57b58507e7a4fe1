package config

import (
	"fmt"
	"strings"
)

const (
	SolveFieldRent  = "rent"
	SolveFieldPrice = "price"

	SolveGoalCashFlow  = "cashflow"
	SolveGoalBenchmark = "benchmark"
	SolveGoalIRR       = "irr"

	defaultSolveTolerance  = 1.0 // dollars on the solved field
	defaultSolveIterations = 48
)

// SolveConfig defines a single-field break-even directive: search one deal
// field for the value that meets a goal. Supported combinations are
// rent/cashflow, rent/benchmark, and price/irr.
type SolveConfig struct {
	Field         string   `yaml:"field,omitempty" mapstructure:"field"`
	Goal          string   `yaml:"goal,omitempty" mapstructure:"goal"`
	Target        float64  `yaml:"target,omitempty" mapstructure:"target"`
	Min           *float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalSolveField returns the canonical identifier for a solve field.
func CanonicalSolveField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SolveFieldRent
	}
	switch strings.ToLower(trimmed) {
	case "rent", "rentmonthly", "rent_monthly", "rent-monthly":
		return SolveFieldRent
	case "price", "purchaseprice", "purchase_price", "purchase-price":
		return SolveFieldPrice
	default:
		return strings.ToLower(trimmed)
	}
}

// CanonicalSolveGoal returns the canonical identifier for a solve goal.
func CanonicalSolveGoal(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SolveGoalCashFlow
	}
	switch strings.ToLower(trimmed) {
	case "cashflow", "cash_flow", "cash-flow", "breakeven":
		return SolveGoalCashFlow
	case "benchmark", "beat_benchmark", "beat-benchmark":
		return SolveGoalBenchmark
	case "irr":
		return SolveGoalIRR
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before
// validation.
func (s *SolveConfig) Normalize() {
	if s == nil {
		return
	}
	s.Field = CanonicalSolveField(s.Field)
	s.Goal = CanonicalSolveGoal(s.Goal)
	if s.Tolerance <= 0 {
		s.Tolerance = defaultSolveTolerance
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = defaultSolveIterations
	}
}

// Validate returns an error when the solve directive is unsupported.
func (s *SolveConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("solve configuration cannot be nil")
	}

	s.Normalize()

	switch s.Field {
	case SolveFieldRent:
		if s.Goal != SolveGoalCashFlow && s.Goal != SolveGoalBenchmark {
			return fmt.Errorf("solve goal %q is not supported for field %q", s.Goal, s.Field)
		}
	case SolveFieldPrice:
		if s.Goal != SolveGoalIRR {
			return fmt.Errorf("solve goal %q is not supported for field %q", s.Goal, s.Field)
		}
		if s.Target == 0 {
			return fmt.Errorf("solve goal irr requires a target annual rate")
		}
	default:
		return fmt.Errorf("solve field %q is not supported", s.Field)
	}

	if s.Min != nil && *s.Min < 0 {
		return fmt.Errorf("solve minimum %.2f cannot be negative", *s.Min)
	}
	if s.Min != nil && s.Max != nil && *s.Min >= *s.Max {
		return fmt.Errorf("solve minimum %.2f must be less than maximum %.2f", *s.Min, *s.Max)
	}

	return nil
}
