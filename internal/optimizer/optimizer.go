// Package optimizer answers "what would make this deal work": a bounded
// binary search over a single deal field against a configured goal, pricing
// every candidate through the analysis pipeline.
package optimizer

import (
	"fmt"
	"math"

	"github.com/propforma/propforma/internal/analysis"
	"github.com/propforma/propforma/internal/config"
	"github.com/propforma/propforma/pkg/format"
	"github.com/propforma/propforma/pkg/mathutil"
	"github.com/propforma/propforma/pkg/optimization"
	"go.uber.org/zap"
)

// Runner executes the configuration's solve directives.
type Runner struct {
	logger   *zap.Logger
	conf     *config.Configuration
	analyzer *analysis.Analyzer
}

// candidate is one evaluated field value. ok is false when the goal metric
// is undefined at that value (an unsolvable IRR).
type candidate struct {
	value  float64
	metric float64
	ok     bool
}

// Result groups solver summaries by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty reports whether any directive produced a summary.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches the summaries to their scenarios' result sets.
func (r Result) Apply(results []analysis.ResultSet) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range results {
		summaries, ok := r.Summaries[results[i].Scenario]
		if !ok {
			continue
		}
		results[i].Solves = append(results[i].Solves, summaries...)
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, conf: conf, analyzer: analysis.NewAnalyzer(logger)}, nil
}

// Run solves every directive of every active scenario. Candidates are
// evaluated on deal copies; the configuration is never mutated.
func (r *Runner) Run() (*Result, error) {
	summaries := make(map[string][]optimization.Summary)

	scenarios := r.conf.Scenarios
	if len(scenarios) == 0 {
		scenarios = []config.Scenario{{Name: "base", Active: true}}
	}

	for i := range scenarios {
		scenario := &scenarios[i]
		if !scenario.Active {
			continue
		}
		directives := r.conf.SolveDirectives(scenario)
		if len(directives) == 0 {
			continue
		}

		deal := scenario.ResolveDeal(r.conf.Common)
		for _, directive := range directives {
			if err := directive.Validate(); err != nil {
				return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}

			summary, err := r.solve(scenario.Name, deal, directive)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			summaries[scenario.Name] = append(summaries[scenario.Name], summary)

			r.logger.Info("solved break-even field",
				zap.String("op", "optimizer.Run"),
				zap.String("scenario", scenario.Name),
				zap.String("field", summary.Field),
				zap.String("goal", summary.Goal),
				zap.String("original", summary.OriginalDisplay),
				zap.String("value", summary.ValueDisplay),
				zap.Float64("achieved", summary.Achieved),
				zap.Int("iterations", summary.Iterations),
				zap.Bool("converged", summary.Converged),
			)
		}
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) solve(scenarioName string, deal config.Deal, directive config.SolveConfig) (optimization.Summary, error) {
	low, high := bracketFor(&deal, directive)
	metric := goalMetric(directive.Goal)

	summary := optimization.Summary{
		Scenario:        scenarioName,
		Field:           directive.Field,
		Goal:            directive.Goal,
		Target:          directive.Target,
		Original:        originalValue(&deal, directive.Field),
		OriginalDisplay: format.Currency(originalValue(&deal, directive.Field)),
		TargetDisplay:   targetDisplay(directive),
	}

	lowEval, err := r.evaluate(scenarioName, deal, directive.Field, low, metric)
	if err != nil {
		return optimization.Summary{}, err
	}
	highEval, err := r.evaluate(scenarioName, deal, directive.Field, high, metric)
	if err != nil {
		return optimization.Summary{}, err
	}

	// Rent goals become feasible as rent rises; the price goal as price
	// falls. The search keeps the best feasible end and bisects toward the
	// break-even boundary.
	feasible := func(c candidate) bool { return c.ok && c.metric >= directive.Target }

	var cheapEval, richEval candidate // infeasible end, feasible end
	if directive.Field == config.SolveFieldPrice {
		cheapEval, richEval = highEval, lowEval
	} else {
		cheapEval, richEval = lowEval, highEval
	}

	if feasible(cheapEval) {
		// Already feasible at the most conservative bound.
		summary.Value = cheapEval.value
		summary.ValueDisplay = format.Currency(cheapEval.value)
		summary.Achieved = cheapEval.metric
		summary.Converged = true
		return summary, nil
	}
	if !feasible(richEval) {
		summary.Value = richEval.value
		summary.ValueDisplay = format.Currency(richEval.value)
		summary.Achieved = richEval.metric
		summary.Converged = false
		summary.Notes = []string{fmt.Sprintf(
			"unable to satisfy %s target %s within bounds %s and %s",
			directive.Goal, summary.TargetDisplay, format.Currency(low), format.Currency(high),
		)}
		return summary, nil
	}

	best := richEval
	iterations := 0
	for iterations < directive.MaxIterations && math.Abs(richEval.value-cheapEval.value) > directive.Tolerance {
		mid := cheapEval.value + (richEval.value-cheapEval.value)/2
		midEval, err := r.evaluate(scenarioName, deal, directive.Field, mid, metric)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++

		if feasible(midEval) {
			if midEval.value == richEval.value {
				break
			}
			richEval = midEval
			best = midEval
		} else {
			if midEval.value == cheapEval.value {
				break
			}
			cheapEval = midEval
		}
	}

	summary.Value = best.value
	summary.ValueDisplay = format.Currency(best.value)
	summary.Achieved = best.metric
	summary.Iterations = iterations
	summary.Converged = true
	return summary, nil
}

// evaluate prices the deal with the candidate value applied. Values snap to
// cents before the run so reported solutions are real dollar amounts.
func (r *Runner) evaluate(name string, deal config.Deal, field string, value float64, metric func(*analysis.ResultSet) (float64, bool)) (candidate, error) {
	snapped := mathutil.Round(value)
	result, err := r.analyzer.Run(name, applyField(deal, field, snapped), r.conf.Benchmark)
	if err != nil {
		return candidate{}, fmt.Errorf("solver evaluation at %s: %w", format.Currency(snapped), err)
	}
	m, ok := metric(result)
	return candidate{value: snapped, metric: m, ok: ok}, nil
}

func applyField(deal config.Deal, field string, value float64) config.Deal {
	switch field {
	case config.SolveFieldPrice:
		deal.Price = value
	default:
		deal.RentMonthly = value
	}
	return deal
}

func originalValue(deal *config.Deal, field string) float64 {
	if field == config.SolveFieldPrice {
		return deal.Price
	}
	return deal.RentMonthly
}

// bracketFor derives the search interval. Explicit min/max win; otherwise
// rent searches from zero to well above the asking rent, and price from a
// quarter to four times the asking price.
func bracketFor(deal *config.Deal, directive config.SolveConfig) (float64, float64) {
	var low, high float64
	switch directive.Field {
	case config.SolveFieldPrice:
		low, high = deal.Price/4, deal.Price*4
	default:
		low, high = 0, math.Max(4*deal.RentMonthly, 10000)
	}
	if directive.Min != nil {
		low = *directive.Min
	}
	if directive.Max != nil {
		high = *directive.Max
	}
	if directive.Field == config.SolveFieldPrice && low <= 0 {
		low = 0.01 // a free house breaks deal validation
	}
	return low, high
}

func goalMetric(goal string) func(*analysis.ResultSet) (float64, bool) {
	switch goal {
	case config.SolveGoalBenchmark:
		return func(rs *analysis.ResultSet) (float64, bool) {
			return rs.PropertyWealth - rs.BenchmarkMatched, true
		}
	case config.SolveGoalIRR:
		return func(rs *analysis.ResultSet) (float64, bool) {
			if rs.IRRAnnual == nil {
				return 0, false
			}
			return *rs.IRRAnnual, true
		}
	default:
		return func(rs *analysis.ResultSet) (float64, bool) {
			return rs.CashFlowTotal, true
		}
	}
}

func targetDisplay(directive config.SolveConfig) string {
	if directive.Goal == config.SolveGoalIRR {
		return format.Percent(directive.Target)
	}
	return format.Currency(directive.Target)
}
