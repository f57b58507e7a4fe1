// Package irr solves for the internal rate of return of an ordered cash flow
// series via bounded bisection or Newton-Raphson iteration.
package irr

import (
	"errors"
	"fmt"
	"math"

	"github.com/propforma/propforma/pkg/mathutil"
	"github.com/propforma/propforma/pkg/validation"
)

// Solver failure modes. Callers must branch on these instead of falling back
// to a fabricated rate.
var (
	// ErrNoSolution means NPV does not change sign across the bracketing
	// interval, so bisection has no root to find inside it.
	ErrNoSolution = errors.New("irr: no sign change across the bracketing interval")

	// ErrDidNotConverge means the iteration budget ran out or a step became
	// degenerate before reaching tolerance.
	ErrDidNotConverge = errors.New("irr: did not converge")
)

const (
	// DefaultLowerBound and DefaultUpperBound bracket any realistic periodic
	// rate for the default solver entry points.
	DefaultLowerBound = -0.99
	DefaultUpperBound = 10.0

	// npvTolerance is in currency units; a micro-dollar of NPV pins the rate
	// far tighter than the 1e-6 accuracy callers rely on.
	npvTolerance  = 1e-6
	rateTolerance = 1e-12

	bisectMaxIterations = 200
	newtonMaxIterations = 100
)

// NPV computes the net present value of flows at the given periodic rate.
// flows[0] sits at time zero and is not discounted. Zero flows are skipped so
// extreme bracket rates cannot turn them into NaN via 0 * Inf.
func NPV(rate float64, flows []float64) float64 {
	var npv float64
	for m, flow := range flows {
		if flow == 0 {
			continue
		}
		npv += flow / math.Pow(1+rate, float64(m))
	}
	return npv
}

// Rate solves for the periodic internal rate of return by bisection over the
// default interval. flows[0] should be the negative initial outlay.
func Rate(flows []float64) (float64, error) {
	return Bisect(flows, DefaultLowerBound, DefaultUpperBound)
}

// Bisect solves for the periodic rate making NPV zero inside [low, high].
// Returns ErrNoSolution when NPV has the same sign at both ends.
func Bisect(flows []float64, low, high float64) (float64, error) {
	if err := validateFlows(flows); err != nil {
		return 0, err
	}
	if err := validation.RequireFinite("low", low); err != nil {
		return 0, err
	}
	if err := validation.RequireFinite("high", high); err != nil {
		return 0, err
	}
	if low >= high {
		return 0, validation.NewInvalidInput("low", low, "must be below the upper bound")
	}

	npvLow := NPV(low, flows)
	npvHigh := NPV(high, flows)
	if npvLow == 0 {
		return low, nil
	}
	if npvHigh == 0 {
		return high, nil
	}
	if (npvLow > 0) == (npvHigh > 0) {
		return 0, fmt.Errorf("%w: npv(%g) and npv(%g)", ErrNoSolution, low, high)
	}

	for i := 0; i < bisectMaxIterations; i++ {
		mid := (low + high) / 2
		npvMid := NPV(mid, flows)
		if math.Abs(npvMid) < npvTolerance || (high-low)/2 < rateTolerance {
			return mid, nil
		}
		if (npvMid > 0) == (npvLow > 0) {
			low, npvLow = mid, npvMid
		} else {
			high = mid
		}
	}
	return (low + high) / 2, nil
}

// Newton solves for the periodic rate by Newton-Raphson from an initial
// guess using the analytic NPV derivative. Each step is clamped to the
// default interval; a degenerate derivative or non-finite step returns
// ErrDidNotConverge rather than a partial rate.
func Newton(flows []float64, guess float64) (float64, error) {
	if err := validateFlows(flows); err != nil {
		return 0, err
	}
	if err := validation.RequireFinite("guess", guess); err != nil {
		return 0, err
	}

	rate := clamp(guess, DefaultLowerBound, DefaultUpperBound)
	for i := 0; i < newtonMaxIterations; i++ {
		npv := NPV(rate, flows)
		if math.Abs(npv) < npvTolerance {
			return rate, nil
		}

		derivative := npvDerivative(rate, flows)
		if !mathutil.IsFinite(derivative) || math.Abs(derivative) < 1e-30 {
			return 0, fmt.Errorf("%w: degenerate derivative at rate %g", ErrDidNotConverge, rate)
		}

		step := npv / derivative
		if !mathutil.IsFinite(step) {
			return 0, fmt.Errorf("%w: non-finite step at rate %g", ErrDidNotConverge, rate)
		}
		rate = clamp(rate-step, DefaultLowerBound, DefaultUpperBound)
	}
	return 0, fmt.Errorf("%w after %d iterations", ErrDidNotConverge, newtonMaxIterations)
}

// Annualize converts a periodic rate into its annual equivalent.
func Annualize(periodicRate float64, periodsPerYear int) float64 {
	return math.Pow(1+periodicRate, float64(periodsPerYear)) - 1
}

func npvDerivative(rate float64, flows []float64) float64 {
	var derivative float64
	for m, flow := range flows {
		if m == 0 || flow == 0 {
			continue
		}
		derivative -= float64(m) * flow / math.Pow(1+rate, float64(m+1))
	}
	return derivative
}

func validateFlows(flows []float64) error {
	if len(flows) < 2 {
		return validation.NewInvalidInput("flows", float64(len(flows)), "needs at least two cash flows")
	}
	for m, flow := range flows {
		if !mathutil.IsFinite(flow) {
			return validation.NewInvalidInput(fmt.Sprintf("flows[%d]", m), flow, "must be finite")
		}
	}
	return nil
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
