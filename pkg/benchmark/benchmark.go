// Package benchmark projects the equity market alternative to a property
// purchase: a cumulative real growth curve and the terminal wealth of a
// contribution stream grown along it.
package benchmark

import (
	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/validation"
)

// Contribution timing policies for the comparison.
const (
	// PolicyInitialOnly deploys all capital at period 0.
	PolicyInitialOnly = "initial-only"

	// PolicyMatched deploys the initial capital at period 0 and then mirrors
	// the property's real cash flows: deposits when the property consumes
	// cash, withdrawals when it produces cash.
	PolicyMatched = "matched"
)

// RealGrowthCurve builds the cumulative growth curve, in real terms, for
// monthly return, dividend, and inflation series with an annual fee in basis
// points. The per-period growth factor is
//
//	(1 + return + dividend) * (1 - fee) / (1 + inflation)
//
// and the returned curve has length len(series)+1 with element 0 equal to 1.
func RealGrowthCurve(returns, dividends, cpiGrowth []float64, feeBpsPerYear float64) ([]float64, error) {
	if len(dividends) != len(returns) || len(cpiGrowth) != len(returns) {
		return nil, validation.NewInvalidInput("series", float64(len(returns)),
			"return, dividend, and inflation series must have equal length")
	}
	if err := validation.RequireNonNegative("feeBpsPerYear", feeBpsPerYear); err != nil {
		return nil, err
	}

	feeMonthly := feeBpsPerYear / constants.BasisPointsPerUnit / constants.MonthsPerYear

	curve := make([]float64, len(returns)+1)
	curve[0] = 1.0
	for p := range returns {
		factor := (1.0 + returns[p] + dividends[p]) * (1.0 - feeMonthly) / (1.0 + cpiGrowth[p])
		curve[p+1] = curve[p] * factor
	}
	return curve, nil
}

// TerminalWealth grows every contribution forward from its period to the end
// of the curve and returns the sum. contributions[p] is the amount deployed at
// the start of period p; negative amounts are withdrawals.
func TerminalWealth(curve, contributions []float64) (float64, error) {
	if len(curve) == 0 {
		return 0, validation.NewInvalidInput("curve", 0, "must not be empty")
	}
	if len(contributions) > len(curve) {
		return 0, validation.NewInvalidInput("contributions", float64(len(contributions)),
			"must not be longer than the curve")
	}

	end := curve[len(curve)-1]
	var wealth float64
	for p, contribution := range contributions {
		if contribution == 0 {
			continue
		}
		wealth += contribution * end / curve[p]
	}
	return wealth, nil
}

// FlatMonthlySeries expands a constant annual rate into a monthly series of
// the given length, using the annual/12 convention shared by the rest of the
// calculation core.
func FlatMonthlySeries(annualRate float64, months int) []float64 {
	series := make([]float64, months)
	monthly := annualRate / constants.MonthsPerYear
	for i := range series {
		series[i] = monthly
	}
	return series
}
