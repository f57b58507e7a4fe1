// Package inflation converts nominal amounts into real, constant purchasing
// power amounts using a consumer price index series.
package inflation

import (
	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/validation"
)

// Index is an ordered series of period index values. Element 0 is the base
// period, the "today's dollars" reference point. An index may be built from a
// compounding rate or supplied externally.
type Index []float64

// NewMonthlyIndex builds a monthly compounding index of length months+1 from
// an annual inflation rate. The base element is 1.0 and each month grows by
// annualRate/12.
func NewMonthlyIndex(annualRate float64, months int) (Index, error) {
	if err := validation.RequireFinite("inflationRate", annualRate); err != nil {
		return nil, err
	}
	if annualRate <= -1 {
		return nil, validation.NewInvalidInput("inflationRate", annualRate, "must be greater than -1")
	}
	if months < 0 {
		return nil, validation.NewInvalidInput("months", float64(months), "must not be negative")
	}

	monthlyRate := annualRate / constants.MonthsPerYear
	index := make(Index, months+1)
	index[0] = 1.0
	for m := 1; m <= months; m++ {
		index[m] = index[m-1] * (1.0 + monthlyRate)
	}
	return index, nil
}

// ToReal converts a nominal amount observed at the target period into the
// purchasing power of the base period. Flows realized in different periods
// must each be deflated before summing; deflating an already-summed nominal
// total misstates multi-year returns.
func ToReal(nominal, indexBase, indexTarget float64) float64 {
	return nominal * (indexBase / indexTarget)
}

// Deflate converts a nominal amount at the given period of this index into
// base-period purchasing power.
func (idx Index) Deflate(nominal float64, period int) float64 {
	return ToReal(nominal, idx[0], idx[period])
}
