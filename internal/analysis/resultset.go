package analysis

import (
	"github.com/propforma/propforma/pkg/format"
	"github.com/propforma/propforma/pkg/optimization"
)

// LedgerEntry aggregates one horizon year of the monthly pipeline. Entries
// are built once per run and never mutated.
type LedgerEntry struct {
	Year             int     `json:"year"`
	Date             string  `json:"date"` // YYYY-MM of the year's final month
	CashFlowNominal  float64 `json:"cashFlowNominal"`
	CashFlowReal     float64 `json:"cashFlowReal"`
	PrincipalPaid    float64 `json:"principalPaid"`
	InterestPaid     float64 `json:"interestPaid"`
	LoanBalance      float64 `json:"loanBalance"`
	TaxSavings       float64 `json:"taxSavings"`
	PropertyValue    float64 `json:"propertyValue"`
	BenchmarkInitial float64 `json:"benchmarkInitialOnly"`
	BenchmarkMatched float64 `json:"benchmarkMatched"`
}

// ResultSet is the aggregated outcome of one deal analysis. CashFlowTotal and
// TaxSavingsTotal are nominal sums; TotalROI, PropertyWealth, and the
// benchmark balances are in today's dollars. A failed IRR solve leaves
// IRRAnnual nil and explains itself in IRRNote.
type ResultSet struct {
	Scenario             string        `json:"scenario"`
	StartDate            string        `json:"startDate"`
	TimelineYears        int           `json:"timelineYears"`
	PaymentMonthly       float64       `json:"paymentMonthly"`
	LoanAmount           float64       `json:"loanAmount"`
	InitialOutlay        float64       `json:"initialOutlay"`
	SalePrice            float64       `json:"salePrice"`
	Appreciation         float64       `json:"appreciation"` // net of sale costs
	NetSaleProceeds      float64       `json:"netSaleProceeds"`
	PrincipalPaid        float64       `json:"principalPaid"`
	InterestPaid         float64       `json:"interestPaid"`
	LoanBalanceEnd       float64       `json:"loanBalanceEnd"`
	CashFlowTotal        float64       `json:"cashFlowTotal"`
	TaxSavingsTotal      float64       `json:"taxSavingsTotal"`
	TotalROI             float64       `json:"totalRoi"`
	ROIPct               float64       `json:"roiPct"`
	IRRAnnual            *float64      `json:"irrAnnual"`
	IRRNote              string        `json:"irrNote,omitempty"`
	PropertyWealth       float64       `json:"propertyWealth"`
	BenchmarkInitialOnly float64       `json:"benchmarkInitialOnly"`
	BenchmarkMatched     float64       `json:"benchmarkMatched"`
	DeltaVsBenchmark     float64       `json:"deltaVsBenchmark"`
	Ledger               []LedgerEntry `json:"ledger"`

	// Solves is filled by the break-even solver when directives exist.
	Solves []optimization.Summary `json:"solves,omitempty"`
}

// IRRDisplay renders the annual IRR, or "n/a" when the solver found no
// usable rate.
func (r *ResultSet) IRRDisplay() string {
	if r.IRRAnnual == nil {
		return "n/a"
	}
	return format.Percent(*r.IRRAnnual)
}

// ROIDisplay renders the total return on investment as a percentage string.
func (r *ResultSet) ROIDisplay() string {
	return format.Percent(r.ROIPct / 100)
}

// DeltaDisplay renders the property-versus-benchmark difference with an
// explicit sign.
func (r *ResultSet) DeltaDisplay() string {
	return format.SignedCurrency(r.DeltaVsBenchmark)
}

// Beats reports whether the property outperforms the matched benchmark.
func (r *ResultSet) Beats() bool {
	return r.DeltaVsBenchmark > 0
}
