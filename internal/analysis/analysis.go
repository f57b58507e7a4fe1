// Package analysis runs the deal pipeline: amortization, CPI indexing,
// monthly cash-flow assembly, benchmark projection, and IRR, producing one
// ResultSet per scenario.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/propforma/propforma/internal/config"
	"github.com/propforma/propforma/pkg/amortize"
	"github.com/propforma/propforma/pkg/benchmark"
	"github.com/propforma/propforma/pkg/cashflow"
	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/datetime"
	"github.com/propforma/propforma/pkg/inflation"
	"github.com/propforma/propforma/pkg/irr"
	"go.uber.org/zap"
)

// Analyzer evaluates deals against benchmark assumptions.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// RunScenarios evaluates every active scenario of the configuration. When no
// scenarios are defined the common deal runs alone under the name "base".
func RunScenarios(logger *zap.Logger, conf config.Configuration) ([]ResultSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	analyzer := NewAnalyzer(logger)

	scenarios := conf.Scenarios
	if len(scenarios) == 0 {
		scenarios = []config.Scenario{{Name: "base", Active: true}}
	}

	var results []ResultSet
	for _, scenario := range scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "analysis.RunScenarios"),
			)
			continue
		}

		deal := scenario.ResolveDeal(conf.Common)
		result, err := analyzer.Run(scenario.Name, deal, conf.Benchmark)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		results = append(results, *result)
	}

	return results, nil
}

// Run prices one resolved deal. The deal is consumed as a snapshot and the
// ResultSet is built fresh each call; nothing is updated incrementally.
func (a *Analyzer) Run(name string, deal config.Deal, bench config.Benchmark) (*ResultSet, error) {
	if err := deal.Validate(); err != nil {
		return nil, err
	}

	months := deal.TimelineMonths()
	years := deal.TimelineYears
	principal := deal.LoanAmount()
	outlay := deal.InitialOutlay()

	schedule, err := amortize.NewGenerator(a.logger).Build(principal, deal.InterestFraction(), deal.TermYears)
	if err != nil {
		return nil, fmt.Errorf("amortization schedule: %w", err)
	}

	cpi, err := inflation.NewMonthlyIndex(deal.InflationRate, months)
	if err != nil {
		return nil, fmt.Errorf("inflation index: %w", err)
	}

	if err := deal.ExpandEventDates(); err != nil {
		return nil, err
	}
	eventAmounts, err := monthlyEventAmounts(&deal, months)
	if err != nil {
		return nil, err
	}

	// Operating amounts are entered in today's dollars and scale with the
	// CPI index; the mortgage payment and the mortgage insurance premium
	// stay fixed nominal.
	taxesMonthly := deal.Price * deal.PropertyTaxRate / constants.MonthsPerYear
	insuranceMonthly := deal.InsuranceAnnual / constants.MonthsPerYear

	nominalFlows := make([]float64, months+1)
	realFlows := make([]float64, months+1)
	nominalFlows[0] = eventAmounts[0]
	realFlows[0] = eventAmounts[0] // month 0 is the base period

	balanceBefore := principal
	for m := 1; m <= months; m++ {
		var payment float64
		if m <= len(schedule.Rows) {
			payment = schedule.Rows[m-1].Payment
		}

		var premium float64
		if deal.MortgageInsuranceMonthly > 0 &&
			cashflow.MortgageInsuranceDue(balanceBefore, deal.Price, cashflow.DefaultCutoffLTV) {
			premium = deal.MortgageInsuranceMonthly
		}

		net := cashflow.Net(cashflow.Inputs{
			Rent:              deal.RentMonthly * cpi[m],
			FinancingPayment:  payment,
			Taxes:             taxesMonthly * cpi[m],
			Insurance:         insuranceMonthly * cpi[m],
			ManagementPct:     deal.ManagementPct,
			VacancyPct:        deal.VacancyPct,
			Repairs:           deal.RepairsMonthly * cpi[m],
			Warranty:          deal.WarrantyMonthly * cpi[m],
			MortgageInsurance: premium,
		})
		net += eventAmounts[m]

		nominalFlows[m] = net
		realFlows[m] = cpi.Deflate(net, m)

		if m <= len(schedule.Rows) {
			balanceBefore = schedule.Rows[m-1].Balance
		}
	}

	// Interest and depreciation shelter rental income; the savings are
	// credited at each year end.
	basis := deal.Price * deal.BuildingPct
	taxSavingsNominal := make([]float64, years+1)
	taxSavingsReal := make([]float64, years+1)
	for y := 1; y <= years; y++ {
		start := (y - 1) * constants.MonthsPerYear
		end := y * constants.MonthsPerYear
		if start > len(schedule.Rows) {
			start = len(schedule.Rows)
		}
		if end > len(schedule.Rows) {
			end = len(schedule.Rows)
		}

		var interestPaid float64
		for _, row := range schedule.Rows[start:end] {
			interestPaid += row.Interest
		}

		saved := (interestPaid + depreciationForYear(&deal, basis, y)) * deal.MarginalTaxRate
		taxSavingsNominal[y] = saved
		taxSavingsReal[y] = cpi.Deflate(saved, y*constants.MonthsPerYear)
	}

	// Sale at the end of the horizon, with the reserve returned nominal.
	growthMonthly := 1 + deal.AppreciationRate/constants.MonthsPerYear
	salePrice := deal.Price * math.Pow(growthMonthly, float64(months))
	saleCosts := salePrice * deal.SaleCostPct

	var balanceEnd float64
	if months <= len(schedule.Rows) {
		balanceEnd = schedule.Rows[months-1].Balance
	}
	netSaleProceeds := salePrice - saleCosts - balanceEnd
	realExitProceeds := cpi.Deflate(netSaleProceeds+deal.ReserveCash, months)

	// The IRR operates on the dated real flows: outlay at month 0, operating
	// flows plus year-end tax savings in between, exit proceeds at the end.
	flows := make([]float64, months+1)
	flows[0] = realFlows[0] - outlay
	for m := 1; m <= months; m++ {
		flows[m] = realFlows[m]
	}
	for y := 1; y <= years; y++ {
		flows[y*constants.MonthsPerYear] += taxSavingsReal[y]
	}
	flows[months] += realExitProceeds

	var irrAnnual *float64
	var irrNote string
	monthlyRate, irrErr := irr.Rate(flows)
	switch {
	case irrErr == nil:
		annual := irr.Annualize(monthlyRate, constants.MonthsPerYear)
		irrAnnual = &annual
	case errors.Is(irrErr, irr.ErrNoSolution) || errors.Is(irrErr, irr.ErrDidNotConverge):
		irrNote = irrErr.Error()
		a.logger.Warn("IRR solver found no usable rate",
			zap.String("op", "analysis.Run"),
			zap.String("scenario", name),
			zap.Error(irrErr),
		)
	default:
		return nil, fmt.Errorf("irr: %w", irrErr)
	}

	// Benchmark projection under both contribution policies.
	returns := benchmark.FlatMonthlySeries(bench.AnnualReturn, months)
	dividends := benchmark.FlatMonthlySeries(bench.AnnualDividend, months)
	cpiGrowth := benchmark.FlatMonthlySeries(deal.InflationRate, months)
	curve, err := benchmark.RealGrowthCurve(returns, dividends, cpiGrowth, bench.FeeBps)
	if err != nil {
		return nil, fmt.Errorf("benchmark curve: %w", err)
	}

	initialOnly := make([]float64, months+1)
	initialOnly[0] = outlay
	benchInitial, err := benchmark.TerminalWealth(curve, initialOnly)
	if err != nil {
		return nil, fmt.Errorf("benchmark terminal wealth: %w", err)
	}

	// The matched investor deposits what the property consumes and withdraws
	// what it produces, so both strategies commit identical cash.
	matched := make([]float64, months+1)
	matched[0] = outlay - realFlows[0]
	for m := 1; m <= months; m++ {
		matched[m] = -realFlows[m]
	}
	for y := 1; y <= years; y++ {
		matched[y*constants.MonthsPerYear] -= taxSavingsReal[y]
	}
	benchMatched, err := benchmark.TerminalWealth(curve, matched)
	if err != nil {
		return nil, fmt.Errorf("benchmark terminal wealth: %w", err)
	}

	summary := amortize.Summarize(schedule.Rows, years)

	var cashFlowTotal, realFlowTotal float64
	for m := 0; m <= months; m++ {
		cashFlowTotal += nominalFlows[m]
		realFlowTotal += realFlows[m]
	}
	var taxTotalNominal, taxTotalReal float64
	for y := 1; y <= years; y++ {
		taxTotalNominal += taxSavingsNominal[y]
		taxTotalReal += taxSavingsReal[y]
	}

	totalROI := realFlowTotal + taxTotalReal + realExitProceeds - outlay
	var roiPct float64
	if outlay > 0 {
		roiPct = totalROI / outlay * constants.PercentageMultiplier
	}
	propertyWealth := outlay + totalROI

	ledger, err := buildLedger(&deal, schedule, nominalFlows, realFlows, taxSavingsNominal, curve, matched, outlay, growthMonthly)
	if err != nil {
		return nil, err
	}

	a.logger.Debug(fmt.Sprintf("analyzed %s: ROI %.2f%%, property wealth %.2f vs benchmark %.2f",
		name, roiPct, propertyWealth, benchMatched),
		zap.String("op", "analysis.Run"),
	)

	return &ResultSet{
		Scenario:             name,
		StartDate:            deal.StartDate,
		TimelineYears:        years,
		PaymentMonthly:       schedule.PaymentMonthly,
		LoanAmount:           principal,
		InitialOutlay:        outlay,
		SalePrice:            salePrice,
		Appreciation:         salePrice - deal.Price - saleCosts,
		NetSaleProceeds:      netSaleProceeds,
		PrincipalPaid:        summary.PrincipalPaid,
		InterestPaid:         summary.InterestPaid,
		LoanBalanceEnd:       summary.Balance,
		CashFlowTotal:        cashFlowTotal,
		TaxSavingsTotal:      taxTotalNominal,
		TotalROI:             totalROI,
		ROIPct:               roiPct,
		IRRAnnual:            irrAnnual,
		IRRNote:              irrNote,
		PropertyWealth:       propertyWealth,
		BenchmarkInitialOnly: benchInitial,
		BenchmarkMatched:     benchMatched,
		DeltaVsBenchmark:     propertyWealth - benchMatched,
		Ledger:               ledger,
	}, nil
}

// monthlyEventAmounts folds the expanded event dates into per-month amounts.
// Dates outside the timeline are dropped.
func monthlyEventAmounts(deal *config.Deal, months int) ([]float64, error) {
	amounts := make([]float64, months+1)
	for _, event := range deal.Events {
		for _, date := range event.DateList {
			offset, err := datetime.MonthsBetween(config.DateTimeLayout, deal.StartDate, date.Format(config.DateTimeLayout))
			if err != nil {
				return nil, err
			}
			if offset < 0 || offset > months {
				continue
			}
			amounts[offset] += event.Amount
		}
	}
	return amounts, nil
}

// depreciationForYear returns the deduction for horizon year y under
// straight-line recovery of the building basis, with an optional first-year
// cost-segregation bonus.
func depreciationForYear(deal *config.Deal, basis float64, year int) float64 {
	if basis <= 0 {
		return 0
	}

	if !deal.CostSegregation {
		return straightLine(basis/constants.DepreciationLifeYears, year, 1)
	}

	if year == 1 {
		return basis * deal.CostSegBonusPct
	}
	remaining := basis * (1 - deal.CostSegBonusPct)
	return straightLine(remaining/constants.DepreciationLifeYears, year, 2)
}

// straightLine returns the deduction for the given year when full-rate
// recovery starts at firstYear. A 27.5 year life is 27 full years followed
// by a final half year.
func straightLine(annual float64, year, firstYear int) float64 {
	offset := year - firstYear
	switch {
	case offset < 0:
		return 0
	case offset < 27:
		return annual
	case offset == 27:
		return annual / 2
	default:
		return 0
	}
}

// buildLedger aggregates the monthly series into one entry per horizon year.
func buildLedger(deal *config.Deal, schedule *amortize.Schedule,
	nominalFlows, realFlows, taxSavingsNominal, curve, matched []float64,
	outlay, growthMonthly float64) ([]LedgerEntry, error) {

	years := deal.TimelineYears
	ledger := make([]LedgerEntry, 0, years)
	matchedWealth := matched[0]

	for y := 1; y <= years; y++ {
		yearEnd := y * constants.MonthsPerYear

		date, err := datetime.OffsetDate(deal.StartDate, config.DateTimeLayout, yearEnd)
		if err != nil {
			return nil, err
		}
		entry := LedgerEntry{Year: y, Date: date}

		for m := (y-1)*constants.MonthsPerYear + 1; m <= yearEnd; m++ {
			entry.CashFlowNominal += nominalFlows[m]
			entry.CashFlowReal += realFlows[m]
			matchedWealth = matchedWealth*(curve[m]/curve[m-1]) + matched[m]
			if m <= len(schedule.Rows) {
				entry.PrincipalPaid += schedule.Rows[m-1].Principal
				entry.InterestPaid += schedule.Rows[m-1].Interest
			}
		}

		if yearEnd <= len(schedule.Rows) {
			entry.LoanBalance = schedule.Rows[yearEnd-1].Balance
		}
		entry.TaxSavings = taxSavingsNominal[y]
		entry.PropertyValue = deal.Price * math.Pow(growthMonthly, float64(yearEnd))
		entry.BenchmarkInitial = outlay * curve[yearEnd]
		entry.BenchmarkMatched = matchedWealth

		ledger = append(ledger, entry)
	}

	return ledger, nil
}
