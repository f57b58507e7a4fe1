package config

import (
	"time"

	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/validation"
)

// Defaults applied by ApplyDefaults. A zero value in the common deal adopts
// the default; a scenario override set to a literal zero keeps the zero,
// which is how a scenario switches a defaulted cost off.
const (
	DefaultDownPaymentPct  = 0.20
	DefaultTermYears       = 30
	DefaultTimelineYears   = 10
	DefaultPropertyTaxRate = 0.017
	DefaultInsuranceAnnual = 1800.0
	DefaultInflationRate   = 0.03
	DefaultSaleCostPct     = 0.06
	DefaultVacancyPct      = 0.05
	DefaultManagementPct   = 0.08
	DefaultRepairsMonthly  = 150.0
	DefaultWarrantyMonthly = 50.0
	DefaultMarginalTaxRate = 0.24
	DefaultBuildingPct     = 0.80
	DefaultCostSegBonusPct = 0.25

	DefaultBenchmarkReturn   = 0.07
	DefaultBenchmarkDividend = 0.02
	DefaultBenchmarkFeeBps   = 4.0
)

// Deal describes one rental-property purchase under analysis. InterestRate
// is an annual percent (6.5 means 6.5%); every other rate is an annual
// decimal fraction. A deal is resolved once per run and never mutated by the
// pipeline.
type Deal struct {
	Price                    float64
	DownPaymentPct           float64
	InterestRate             float64 // annual percent
	TermYears                int
	PropertyTaxRate          float64 // annual fraction of purchase price
	InsuranceAnnual          float64
	RentMonthly              float64
	ClosingCosts             float64
	ReserveCash              float64
	AppreciationRate         float64 // annual fraction
	TimelineYears            int
	InflationRate            float64 // annual fraction
	SaleCostPct              float64 // fraction of sale price
	VacancyPct               float64 // fraction of rent
	ManagementPct            float64 // fraction of rent
	RepairsMonthly           float64
	WarrantyMonthly          float64
	MortgageInsuranceMonthly float64
	MarginalTaxRate          float64
	BuildingPct              float64 // depreciable fraction of price
	CostSegBonusPct          float64
	CostSegregation          bool
	StartDate                string // YYYY-MM
	Events                   []Event
}

// DealOverrides mirrors Deal with pointer fields; nil means inherit the
// common value.
type DealOverrides struct {
	Price                    *float64
	DownPaymentPct           *float64
	InterestRate             *float64
	TermYears                *int
	PropertyTaxRate          *float64
	InsuranceAnnual          *float64
	RentMonthly              *float64
	ClosingCosts             *float64
	ReserveCash              *float64
	AppreciationRate         *float64
	TimelineYears            *int
	InflationRate            *float64
	SaleCostPct              *float64
	VacancyPct               *float64
	ManagementPct            *float64
	RepairsMonthly           *float64
	WarrantyMonthly          *float64
	MortgageInsuranceMonthly *float64
	MarginalTaxRate          *float64
	BuildingPct              *float64
	CostSegBonusPct          *float64
	CostSegregation          *bool
	StartDate                *string
}

// ResolveDeal merges the scenario's overrides over the common deal and
// appends the scenario's events to the common ones.
func (s *Scenario) ResolveDeal(common Deal) Deal {
	deal := common
	deal.Events = append(append([]Event(nil), common.Events...), s.Events...)

	o := s.Deal
	if o.Price != nil {
		deal.Price = *o.Price
	}
	if o.DownPaymentPct != nil {
		deal.DownPaymentPct = *o.DownPaymentPct
	}
	if o.InterestRate != nil {
		deal.InterestRate = *o.InterestRate
	}
	if o.TermYears != nil {
		deal.TermYears = *o.TermYears
	}
	if o.PropertyTaxRate != nil {
		deal.PropertyTaxRate = *o.PropertyTaxRate
	}
	if o.InsuranceAnnual != nil {
		deal.InsuranceAnnual = *o.InsuranceAnnual
	}
	if o.RentMonthly != nil {
		deal.RentMonthly = *o.RentMonthly
	}
	if o.ClosingCosts != nil {
		deal.ClosingCosts = *o.ClosingCosts
	}
	if o.ReserveCash != nil {
		deal.ReserveCash = *o.ReserveCash
	}
	if o.AppreciationRate != nil {
		deal.AppreciationRate = *o.AppreciationRate
	}
	if o.TimelineYears != nil {
		deal.TimelineYears = *o.TimelineYears
	}
	if o.InflationRate != nil {
		deal.InflationRate = *o.InflationRate
	}
	if o.SaleCostPct != nil {
		deal.SaleCostPct = *o.SaleCostPct
	}
	if o.VacancyPct != nil {
		deal.VacancyPct = *o.VacancyPct
	}
	if o.ManagementPct != nil {
		deal.ManagementPct = *o.ManagementPct
	}
	if o.RepairsMonthly != nil {
		deal.RepairsMonthly = *o.RepairsMonthly
	}
	if o.WarrantyMonthly != nil {
		deal.WarrantyMonthly = *o.WarrantyMonthly
	}
	if o.MortgageInsuranceMonthly != nil {
		deal.MortgageInsuranceMonthly = *o.MortgageInsuranceMonthly
	}
	if o.MarginalTaxRate != nil {
		deal.MarginalTaxRate = *o.MarginalTaxRate
	}
	if o.BuildingPct != nil {
		deal.BuildingPct = *o.BuildingPct
	}
	if o.CostSegBonusPct != nil {
		deal.CostSegBonusPct = *o.CostSegBonusPct
	}
	if o.CostSegregation != nil {
		deal.CostSegregation = *o.CostSegregation
	}
	if o.StartDate != nil {
		deal.StartDate = *o.StartDate
	}

	return deal
}

// ApplyDefaults fills unset common-deal and benchmark fields with the
// documented defaults. Load calls it; configurations built directly in code
// call it themselves.
func (conf *Configuration) ApplyDefaults() {
	conf.ApplyDefaultsWithFixedTime(time.Now())
}

// ApplyDefaultsWithFixedTime applies defaults with an injectable clock for
// the start-date fallback.
func (conf *Configuration) ApplyDefaultsWithFixedTime(fixedTime time.Time) {
	d := &conf.Common
	if d.DownPaymentPct == 0 {
		d.DownPaymentPct = DefaultDownPaymentPct
	}
	if d.TermYears == 0 {
		d.TermYears = DefaultTermYears
	}
	if d.TimelineYears == 0 {
		d.TimelineYears = DefaultTimelineYears
	}
	if d.PropertyTaxRate == 0 {
		d.PropertyTaxRate = DefaultPropertyTaxRate
	}
	if d.InsuranceAnnual == 0 {
		d.InsuranceAnnual = DefaultInsuranceAnnual
	}
	if d.InflationRate == 0 {
		d.InflationRate = DefaultInflationRate
	}
	if d.SaleCostPct == 0 {
		d.SaleCostPct = DefaultSaleCostPct
	}
	if d.VacancyPct == 0 {
		d.VacancyPct = DefaultVacancyPct
	}
	if d.ManagementPct == 0 {
		d.ManagementPct = DefaultManagementPct
	}
	if d.RepairsMonthly == 0 {
		d.RepairsMonthly = DefaultRepairsMonthly
	}
	if d.WarrantyMonthly == 0 {
		d.WarrantyMonthly = DefaultWarrantyMonthly
	}
	if d.MarginalTaxRate == 0 {
		d.MarginalTaxRate = DefaultMarginalTaxRate
	}
	if d.BuildingPct == 0 {
		d.BuildingPct = DefaultBuildingPct
	}
	if d.CostSegBonusPct == 0 {
		d.CostSegBonusPct = DefaultCostSegBonusPct
	}
	if d.StartDate == "" {
		d.StartDate = fixedTime.Format(DateTimeLayout)
	}

	b := &conf.Benchmark
	if b.AnnualReturn == 0 {
		b.AnnualReturn = DefaultBenchmarkReturn
	}
	if b.AnnualDividend == 0 {
		b.AnnualDividend = DefaultBenchmarkDividend
	}
	if b.FeeBps == 0 {
		b.FeeBps = DefaultBenchmarkFeeBps
	}
}

// LoanAmount is the financed principal.
func (d *Deal) LoanAmount() float64 {
	return d.Price * (1 - d.DownPaymentPct)
}

// InitialOutlay is the cash deployed at purchase: down payment, closing
// costs, and the reserve fund.
func (d *Deal) InitialOutlay() float64 {
	return d.Price*d.DownPaymentPct + d.ClosingCosts + d.ReserveCash
}

// InterestFraction converts the percent-denominated rate to the decimal
// fraction the calculation packages expect.
func (d *Deal) InterestFraction() float64 {
	return d.InterestRate / 100
}

// TermMonths is the loan term in months.
func (d *Deal) TermMonths() int {
	return d.TermYears * constants.MonthsPerYear
}

// TimelineMonths is the comparison horizon in months.
func (d *Deal) TimelineMonths() int {
	return d.TimelineYears * constants.MonthsPerYear
}

// AnalysisEnd is the YYYY-MM label of the final timeline month, or empty
// when the start date does not parse.
func (d *Deal) AnalysisEnd() string {
	start, err := time.Parse(DateTimeLayout, d.StartDate)
	if err != nil {
		return ""
	}
	return start.AddDate(0, d.TimelineMonths(), 0).Format(DateTimeLayout)
}

// Validate rejects deals the calculation core cannot price. Advisory
// warnings are ValidateConfiguration's job.
func (d *Deal) Validate() error {
	if err := validation.RequirePositive("price", d.Price); err != nil {
		return err
	}
	if err := validation.RequireFraction("downPaymentPct", d.DownPaymentPct); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("interestRate", d.InterestRate); err != nil {
		return err
	}
	if d.TermYears <= 0 {
		return validation.NewInvalidInput("termYears", float64(d.TermYears), "must be positive")
	}
	if d.TimelineYears <= 0 {
		return validation.NewInvalidInput("timelineYears", float64(d.TimelineYears), "must be positive")
	}
	if err := validation.RequireFraction("propertyTaxRate", d.PropertyTaxRate); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("insuranceAnnual", d.InsuranceAnnual); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("rentMonthly", d.RentMonthly); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("closingCosts", d.ClosingCosts); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("reserveCash", d.ReserveCash); err != nil {
		return err
	}
	if err := validation.RequireFinite("appreciationRate", d.AppreciationRate); err != nil {
		return err
	}
	if d.AppreciationRate <= -1 {
		return validation.NewInvalidInput("appreciationRate", d.AppreciationRate, "must be greater than -1")
	}
	if err := validation.RequireFinite("inflationRate", d.InflationRate); err != nil {
		return err
	}
	if d.InflationRate <= -1 {
		return validation.NewInvalidInput("inflationRate", d.InflationRate, "must be greater than -1")
	}
	if err := validation.RequireFraction("saleCostPct", d.SaleCostPct); err != nil {
		return err
	}
	if err := validation.RequireFraction("vacancyPct", d.VacancyPct); err != nil {
		return err
	}
	if err := validation.RequireFraction("managementPct", d.ManagementPct); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("repairsMonthly", d.RepairsMonthly); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("warrantyMonthly", d.WarrantyMonthly); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("mortgageInsuranceMonthly", d.MortgageInsuranceMonthly); err != nil {
		return err
	}
	if err := validation.RequireFraction("marginalTaxRate", d.MarginalTaxRate); err != nil {
		return err
	}
	if err := validation.RequireFraction("buildingPct", d.BuildingPct); err != nil {
		return err
	}
	if err := validation.RequireFraction("costSegBonusPct", d.CostSegBonusPct); err != nil {
		return err
	}
	if _, err := time.Parse(DateTimeLayout, d.StartDate); err != nil {
		return validation.NewInvalidInput("startDate", 0, "must be a YYYY-MM date")
	}
	return nil
}
