// Package validation provides configuration and input validation utilities.
package validation

import (
	"fmt"
)

// DealCheck carries the fields of a deal that soft validation inspects.
// internal/config fills one per scenario so this package stays free of
// config imports.
type DealCheck struct {
	Scenario          string // empty for the common deal
	Price             float64
	DownPaymentPct    float64
	RentMonthly       float64
	TermYears         int
	TimelineYears     int
	MortgageInsurance float64
	MarginalTaxRate   float64
	CostSegregation   bool
	FeeBps            float64
	Events            []EventCheck
}

// EventCheck carries the date window of one ad-hoc cash event.
type EventCheck struct {
	Name      string
	StartDate string
	EndDate   string
}

// ConfigValidator validates a set of deals and collects advisory warnings.
// Warnings never stop an analysis; they flag configurations that are legal
// but probably not what the user meant.
type ConfigValidator struct {
	AnalysisStart string
	AnalysisEnd   string
	Deals         []DealCheck
}

// ValidateAll runs every soft check and returns the collected warnings.
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for _, deal := range cv.Deals {
		warnings = append(warnings, ValidateDealBasics(deal)...)
		for _, event := range deal.Events {
			name := event.Name
			if deal.Scenario != "" {
				name = fmt.Sprintf("scenario '%s' event '%s'", deal.Scenario, event.Name)
			}
			warnings = append(warnings, ValidateEventWindow(name, event.StartDate, event.EndDate, cv.AnalysisStart, cv.AnalysisEnd)...)
		}
	}

	return warnings
}

// ValidateDealBasics flags deal parameters that are legal but suspicious.
func ValidateDealBasics(deal DealCheck) []string {
	var warnings []string

	label := "deal"
	if deal.Scenario != "" {
		label = fmt.Sprintf("scenario '%s'", deal.Scenario)
	}

	if deal.RentMonthly == 0 {
		warnings = append(warnings, fmt.Sprintf("%s has zero rent - the property only consumes cash", label))
	}

	if warning := ValidateMortgageInsurance(label, deal.MortgageInsurance, deal.DownPaymentPct); warning != "" {
		warnings = append(warnings, warning)
	}

	if deal.CostSegregation && deal.MarginalTaxRate == 0 {
		warnings = append(warnings, fmt.Sprintf("%s enables cost segregation with a zero marginal tax rate - it will have no effect", label))
	}

	if deal.FeeBps > 100 {
		warnings = append(warnings, fmt.Sprintf("%s benchmark fee of %.0f bps is unusually high for an index fund", label, deal.FeeBps))
	}

	return warnings
}

// ValidateMortgageInsurance warns when a premium is configured but the
// starting loan-to-value already sits at or below the cutoff, so the premium
// would never be charged.
func ValidateMortgageInsurance(label string, premiumMonthly, downPaymentPct float64) string {
	if premiumMonthly > 0 && downPaymentPct >= 0.20 {
		return fmt.Sprintf("%s configures mortgage insurance but the %.0f%% down payment keeps LTV at or below the cutoff from the start",
			label, downPaymentPct*100)
	}
	return ""
}

// ValidateEventWindow checks that an event's date range can land inside the
// analysis window. Dates are YYYY-MM strings, so plain string comparison
// orders them correctly.
func ValidateEventWindow(eventName, startDate, endDate, analysisStart, analysisEnd string) []string {
	var warnings []string

	if startDate != "" && analysisEnd != "" && startDate > analysisEnd {
		warnings = append(warnings, fmt.Sprintf("event '%s' starts after the analysis horizon (%s > %s)",
			eventName, startDate, analysisEnd))
	}

	if endDate != "" && analysisStart != "" && endDate < analysisStart {
		warnings = append(warnings, fmt.Sprintf("event '%s' ends before the analysis starts (%s < %s)",
			eventName, endDate, analysisStart))
	}

	return warnings
}
