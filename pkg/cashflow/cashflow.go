// Package cashflow assembles a rental property's periodic net operating cash
// flow from rent, financing cost, and operating expenses.
package cashflow

import (
	"github.com/propforma/propforma/pkg/constants"
)

// Inputs carries one period's amounts. Rent-derived costs (management fee,
// vacancy) are fractions of the gross rent; everything else is a currency
// amount for the period.
type Inputs struct {
	Rent              float64
	FinancingPayment  float64
	Taxes             float64
	Insurance         float64
	ManagementPct     float64
	VacancyPct        float64
	Repairs           float64
	Warranty          float64
	MortgageInsurance float64
}

// Net combines the financing payment and operating expenses into the period's
// net operating cash flow. Total function; callers validate upstream.
func Net(in Inputs) float64 {
	managementFee := in.ManagementPct * in.Rent
	vacancyCost := in.VacancyPct * in.Rent

	expenses := in.FinancingPayment + in.Taxes + in.Insurance +
		managementFee + vacancyCost + in.Repairs + in.Warranty + in.MortgageInsurance

	return in.Rent - expenses
}

// MortgageInsuranceDue reports whether the premium applies for a period. The
// premium is charged only while loan-to-value exceeds the cutoff; LTV is the
// then-current balance over the original purchase price, so callers recompute
// it every period.
func MortgageInsuranceDue(balance, originalPrice, cutoffLTV float64) bool {
	if originalPrice <= 0 {
		return false
	}
	return balance/originalPrice > cutoffLTV
}

// DefaultCutoffLTV is the loan-to-value ratio at which mortgage insurance
// drops off.
const DefaultCutoffLTV = constants.MortgageInsuranceCutoffLTV
