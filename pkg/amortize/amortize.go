// Package amortize generates fixed-rate loan amortization schedules and
// summarizes them over a horizon.
package amortize

import (
	"fmt"
	"math"

	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/validation"
	"go.uber.org/zap"
)

// Row is one month of an amortization schedule. Months are 1-based.
type Row struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// Schedule is the complete payment plan for a fixed-rate loan.
type Schedule struct {
	PaymentMonthly float64 `json:"paymentMonthly"`
	Rows           []Row   `json:"rows"`
}

// Summary aggregates the paid and outstanding amounts of a schedule window.
type Summary struct {
	PrincipalPaid float64 `json:"principalPaid"`
	InterestPaid  float64 `json:"interestPaid"`
	Balance       float64 `json:"balance"`
}

// MonthlyPayment calculates the constant monthly payment for a loan using the
// standard amortization formula. Rates are decimal fractions (0.065 = 6.5%).
// A zero rate amortizes evenly across the term.
func MonthlyPayment(principal, annualRate float64, termMonths int) (float64, error) {
	if err := validateLoan(principal, annualRate, termMonths); err != nil {
		return 0, err
	}
	if annualRate == 0 {
		return principal / float64(termMonths), nil
	}

	periodicRate := annualRate / constants.MonthsPerYear
	power := math.Pow(1.00+periodicRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicRate / discountFactor, nil
}

// InterestPayment calculates the interest portion of one payment from the
// running balance.
func InterestPayment(balance, annualRate float64) float64 {
	return balance * annualRate / constants.MonthsPerYear
}

// Generator builds amortization schedules.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new schedule generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Build creates the complete month-by-month schedule for a fixed-rate loan.
// Each row's interest comes from the running balance, the principal portion is
// payment minus interest, and the balance is decremented and floored at zero.
// The final row clears the balance exactly, so the principal column sums to
// the original loan amount.
func (g *Generator) Build(principal, annualRate float64, termYears int) (*Schedule, error) {
	if termYears <= 0 {
		return nil, validation.NewInvalidInput("termYears", float64(termYears), "must be positive")
	}
	termMonths := termYears * constants.MonthsPerYear

	payment, err := MonthlyPayment(principal, annualRate, termMonths)
	if err != nil {
		return nil, err
	}

	g.logger.Debug(fmt.Sprintf("amortizing %.2f at %.4f over %d months, payment %.2f",
		principal, annualRate, termMonths, payment),
		zap.String("op", "amortize.Build"),
	)

	rows := make([]Row, 0, termMonths)
	balance := principal
	for month := 1; month <= termMonths; month++ {
		interest := InterestPayment(balance, annualRate)
		principalPortion := payment - interest
		rowPayment := payment

		if principalPortion >= balance || month == termMonths {
			// The last payment retires whatever balance remains.
			principalPortion = balance
			rowPayment = interest + principalPortion
		}

		balance -= principalPortion
		if balance < 0 {
			balance = 0
		}

		rows = append(rows, Row{
			Month:     month,
			Payment:   rowPayment,
			Interest:  interest,
			Principal: principalPortion,
			Balance:   balance,
		})
	}

	return &Schedule{PaymentMonthly: payment, Rows: rows}, nil
}

// Summarize computes cumulative principal paid, interest paid, and the
// balance as of year-end, over at most min(len(rows), years*12) months. A
// zero-month window returns zero sums and the first row's balance, or all
// zeros for an empty schedule.
func Summarize(rows []Row, years int) Summary {
	months := years * constants.MonthsPerYear
	if months > len(rows) {
		months = len(rows)
	}
	if months <= 0 {
		if len(rows) == 0 {
			return Summary{}
		}
		return Summary{Balance: rows[0].Balance}
	}

	var summary Summary
	for _, row := range rows[:months] {
		summary.PrincipalPaid += row.Principal
		summary.InterestPaid += row.Interest
	}
	summary.Balance = rows[months-1].Balance
	return summary
}

func validateLoan(principal, annualRate float64, termMonths int) error {
	if err := validation.RequireNonNegative("principal", principal); err != nil {
		return err
	}
	if err := validation.RequireNonNegative("annualRate", annualRate); err != nil {
		return err
	}
	if termMonths <= 0 {
		return validation.NewInvalidInput("termMonths", float64(termMonths), "must be positive")
	}
	return nil
}
