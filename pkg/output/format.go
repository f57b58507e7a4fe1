// Package output provides utilities for formatting and displaying analysis
// results.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/propforma/propforma/internal/analysis"
	"github.com/propforma/propforma/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []analysis.ResultSet) {
	FprettyFormat(os.Stdout, results)
}

// FprettyFormat writes the human-readable tables to the given writer.
func FprettyFormat(w io.Writer, results []analysis.ResultSet) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Scenario)
		_, _ = p.Fprintf(w, "Start %s, %d year horizon | Loan %s at %s/month | Initial outlay %s\n",
			result.StartDate, result.TimelineYears,
			format.Currency(result.LoanAmount),
			format.Currency(result.PaymentMonthly),
			format.Currency(result.InitialOutlay),
		)
		_, _ = p.Fprintf(w, "Sale price %s | Net sale proceeds %s | Appreciation %s\n",
			format.Currency(result.SalePrice),
			format.Currency(result.NetSaleProceeds),
			format.Currency(result.Appreciation),
		)

		fmt.Fprintf(w, "Year | Date    | Cash Flow | Principal | Interest | Balance | Tax Savings | Property Value | Benchmark\n")
		fmt.Fprintf(w, "____ | ____    | _________ | _________ | ________ | _______ | ___________ | ______________ | _________\n")
		for _, entry := range result.Ledger {
			_, _ = p.Fprintf(w, "%4d | %s | $%.2f | $%.2f | $%.2f | $%.2f | $%.2f | $%.2f | $%.2f\n",
				entry.Year, entry.Date,
				entry.CashFlowNominal, entry.PrincipalPaid, entry.InterestPaid,
				entry.LoanBalance, entry.TaxSavings, entry.PropertyValue,
				entry.BenchmarkMatched,
			)
		}

		_, _ = p.Fprintf(w, "Totals: cash flow %s, tax savings %s, principal %s, interest %s\n",
			format.Currency(result.CashFlowTotal),
			format.Currency(result.TaxSavingsTotal),
			format.Currency(result.PrincipalPaid),
			format.Currency(result.InterestPaid),
		)
		_, _ = p.Fprintf(w, "Total ROI %s (%s) | IRR %s\n",
			format.Currency(result.TotalROI), result.ROIDisplay(), result.IRRDisplay(),
		)
		if result.IRRNote != "" {
			fmt.Fprintf(w, "IRR note: %s\n", result.IRRNote)
		}
		_, _ = p.Fprintf(w, "Property wealth %s vs matched benchmark %s | difference %s\n",
			format.Currency(result.PropertyWealth),
			format.Currency(result.BenchmarkMatched),
			result.DeltaDisplay(),
		)

		for _, solve := range result.Solves {
			converged := "converged"
			if !solve.Converged {
				converged = "not converged"
			}
			fmt.Fprintf(w, "Solver: %s for %s target %s: %s (from %s), %d iterations, %s\n",
				solve.Field, solve.Goal, solve.TargetDisplay,
				solve.ValueDisplay, solve.OriginalDisplay,
				solve.Iterations, converged,
			)
			for _, note := range solve.Notes {
				fmt.Fprintf(w, "  note: %s\n", note)
			}
		}

		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []analysis.ResultSet) {
	fmt.Print(CsvString(results))
}

// CsvString renders one row per scenario-year with headers first.
func CsvString(results []analysis.ResultSet) string {
	var builder strings.Builder
	builder.WriteString(`"scenario","year","date","cashFlowNominal","cashFlowReal","principalPaid","interestPaid","loanBalance","taxSavings","propertyValue","benchmarkInitialOnly","benchmarkMatched"`)
	builder.WriteString("\n")

	for _, result := range results {
		for _, entry := range result.Ledger {
			fmt.Fprintf(&builder, `"%s","%d","%s","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`,
				result.Scenario, entry.Year, entry.Date,
				entry.CashFlowNominal, entry.CashFlowReal,
				entry.PrincipalPaid, entry.InterestPaid, entry.LoanBalance,
				entry.TaxSavings, entry.PropertyValue,
				entry.BenchmarkInitial, entry.BenchmarkMatched,
			)
			builder.WriteString("\n")
		}
	}
	return builder.String()
}
