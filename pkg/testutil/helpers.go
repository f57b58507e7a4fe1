// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/propforma/propforma/internal/analysis"
)

// FindResult finds a scenario's result set by name in the results slice.
// Returns a pointer into the slice if found, nil otherwise.
func FindResult(results []analysis.ResultSet, name string) *analysis.ResultSet {
	for i := range results {
		if results[i].Scenario == name {
			return &results[i]
		}
	}
	return nil
}
