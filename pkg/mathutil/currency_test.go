package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Payment rounds up", 2275.444885, 2275.44},
		{"Midpoint rounds away from zero", 1.235, 1.24},
		{"Below midpoint rounds down", 1.234, 1.23},
		{"Already at cents", 453.50, 453.50},
		{"Negative midpoint", -1.235, -1.24},
		{"Sub-cent washes out", 0.004, 0.00},
		{"Negative sub-cent", -0.004, 0.00},
		{"Large balance", 355976.189, 355976.19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestZeroSignPredicates(t *testing.T) {
	tests := []struct {
		name       string
		input      float64
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Exact zero", 0.0, true, false, false},
		{"Sub-cent positive", 0.004, true, false, false},
		{"Sub-cent negative", -0.004, true, false, false},
		{"Tolerance boundary", 0.01, true, false, false},
		{"Negative tolerance boundary", -0.01, true, false, false},
		{"Two cents", 0.02, false, true, false},
		{"Minus two cents", -0.02, false, false, true},
		{"Monthly rent", 2600.0, false, true, false},
		{"Yearly shortfall", -11760.52, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZero(tt.input); got != tt.isZero {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, got, tt.isZero)
			}
			if got := IsPositive(tt.input); got != tt.isPositive {
				t.Errorf("IsPositive(%v) = %v, expected %v", tt.input, got, tt.isPositive)
			}
			if got := IsNegative(tt.input); got != tt.isNegative {
				t.Errorf("IsNegative(%v) = %v, expected %v", tt.input, got, tt.isNegative)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Zero", 0.0, true},
		{"Typical price", 450000.0, true},
		{"Negative flow", -11760.52, true},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
		{"Negative infinity", math.Inf(-1), false},
		{"Max float", math.MaxFloat64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsFinite(tt.input)
			if result != tt.expected {
				t.Errorf("IsFinite(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Equal payments", 2275.44, 2275.44, 0.01, true},
		{"A cent apart at cent tolerance", 2275.44, 2275.45, 0.01, true},
		{"Two cents apart at cent tolerance", 2275.44, 2275.46, 0.01, false},
		{"Negative balances close", -360000.0, -360000.5, 1.0, true},
		{"Zero tolerance exact", 90000.0, 90000.0, 0.0, true},
		{"Zero tolerance off by epsilon", 90000.0, 90000.001, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithinTolerance(tt.val1, tt.val2, tt.tolerance)
			if result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestWithinRelativeTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Exactly equal", 240000.0, 240000.0, 1e-6, true},
		{"Within relative tolerance", 240000.0, 240000.1, 1e-6, true},
		{"Outside relative tolerance", 240000.0, 240001.0, 1e-6, false},
		{"Near zero uses absolute", 0.0, 1e-7, 1e-6, true},
		{"Near zero outside absolute", 0.0, 1e-5, 1e-6, false},
		{"Negative values", -240000.0, -240000.1, 1e-6, true},
		{"Sign mismatch", 100.0, -100.0, 1e-6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithinRelativeTolerance(tt.val1, tt.val2, tt.tolerance)
			if result != tt.expected {
				t.Errorf("WithinRelativeTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{"Down payment share of price", 90000.0, 450000.0, 20.0},
		{"Principal share of payment", 455.09, 2275.44, 20.000088},
		{"Return larger than outlay", 215283.62, 90000.0, 239.204022},
		{"Zero value", 0.0, 450000.0, 0.0},
		{"Zero total guards division", 90000.0, 0.0, 0.0},
		{"Negative value", -11760.52, 90000.0, -13.067244},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePercentage(tt.value, tt.total)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("CalculatePercentage(%v, %v) = %v, expected %v",
					tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"Twenty percent down", 450000.0, 20.0, 90000.0},
		{"Six percent sale costs", 778984.39, 6.0, 46739.0634},
		{"Full value", 90000.0, 100.0, 90000.0},
		{"Zero percent", 90000.0, 0.0, 0.0},
		{"Percentage of zero", 0.0, 20.0, 0.0},
		{"Negative base", -1000.0, 24.0, -240.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(tt.value, tt.percentage)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("ApplyPercentage(%v, %v) = %v, expected %v",
					tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}
