package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/propforma/propforma/internal/analysis"
	"github.com/propforma/propforma/pkg/cache"
	"go.uber.org/zap"
)

const analyzeConfigYAML = `---
common:
  price: 450000
  downPaymentPct: 0.20
  interestRate: 6.5
  termYears: 30
  propertyTaxRate: 0.017
  insuranceAnnual: 1800
  rentMonthly: 2600
  timelineYears: 10
  appreciationRate: 0.055
  inflationRate: 0.03
  startDate: "2026-01"
scenarios:
  - name: rental
    active: true
`

func TestHandleAnalyzeSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	rr := performAnalyze(t, handler, analyzeConfigYAML)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Cached {
		t.Fatal("first request must not be served from cache")
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}

	var results []analysis.ResultSet
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, expected 1", len(results))
	}

	got := results[0]
	if got.Scenario != "rental" {
		t.Errorf("Scenario = %q, expected rental", got.Scenario)
	}
	if math.Abs(got.PaymentMonthly-2275.44) > 0.01 {
		t.Errorf("PaymentMonthly = %v, expected ~2275.44", got.PaymentMonthly)
	}
	if math.Abs(got.LoanAmount-360000) > 0.01 {
		t.Errorf("LoanAmount = %v, expected 360000", got.LoanAmount)
	}
	if len(got.Ledger) != 10 {
		t.Errorf("len(Ledger) = %d, expected 10", len(got.Ledger))
	}
	if got.IRRAnnual == nil {
		t.Error("expected an IRR for the sample deal")
	}
}

func TestHandleAnalyzeCacheHit(t *testing.T) {
	memory := cache.NewMemory()
	handler := NewHandler(zap.NewNop(), nil, memory, "")

	first := performAnalyze(t, handler, analyzeConfigYAML)
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", first.Code, first.Body.String())
	}
	if memory.Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", memory.Len())
	}

	second := performAnalyze(t, handler, analyzeConfigYAML)
	if second.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", second.Code, second.Body.String())
	}

	var firstResp, secondResp analyzeResponse
	if err := json.Unmarshal(first.Body.Bytes(), &firstResp); err != nil {
		t.Fatalf("failed to decode first response: %v", err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &secondResp); err != nil {
		t.Fatalf("failed to decode second response: %v", err)
	}

	if firstResp.Cached {
		t.Error("first request must not be cached")
	}
	if !secondResp.Cached {
		t.Error("second identical request must be served from cache")
	}
	if string(firstResp.Results) != string(secondResp.Results) {
		t.Error("cached results differ from computed results")
	}
}

func TestHandleAnalyzeJSONSharesCacheWithYAML(t *testing.T) {
	memory := cache.NewMemory()
	handler := NewHandler(zap.NewNop(), nil, memory, "")

	yamlRR := performAnalyze(t, handler, analyzeConfigYAML)
	if yamlRR.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", yamlRR.Code, yamlRR.Body.String())
	}

	jsonBody := `{
  "common": {
    "price": 450000,
    "downPaymentPct": 0.20,
    "interestRate": 6.5,
    "termYears": 30,
    "propertyTaxRate": 0.017,
    "insuranceAnnual": 1800,
    "rentMonthly": 2600,
    "timelineYears": 10,
    "appreciationRate": 0.055,
    "inflationRate": 0.03,
    "startDate": "2026-01"
  },
  "scenarios": [{"name": "rental", "active": true}]
}`
	jsonRR := performAnalyze(t, handler, jsonBody)
	if jsonRR.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", jsonRR.Code, jsonRR.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(jsonRR.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Cached {
		t.Error("JSON body describing the same deal must hit the YAML entry")
	}
	if memory.Len() != 1 {
		t.Errorf("expected one cached entry, got %d", memory.Len())
	}
}

func TestHandleAnalyzeWarnings(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	configYAML := `---
common:
  price: 450000
  interestRate: 6.5
  rentMonthly: 0
  startDate: "2026-01"
`

	rr := performAnalyze(t, handler, configYAML)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	found := false
	for _, warning := range resp.Warnings {
		if strings.Contains(warning, "zero rent") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a zero-rent warning, got %v", resp.Warnings)
	}
}

func TestHandleAnalyzeSolveDirectives(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	configYAML := analyzeConfigYAML + `solve:
  - field: rent
    goal: cashflow
`

	rr := performAnalyze(t, handler, configYAML)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	var results []analysis.ResultSet
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, expected 1", len(results))
	}
	if len(results[0].Solves) != 1 {
		t.Fatalf("len(Solves) = %d, expected 1", len(results[0].Solves))
	}

	solve := results[0].Solves[0]
	if solve.Field != "rent" || solve.Goal != "cashflow" {
		t.Errorf("solve = %s/%s, expected rent/cashflow", solve.Field, solve.Goal)
	}
	if !solve.Converged {
		t.Errorf("expected the sample deal to converge, got notes %v", solve.Notes)
	}
	if solve.Value <= solve.Original {
		t.Errorf("break-even rent %v should exceed the original %v", solve.Value, solve.Original)
	}
}

func TestHandleAnalyzeMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleAnalyzeBodyTooLarge(t *testing.T) {
	cfg := defaultConfig()
	cfg.SetBodySizeBytes(64)
	handler := NewHandler(zap.NewNop(), cfg, nil, "")

	rr := performAnalyze(t, handler, strings.Repeat("a", 128))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "request body exceeds limit") {
		t.Fatalf("expected body limit error message, got %q", resp["error"])
	}
}

func TestHandleAnalyzeEmptyBody(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	rr := performAnalyze(t, handler, "   \n")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp["error"] != "empty request body" {
		t.Fatalf("expected empty body error, got %q", resp["error"])
	}
}

func TestHandleAnalyzeInvalidYAML(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	rr := performAnalyze(t, handler, "common: [")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "error reading config data") {
		t.Fatalf("expected parse error message, got %q", resp["error"])
	}
}

func TestHandleAnalyzeInvalidDeal(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	configYAML := `---
common:
  price: -5
  interestRate: 6.5
  rentMonthly: 2600
  startDate: "2026-01"
`

	rr := performAnalyze(t, handler, configYAML)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "price") {
		t.Fatalf("expected price validation error, got %q", resp["error"])
	}
}

func TestHandleDefaults(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/defaults", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp defaultsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Deal.DownPaymentPct != 0.20 {
		t.Errorf("DownPaymentPct = %v, expected 0.20", resp.Deal.DownPaymentPct)
	}
	if resp.Deal.TermYears != 30 {
		t.Errorf("TermYears = %v, expected 30", resp.Deal.TermYears)
	}
	if resp.Deal.RepairsMonthly != 150 {
		t.Errorf("RepairsMonthly = %v, expected 150", resp.Deal.RepairsMonthly)
	}
	if resp.Deal.StartDate == "" {
		t.Error("expected a start date in the defaults")
	}
	if resp.Benchmark.AnnualReturn != 0.07 {
		t.Errorf("AnnualReturn = %v, expected 0.07", resp.Benchmark.AnnualReturn)
	}
	if resp.Benchmark.FeeBps != 4 {
		t.Errorf("FeeBps = %v, expected 4", resp.Benchmark.FeeBps)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Fatalf("version = %q, expected 1.2.3", resp["version"])
	}
}

func TestHandleVersionDefaultsToDev(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "  ")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "dev" {
		t.Fatalf("version = %q, expected dev", resp["version"])
	}
}

func TestHandleHealth(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("status = %q, expected ok", resp["status"])
	}
}

func performAnalyze(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}
