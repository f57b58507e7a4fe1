// Package server exposes the deal analysis pipeline as a JSON HTTP API with
// a pluggable result cache.
package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/propforma/propforma/internal/analysis"
	"github.com/propforma/propforma/internal/config"
	"github.com/propforma/propforma/internal/optimizer"
	"github.com/propforma/propforma/pkg/cache"
	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/validation"
	"go.uber.org/zap"
)

type handler struct {
	logger       *zap.Logger
	maxBodyBytes int64
	cacheTTL     time.Duration
	cache        cache.Repository
	version      string
}

// NewHandler constructs the HTTP handler that serves the analysis API. A nil
// cfg uses defaults; a nil repo falls back to the in-memory cache.
func NewHandler(logger *zap.Logger, cfg *Config, repo cache.Repository, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = defaultConfig()
	}
	if repo == nil {
		repo = cache.NewMemory()
	}

	maxBodyBytes := cfg.BodySizeBytes()
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.DefaultMaxBodyBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
		cacheTTL:     cfg.CacheTTL(),
		cache:        repo,
		version:      trimmedVersion,
	}

	mux := http.NewServeMux()

	// Analysis API endpoint (JSON or YAML body)
	mux.HandleFunc("/api/analyze", h.handleAnalyze)

	// Documented deal defaults for form priming
	mux.HandleFunc("/api/defaults", h.handleDefaults)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Liveness probe
	mux.HandleFunc("/healthz", h.handleHealth)

	return mux
}

type analyzeResponse struct {
	Results  json.RawMessage `json:"results"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
	Cached   bool            `json:"cached"`
}

type dealDefaults struct {
	DownPaymentPct  float64 `json:"downPaymentPct"`
	TermYears       int     `json:"termYears"`
	TimelineYears   int     `json:"timelineYears"`
	PropertyTaxRate float64 `json:"propertyTaxRate"`
	InsuranceAnnual float64 `json:"insuranceAnnual"`
	InflationRate   float64 `json:"inflationRate"`
	SaleCostPct     float64 `json:"saleCostPct"`
	VacancyPct      float64 `json:"vacancyPct"`
	ManagementPct   float64 `json:"managementPct"`
	RepairsMonthly  float64 `json:"repairsMonthly"`
	WarrantyMonthly float64 `json:"warrantyMonthly"`
	MarginalTaxRate float64 `json:"marginalTaxRate"`
	BuildingPct     float64 `json:"buildingPct"`
	CostSegBonusPct float64 `json:"costSegBonusPct"`
	StartDate       string  `json:"startDate"`
}

type benchmarkDefaults struct {
	AnnualReturn   float64 `json:"annualReturn"`
	AnnualDividend float64 `json:"annualDividend"`
	FeeBps         float64 `json:"feeBps"`
}

type defaultsResponse struct {
	Deal      dealDefaults      `json:"deal"`
	Benchmark benchmarkDefaults `json:"benchmark"`
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodyBytes))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err))
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.respondError(w, http.StatusBadRequest, "empty request body")
		return
	}

	conf, err := config.LoadConfigurationFromReader(bytes.NewReader(body))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	warnings := conf.ValidateConfiguration()

	key, err := requestKey(conf)
	if err != nil {
		h.logger.Warn("failed to derive cache key",
			zap.String("op", "server.handleAnalyze"),
			zap.Error(err),
		)
		key = ""
	}

	if key != "" {
		if cached, ok := h.cache.Get(r.Context(), key); ok {
			h.logger.Debug("returning cached analysis",
				zap.String("op", "server.handleAnalyze"),
				zap.String("key", key),
			)
			h.writeJSON(w, http.StatusOK, analyzeResponse{
				Results:  json.RawMessage(cached),
				Warnings: warnings,
				Duration: time.Since(start).String(),
				Cached:   true,
			})
			return
		}
	}

	results, err := analysis.RunScenarios(h.logger, *conf)
	if err != nil {
		status := http.StatusInternalServerError
		if validation.IsInvalidInput(err) {
			status = http.StatusBadRequest
		}
		h.respondError(w, status, err.Error())
		return
	}

	if conf.HasSolveDirectives() {
		runner, err := optimizer.NewRunner(h.logger, conf)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize solver: %v", err))
			return
		}
		solveResult, err := runner.Run()
		if err != nil {
			status := http.StatusInternalServerError
			if validation.IsInvalidInput(err) {
				status = http.StatusBadRequest
			}
			h.respondError(w, status, fmt.Sprintf("solver execution failed: %v", err))
			return
		}
		if !solveResult.Empty() {
			solveResult.Apply(results)
		}
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode results: %v", err))
		return
	}

	if key != "" {
		if err := h.cache.Set(r.Context(), key, string(resultsJSON), h.cacheTTL); err != nil {
			h.logger.Warn("failed to cache analysis results",
				zap.String("op", "server.handleAnalyze"),
				zap.Error(err),
			)
		}
	}

	elapsed := time.Since(start)
	h.logger.Info("analysis computed",
		zap.String("op", "server.handleAnalyze"),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Results:  resultsJSON,
		Warnings: warnings,
		Duration: elapsed.String(),
		Cached:   false,
	})
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var conf config.Configuration
	conf.ApplyDefaults()

	h.writeJSON(w, http.StatusOK, defaultsResponse{
		Deal: dealDefaults{
			DownPaymentPct:  conf.Common.DownPaymentPct,
			TermYears:       conf.Common.TermYears,
			TimelineYears:   conf.Common.TimelineYears,
			PropertyTaxRate: conf.Common.PropertyTaxRate,
			InsuranceAnnual: conf.Common.InsuranceAnnual,
			InflationRate:   conf.Common.InflationRate,
			SaleCostPct:     conf.Common.SaleCostPct,
			VacancyPct:      conf.Common.VacancyPct,
			ManagementPct:   conf.Common.ManagementPct,
			RepairsMonthly:  conf.Common.RepairsMonthly,
			WarrantyMonthly: conf.Common.WarrantyMonthly,
			MarginalTaxRate: conf.Common.MarginalTaxRate,
			BuildingPct:     conf.Common.BuildingPct,
			CostSegBonusPct: conf.Common.CostSegBonusPct,
			StartDate:       conf.Common.StartDate,
		},
		Benchmark: benchmarkDefaults{
			AnnualReturn:   conf.Benchmark.AnnualReturn,
			AnnualDividend: conf.Benchmark.AnnualDividend,
			FeeBps:         conf.Benchmark.FeeBps,
		},
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestKey derives the cache key for a parsed configuration. Hashing the
// canonical JSON form means YAML and JSON bodies that describe the same deal
// share an entry.
func requestKey(conf *config.Configuration) (string, error) {
	canonical, err := json.Marshal(conf)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleAnalyze")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("analysis request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
