package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/vehicle-afford/internal/affordability"
	"github.com/iwvelando/vehicle-afford/internal/backtest"
	"github.com/iwvelando/vehicle-afford/internal/cache"
	"github.com/iwvelando/vehicle-afford/internal/cost"
	"github.com/iwvelando/vehicle-afford/internal/forecast"
	"github.com/iwvelando/vehicle-afford/internal/netpay"
	"github.com/iwvelando/vehicle-afford/internal/optimizer"
	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/internal/recommend"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	serviceName     = "Toyota Vehicle Affordability API"
	requestIDHeader = "X-Request-ID"
	cacheHeader     = "X-Cache"
	maxYearsAhead   = 30
	disclaimer      = "All estimates are projections based on available data and models. Actual values may vary."
)

type requestIDKey struct{}

// Options configures the handler. Zero values select defaults; a nil Cache or
// RateLimiter disables that feature.
type Options struct {
	Version        string
	MaxBodySize    int64
	AllowedOrigins []string
	ForecastYears  int
	Cache          cache.Cache
	RateLimiter    *RateLimiter
	Now            func() time.Time
}

type handler struct {
	logger      *zap.Logger
	tables      *reference.Tables
	maxBodySize int64
	version     string
	years       int
	cache       cache.Cache
	limiter     *RateLimiter
	now         func() time.Time

	estimator  *netpay.Estimator
	calculator *cost.Calculator
	scorer     *affordability.Scorer
	forecaster *forecast.Forecaster
	ranker     *recommend.Ranker
	backtester *backtest.Backtester
	pricer     *optimizer.Runner
}

// NewHandler constructs the HTTP handler that serves the affordability API.
func NewHandler(logger *zap.Logger, tables *reference.Tables, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = reference.Default()
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = constants.DefaultAllowedOrigins
	}
	if opts.ForecastYears <= 0 {
		opts.ForecastYears = constants.DefaultForecastYears
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		tables:      tables,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		years:       opts.ForecastYears,
		cache:       opts.Cache,
		limiter:     opts.RateLimiter,
		now:         opts.Now,
		estimator:   netpay.NewEstimator(logger, tables),
		calculator:  cost.NewCalculator(logger, tables),
		scorer:      affordability.NewScorer(logger, tables),
		forecaster:  forecast.NewForecaster(logger, tables),
		ranker:      recommend.NewRanker(logger, tables),
		backtester:  backtest.NewBacktester(logger, tables),
		pricer:      optimizer.NewRunner(logger, tables),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/api/toyota-models", h.handleModels)
	mux.HandleFunc("/api/data-sources", h.handleDataSources)

	mux.Handle("/api/estimate-salary", h.post(h.handleEstimateSalary))
	mux.Handle("/api/calculate-monthly-cost", h.post(h.handleMonthlyCost))
	mux.Handle("/api/forecast-value", h.post(h.handleForecastValue))
	mux.Handle("/api/affordability-index", h.post(h.handleAffordability))
	mux.Handle("/api/recommendations", h.post(h.handleRecommendations))
	mux.Handle("/api/backtest", h.post(h.handleBacktest))
	mux.Handle("/api/max-affordable-price", h.post(h.handleMaxPrice))

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader, cacheHeader},
		AllowCredentials: true,
	})

	return c.Handler(h.requestID(h.recoverPanic(h.rateLimit(mux))))
}

// bodyHandler receives the already size-limited request body.
type bodyHandler func(w http.ResponseWriter, r *http.Request, body []byte)

// post enforces the method and body limit, then serves from the cache when possible.
func (h *handler) post(next bodyHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), "server.post")
				return
			}
			h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err), "server.post")
			return
		}

		if h.cache == nil {
			next(w, r, body)
			return
		}

		key := cache.Key(r.URL.RequestURI(), body)
		if cached, ok := h.cache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(cacheHeader, "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, cached)
			return
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set(cacheHeader, "MISS")
		next(rec, r, body)
		if rec.status == http.StatusOK {
			if err := h.cache.Set(r.Context(), key, rec.buf.String()); err != nil {
				h.requestLogger(r).Warn("failed to store cached response",
					zap.String("op", "server.post"),
					zap.Error(err),
				)
			}
		}
	})
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	rw.buf.Write(p)
	return rw.ResponseWriter.Write(p)
}

func (h *handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (h *handler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.requestLogger(r).Error("recovered from panic",
					zap.String("op", "server.recoverPanic"),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *handler) requestLogger(r *http.Request) *zap.Logger {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return h.logger.With(zap.String("request_id", id))
	}
	return h.logger
}

func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.respondErrorWithOp(w, r, http.StatusNotFound, "not found", "server.handleRoot")
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": serviceName,
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
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

type modelEntry struct {
	Name  string   `json:"name"`
	Trims []string `json:"trims"`
}

func (h *handler) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	models := make([]modelEntry, 0, len(h.tables.Vehicles))
	for _, v := range h.tables.Vehicles {
		models = append(models, modelEntry{Name: v.Model, Trims: v.Trims})
	}
	h.writeJSON(w, http.StatusOK, map[string][]modelEntry{"models": models})
}

type dataSource struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	RefreshCadence string `json:"refresh_cadence"`
	Description    string `json:"description"`
}

var dataSources = []dataSource{
	{Name: "Salary Data", Type: "Licensed", RefreshCadence: "Daily", Description: "Federal brackets, state rate and FICA used for net pay"},
	{Name: "Vehicle Pricing", Type: "Licensed", RefreshCadence: "Weekly", Description: "Base prices, trim multipliers and residual values"},
	{Name: "Interest Rates", Type: "Public API", RefreshCadence: "Daily", Description: "Market base APR before credit adjustment"},
}

func (h *handler) handleDataSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"sources":    dataSources,
		"disclaimer": disclaimer,
	})
}

func (h *handler) handleEstimateSalary(w http.ResponseWriter, r *http.Request, body []byte) {
	const op = "server.handleEstimateSalary"

	var fin profile.Financial
	if !h.decode(w, r, body, &fin, op) {
		return
	}
	if !h.validate(w, r, profile.Request{Profile: fin}, op) {
		return
	}

	result := h.estimator.EstimateWithFixedTime(fin.Salary, fin.EmploymentSubsidies, fin.TransportationSubsidy, h.now())
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleMonthlyCost(w http.ResponseWriter, r *http.Request, body []byte) {
	const op = "server.handleMonthlyCost"

	req, ok := h.decodeRequest(w, r, body, op)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.calculator.Calculate(req.Profile, req.Preferences, req.Scenario))
}

func (h *handler) handleForecastValue(w http.ResponseWriter, r *http.Request, body []byte) {
	const op = "server.handleForecastValue"

	years := h.years
	if raw := r.URL.Query().Get("years_ahead"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > maxYearsAhead {
			h.respondErrorWithOp(w, r, http.StatusBadRequest,
				fmt.Sprintf("years_ahead must be an integer between 0 and %d, got %q", maxYearsAhead, raw), op)
			return
		}
		years = parsed
	}

	var req profile.Request
	if !h.decode(w, r, body, &req, op) {
		return
	}
	req.Normalize()

	h.writeJSON(w, http.StatusOK, h.forecaster.ForecastWithFixedTime(req.Preferences, req.Scenario, years, h.now()))
}

func (h *handler) handleAffordability(w http.ResponseWriter, r *http.Request, body []byte) {
	const op = "server.handleAffordability"

	req, ok := h.decodeRequest(w, r, body, op)
	if !ok {
		return
	}
	monthly := h.calculator.Calculate(req.Profile, req.Preferences, req.Scenario).CostBreakdown.Total
	h.writeJSON(w, http.StatusOK, h.scorer.Score(req.Profile, req.Preferences, &monthly))
}

func (h *handler) handleRecommendations(w http.ResponseWriter, r *http.Request, body []byte) {
	const op = "server.handleRecommendations"

	req, ok := h.decodeRequest(w, r, body, op)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.ranker.Recommend(req.Profile, req.Preferences, req.Scenario))
}

type backtestRequest struct {
	Models    []string `json:"models"`
	BasePrice float64  `json:"base_price"`
}

func (h *handler) handleBacktest(w http.ResponseWriter, r *http.Request, body []byte) {
	const op = "server.handleBacktest"

	var req backtestRequest
	if !h.decode(w, r, body, &req, op) {
		return
	}
	if req.BasePrice < 0 {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "base_price must not be negative", op)
		return
	}

	result, err := h.backtester.Batch(req.Models, req.BasePrice, h.now())
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleMaxPrice(w http.ResponseWriter, r *http.Request, body []byte) {
	const op = "server.handleMaxPrice"

	req, ok := h.decodeRequest(w, r, body, op)
	if !ok {
		return
	}
	summary, err := h.pricer.MaxAffordablePrice(req.Profile, req.Preferences, req.Scenario)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, optimizer.ErrNoCeiling) {
			status = http.StatusUnprocessableEntity
		}
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, body []byte, op string) (profile.Request, bool) {
	var req profile.Request
	if !h.decode(w, r, body, &req, op) {
		return req, false
	}
	req.Normalize()
	if !h.validate(w, r, req, op) {
		return req, false
	}
	return req, true
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, body []byte, dst any, op string) bool {
	if len(bytes.TrimSpace(body)) == 0 {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "request body is empty", op)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) validate(w http.ResponseWriter, r *http.Request, req profile.Request, op string) bool {
	warnings, err := req.Validate(h.tables.Models())
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return false
	}
	if len(warnings) > 0 {
		h.requestLogger(r).Warn("request accepted with warnings",
			zap.String("op", op),
			zap.Strings("warnings", warnings),
		)
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.requestLogger(r).Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
