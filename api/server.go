// Package api serves SKU comparisons and payload normalization over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/compare"
	"cloud-sku-compare/decision/normalize"
	skuerrors "cloud-sku-compare/pkg/errors"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Pinger reports backing store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
	CORSOrigins    []string
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxRequestSize: 10 * 1024 * 1024, // 10MB
		CORSOrigins:    []string{"*"},
	}
}

// Server is the HTTP API server
type Server struct {
	httpServer *http.Server
	service    *compare.Service
	normalizer *normalize.Normalizer
	store      Pinger
	config     *Config
	logger     zerolog.Logger
}

// NewServer creates a server. store may be nil when catalogs come from files.
func NewServer(service *compare.Service, normalizer *normalize.Normalizer, store Pinger, config *Config, logger zerolog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		service:    service,
		normalizer: normalizer,
		store:      store,
		config:     config,
		logger:     logger,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/providers", s.handleProviders)
		r.Post("/match", s.handleMatch)
		r.Post("/normalize", s.handleNormalize)
	})
	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info().Int("port", s.config.Port).Msg("SKU comparison API starting")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts server with graceful shutdown handling
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.logger.Info().Msg("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		allowed := false
		for _, o := range s.config.CORSOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "database not ready")
			return
		}
	}
	if len(s.service.Providers()) == 0 {
		s.jsonError(w, http.StatusServiceUnavailable, "no catalog loaded")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	loaded := s.service.Providers()
	names := make([]string, len(loaded))
	for i, p := range loaded {
		names[i] = string(p)
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"providers": names})
}

// =============================================================================
// MATCH ENDPOINT
// =============================================================================

// MatchRequest is the API request for a comparison
type MatchRequest struct {
	VCPU       int      `json:"vcpu"`
	RAMGB      float64  `json:"ram_gb"`
	Providers  []string `json:"providers,omitempty"`
	TopN       int      `json:"top_n,omitempty"`
	LivePrices bool     `json:"live_prices,omitempty"`
}

// MatchResponse is the API response for a comparison
type MatchResponse struct {
	ComparisonID string              `json:"comparison_id"`
	Requirement  catalog.Requirement `json:"requirement"`
	Currency     string              `json:"currency"`
	NoMatch      bool                `json:"no_match"`
	Providers    []ProviderMatches   `json:"providers"`
	Warnings     []string            `json:"warnings,omitempty"`
}

// ProviderMatches holds one provider's rows, best first
type ProviderMatches struct {
	Provider string     `json:"provider"`
	Name     string     `json:"name"`
	Matches  []MatchRow `json:"matches"`
}

// MatchRow is a single ranked SKU
type MatchRow struct {
	SkuID         string  `json:"sku"`
	Series        string  `json:"series,omitempty"`
	Region        string  `json:"region,omitempty"`
	VCPU          int     `json:"vcpu"`
	RAMGB         float64 `json:"ram_gb"`
	PricePerHour  *string `json:"price_per_hour"`
	PricePerMonth *string `json:"price_per_month"`
	Currency      string  `json:"currency,omitempty"`
	Distance      float64 `json:"distance"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	providers, err := catalog.ParseProviders(req.Providers)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Compare(r.Context(), compare.Request{
		Requirement: catalog.Requirement{VCPU: req.VCPU, RAMGB: req.RAMGB},
		Providers:   providers,
		TopN:        req.TopN,
		LivePrices:  req.LivePrices,
	})
	if err != nil {
		if skuerrors.IsInvalidRequirement(err) {
			s.jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("comparison failed: %v", err))
		return
	}

	s.jsonResponse(w, http.StatusOK, buildMatchResponse(result, providers))
}

func buildMatchResponse(result *compare.Result, providers []catalog.Provider) MatchResponse {
	if len(providers) == 0 {
		providers = catalog.AllProviders
	}

	resp := MatchResponse{
		ComparisonID: result.ID.String(),
		Requirement:  result.Requirement,
		Currency:     result.Currency,
		NoMatch:      result.Empty(),
		Providers:    make([]ProviderMatches, 0, len(providers)),
		Warnings:     result.Warnings,
	}
	for _, p := range providers {
		pm := ProviderMatches{Provider: string(p), Name: p.Display(), Matches: []MatchRow{}}
		for _, row := range result.ProviderRows(p) {
			pm.Matches = append(pm.Matches, MatchRow{
				SkuID:         row.SkuID,
				Series:        row.Series,
				Region:        row.Region,
				VCPU:          row.VCPU,
				RAMGB:         row.RAMGB,
				PricePerHour:  fixed(row.Hourly, 4),
				PricePerMonth: fixed(row.Monthly, 2),
				Currency:      row.Currency,
				Distance:      row.Distance,
			})
		}
		resp.Providers = append(resp.Providers, pm)
	}
	return resp
}

func fixed(d decimal.NullDecimal, places int32) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(places)
	return &s
}

// =============================================================================
// NORMALIZE ENDPOINT
// =============================================================================

// NormalizeRequest carries one raw provider payload
type NormalizeRequest struct {
	Provider string          `json:"provider"`
	Shape    string          `json:"shape,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// NormalizeResponse lists the records a payload yields
type NormalizeResponse struct {
	Provider string              `json:"provider"`
	Shape    string              `json:"shape"`
	Count    int                 `json:"count"`
	Eligible int                 `json:"eligible"`
	Records  []catalog.SkuRecord `json:"records"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	provider, err := catalog.ParseProvider(req.Provider)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	shape, err := normalize.ParseShape(req.Shape)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Payload) == 0 {
		s.jsonError(w, http.StatusBadRequest, "payload is required")
		return
	}

	records, err := s.normalizer.NormalizeRaw(provider, shape, req.Payload)
	if err != nil {
		s.jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	eligible := 0
	for _, rec := range records {
		if rec.Eligible() {
			eligible++
		}
	}
	s.jsonResponse(w, http.StatusOK, NormalizeResponse{
		Provider: string(provider),
		Shape:    string(shape),
		Count:    len(records),
		Eligible: eligible,
		Records:  records,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
