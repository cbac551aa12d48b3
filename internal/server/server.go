// Package server exposes the dream calculator as a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/dream-calculator/internal/calculator"
	"github.com/iwvelando/dream-calculator/internal/metrics"
	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"go.uber.org/zap"
)

// Options tune the HTTP handler.
type Options struct {
	MaxBodySize    int64
	Version        string
	AllowedOrigins []string
}

const errNotFinite = "result is not a finite number"

type handler struct {
	logger      *zap.Logger
	service     *calculator.Service
	recorder    *metrics.Recorder
	maxBodySize int64
	version     string
}

type savingsBody struct {
	finance.ContributionPlan
	Currency string `json:"currency"`
}

type goalBody struct {
	finance.GoalPlan
	DreamName string `json:"dreamName"`
	Currency  string `json:"currency"`
}

type convertBody struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

type rateBody struct {
	Rate *float64 `json:"rate"`
}

// NewHandler constructs the router serving the calculator API.
func NewHandler(logger *zap.Logger, service *calculator.Service, recorder *metrics.Recorder, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NewRecorder("")
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handler{
		logger:      logger,
		service:     service,
		recorder:    recorder,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": http.StatusText(http.StatusNotFound)})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": http.StatusText(http.StatusMethodNotAllowed)})
	})

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", recorder.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/savings", h.handleSavings)
		r.Post("/goal", h.handleGoal)
		r.Post("/convert", h.handleConvert)
		r.Get("/rates", h.handleRates)
		r.Put("/rates/{code}", h.handleSetRate)
		r.Get("/selftest", h.handleSelfTest)
		r.Get("/version", h.handleVersion)
	})

	return r
}

// Run serves handler on cfg.Address until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, logger *zap.Logger, cfg *Config, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			zap.String("op", "server.Run"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySize", cfg.BodySizeBytes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server", zap.String("op", "server.Run"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		h.recorder.ObserveRequest(route, r.Method, ww.Status(), elapsed)

		h.logger.Debug("HTTP request",
			zap.String("op", "server.instrument"),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", elapsed),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleSavings(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSavings"
	var body savingsBody
	if !h.decodeBody(w, r, &body, op) {
		return
	}

	report, err := h.service.Savings(r.Context(), calculator.SavingsRequest{
		Plan:     body.ContributionPlan,
		Currency: body.Currency,
	})
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleGoal(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGoal"
	var body goalBody
	if !h.decodeBody(w, r, &body, op) {
		return
	}

	report, err := h.service.Goal(r.Context(), calculator.GoalRequest{
		DreamName: body.DreamName,
		Plan:      body.GoalPlan,
		Currency:  body.Currency,
	})
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConvert"
	var body convertBody
	if !h.decodeBody(w, r, &body, op) {
		return
	}

	conversion, err := h.service.Convert(body.Amount, body.From, body.To)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, conversion)
}

func (h *handler) handleRates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.RatesView())
}

func (h *handler) handleSetRate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetRate"
	var body rateBody
	if !h.decodeBody(w, r, &body, op) {
		return
	}
	if body.Rate == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing rate", op)
		return
	}

	if err := h.service.SetRate(chi.URLParam(r, "code"), *body.Rate); err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.RatesView())
}

func (h *handler) handleSelfTest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.SelfTest())
}

// decodeBody reads a size-limited JSON body into dst and reports the error
// to the client when it cannot.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	// Every service error is caused by the request: unknown currencies or
	// rate edits the table refuses.
	h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before sending any header, so a result that
// cannot be encoded (an overflow to ±Inf) becomes a 422 instead of an empty 200.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Warn("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Int("status", status),
			zap.Error(err),
		)
		msg := "failed to encode response"
		var unsupported *json.UnsupportedValueError
		if errors.As(err, &unsupported) {
			msg = errNotFinite
		}
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": msg})
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}
