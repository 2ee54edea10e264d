// Package handler implements the HTTP endpoints of the analysis API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
)

const (
	ServiceName = "ai-tailor"
	Version     = "0.2.0"
)

// AnalyzeRequest is the body of POST /analyze. Both texts must be present
// but may be empty; a missing or null use_llm defers to the server default.
type AnalyzeRequest struct {
	JobText    *string `json:"job_text" validate:"required"`
	ResumeText *string `json:"resume_text" validate:"required"`
	UseLLM     *bool   `json:"use_llm"`
}

// Analyzer runs one analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) analysis.Report
}

// CacheAdmin exposes the analysis cache for inspection.
type CacheAdmin interface {
	Stats() cache.Stats
	Invalidate(ctx context.Context) (int64, error)
}

// Handler serves the analysis endpoints.
type Handler struct {
	analyzer     Analyzer
	cache        CacheAdmin
	stats        StatsSource
	maxBodyBytes int64
	validate     *validator.Validate
	logger       *slog.Logger
}

// New creates a Handler. cache may be nil when caching is disabled and stats
// nil when no aggregator runs in this process.
func New(analyzer Analyzer, cache CacheAdmin, stats StatsSource, maxBodyBytes int64) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		analyzer:     analyzer,
		cache:        cache,
		stats:        stats,
		maxBodyBytes: maxBodyBytes,
		validate:     v,
		logger:       logger.WithComponent("api-handler"),
	}
}

// Root reports service identity.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": Version,
	})
}

// Analyze decodes and validates an AnalyzeRequest and returns the report.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := h.decodeAnalyzeRequest(w, r)
	if err != nil {
		logger.FromContext(ctx).Debug("rejected analyze request", "error", err)
		h.writeAppError(w, err)
		return
	}

	report := h.analyzer.Analyze(ctx, analysis.Request{
		JobText:    *req.JobText,
		ResumeText: *req.ResumeText,
		UseLLM:     req.UseLLM,
	})
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, error) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	var req AnalyzeRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return nil, classifyDecodeError(err)
	}
	if dec.More() {
		return nil, apperrors.New(apperrors.ErrMalformedBody, http.StatusBadRequest, "request body must be a single JSON object")
	}
	if err := h.validate.Struct(&req); err != nil {
		return nil, validationError(err)
	}
	return &req, nil
}

func classifyDecodeError(err error) error {
	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxErr):
		return apperrors.Newf(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge,
			"request body exceeds %d bytes", maxErr.Limit)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusUnprocessableEntity,
				"request body must be a JSON object, got %s", typeErr.Value)
		}
		return &FieldError{
			Fields: map[string]string{field: "must be " + typeName(typeErr.Type)},
		}
	case errors.Is(err, io.EOF):
		return apperrors.New(apperrors.ErrMalformedBody, http.StatusBadRequest, "request body is empty")
	default:
		return apperrors.Newf(apperrors.ErrMalformedBody, http.StatusBadRequest, "invalid JSON body: %v", err)
	}
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	default:
		return t.String()
	}
}

// CacheStats reports analysis cache effectiveness.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"enabled": true,
		"stats":   h.cache.Stats(),
	})
}

// CacheInvalidate drops every cached analysis.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"enabled": false, "deleted": 0})
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeAppError(w, apperrors.New(apperrors.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "cache unavailable"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"enabled": true, "deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fieldErr.Fields,
		})
		return
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.writeError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.writeError(w, apperrors.HTTPStatusCode(err), apperrors.ErrInternal.Error())
}
