package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"procurement-dashboard/internal/errors"
	"procurement-dashboard/internal/export"
	"procurement-dashboard/internal/observability"
	"procurement-dashboard/internal/services"
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleCategorySpend(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.CategorySpend()

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleSupplierPerformance(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.SupplierPerformance()

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandlePriceVariance(w http.ResponseWriter, r *http.Request) {

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			requestID := observability.GetRequestID(r.Context())
			errors.WriteError(w, h.logger, errors.BadRequest("limit must be a positive integer"), requestID)
			return
		}
		limit = parsed
	}

	data := h.analytics.PriceVariance(limit)

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleScenarios(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Scenarios()

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleSensitivity(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Sensitivity()

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleUncertainty(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Uncertainty()

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleRecommendations(w http.ResponseWriter, r *http.Request) {

	constrained := false
	if raw := r.URL.Query().Get("constrained"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			requestID := observability.GetRequestID(r.Context())
			errors.WriteError(w, h.logger, errors.BadRequest("constrained must be a boolean"), requestID)
			return
		}
		constrained = parsed
	}

	data := h.analytics.Recommendations(constrained)

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleMaverickSpend(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.MaverickSpend()

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {

	report := h.analytics.Report()
	if report == nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.NotFound("no analysis run available"), requestID)
		return
	}

	errors.WriteSuccess(w, report)
}

func (h *APIHandlers) HandleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	report := h.analytics.Report()
	if report == nil {
		errors.WriteError(w, h.logger, errors.NotFound("no analysis run available"), requestID)
		return
	}

	filename := fmt.Sprintf("procurement-report-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteWorkbook(w, report); err != nil {
		h.logger.Error("workbook export failed",
			"error", err,
			"request_id", requestID,
		)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
