package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "maizeintel/internal/errors"
	"maizeintel/internal/middleware"
	api "maizeintel/pkg/contracts/api/v1"
)

// AnalyticsHandler serves the analytics reports with RFC 7807 errors
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	validator    *middleware.QueryValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, validator *middleware.QueryValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "analytics_handler")),
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/national-summary", h.NationalSummary)
	r.Get("/production", h.ProductionSummary)
	r.Get("/prices", h.PriceAnalysis)
	r.Get("/storage", h.StorageStatus)
	r.Get("/seasonal", h.SeasonalPattern)
	r.Get("/forecast-accuracy", h.ForecastAccuracy)
	r.Get("/supply-demand", h.SupplyDemandBalance)
	r.Get("/opportunities", h.MarketOpportunities)
	r.Get("/dashboard", h.Dashboard)

	return r
}

// respond renders v or routes err through the error handler
func (h *AnalyticsHandler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, v)
}

// NationalSummary handles GET /api/v1/analytics/national-summary
func (h *AnalyticsHandler) NationalSummary(w http.ResponseWriter, r *http.Request) {
	var req api.NationalSummaryRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	report, err := h.service.NationalSummary(r.Context(), req.Period)
	h.respond(w, r, report, err)
}

// ProductionSummary handles GET /api/v1/analytics/production
func (h *AnalyticsHandler) ProductionSummary(w http.ResponseWriter, r *http.Request) {
	var req api.ProductionSummaryRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	report, err := h.service.ProductionSummary(r.Context(), req.Region, req.Period)
	h.respond(w, r, report, err)
}

// PriceAnalysis handles GET /api/v1/analytics/prices
func (h *AnalyticsHandler) PriceAnalysis(w http.ResponseWriter, r *http.Request) {
	var req api.PriceAnalysisRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	report, err := h.service.PriceAnalysis(r.Context(), req.Market, req.Grade)
	h.respond(w, r, report, err)
}

// StorageStatus handles GET /api/v1/analytics/storage
func (h *AnalyticsHandler) StorageStatus(w http.ResponseWriter, r *http.Request) {
	var req api.StorageStatusRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	report, err := h.service.StorageStatus(r.Context(), req.Warehouse)
	h.respond(w, r, report, err)
}

// SeasonalPattern handles GET /api/v1/analytics/seasonal
func (h *AnalyticsHandler) SeasonalPattern(w http.ResponseWriter, r *http.Request) {
	var req api.SeasonalPatternRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	report, err := h.service.SeasonalPattern(r.Context(), req.Crop)
	h.respond(w, r, report, err)
}

// ForecastAccuracy handles GET /api/v1/analytics/forecast-accuracy
func (h *AnalyticsHandler) ForecastAccuracy(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ForecastAccuracy(r.Context())
	h.respond(w, r, report, err)
}

// SupplyDemandBalance handles GET /api/v1/analytics/supply-demand
func (h *AnalyticsHandler) SupplyDemandBalance(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SupplyDemandBalance(r.Context())
	h.respond(w, r, report, err)
}

// MarketOpportunities handles GET /api/v1/analytics/opportunities
func (h *AnalyticsHandler) MarketOpportunities(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.MarketOpportunities(r.Context())
	h.respond(w, r, report, err)
}

// Dashboard handles GET /api/v1/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	h.respond(w, r, dashboard, err)
}
