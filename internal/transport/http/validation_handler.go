package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "maizeintel/internal/errors"
	"maizeintel/internal/middleware"
	"maizeintel/internal/validation"
	api "maizeintel/pkg/contracts/api/v1"
)

// Export content types
const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ValidationHandler serves dataset validation reports
type ValidationHandler struct {
	service      ValidationServiceInterface
	validator    *middleware.QueryValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(service ValidationServiceInterface, validator *middleware.QueryValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "validation_handler")),
	}
}

// Routes returns the validation routes
func (h *ValidationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.ValidateAll)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/forecasts", h.ValidateForecasts)
	r.Get("/export", h.Export)

	return r
}

// ValidateAll handles GET /api/v1/validation
func (h *ValidationHandler) ValidateAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ValidateAll(r.Context())
	h.respond(w, r, results, err)
}

// ValidateForecasts handles GET /api/v1/validation/forecasts
func (h *ValidationHandler) ValidateForecasts(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ValidateForecasts(r.Context())
	h.respond(w, r, results, err)
}

func (h *ValidationHandler) respond(w http.ResponseWriter, r *http.Request, results map[string]*validation.Result, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.ValidationResponse{
		Valid:   validation.AllValid(results),
		Results: results,
	})
}

// Export handles GET /api/v1/validation/export?format=csv|xlsx&forecasts=bool
func (h *ValidationHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ValidationExportRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format := req.Format
	if format == "" {
		format = "csv"
	}
	forecasts, _ := strconv.ParseBool(req.Forecasts)

	dir, err := os.MkdirTemp("", "maize-validation-*")
	if err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("create export directory: %w", err))
		return
	}
	defer os.RemoveAll(dir)

	name := fmt.Sprintf("validation_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	path := filepath.Join(dir, name)
	if _, err := h.service.Export(r.Context(), path, forecasts); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("open export: %w", err))
		return
	}
	defer f.Close()

	contentType := contentTypeCSV
	if format == "xlsx" {
		contentType = contentTypeXLSX
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	h.logger.InfoContext(r.Context(), "validation export served",
		slog.String("format", format),
		slog.Bool("forecasts", forecasts))
	http.ServeContent(w, r, name, time.Time{}, f)
}
