package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// RFC 7807 problem types
const (
	TypeValidation    = "/errors/validation"
	TypeNotFound      = "/errors/not-found"
	TypeRateLimit     = "/errors/rate-limit"
	TypeInternal      = "/errors/internal"
	TypeTimeout       = "/errors/timeout"
	TypeDataNotFound  = "/errors/data/not-found"
	TypeDataCorrupted = "/errors/data/corrupted"
)

// problemKind is the response shape chosen for a class of failure
type problemKind struct {
	status int
	typ    string
	title  string
	code   string
}

var (
	kindTimeout       = problemKind{http.StatusGatewayTimeout, TypeTimeout, "Request Timeout", ""}
	kindDataCorrupted = problemKind{http.StatusUnprocessableEntity, TypeDataCorrupted, "Dataset Unreadable", CodeDataCorrupted}
	kindInternal      = problemKind{http.StatusInternalServerError, TypeInternal, "Internal Server Error", ""}
)

// appErrorKinds maps AppError types to responses; types absent here are internal errors
var appErrorKinds = map[ErrorType]problemKind{
	ErrTypeValidation: {http.StatusBadRequest, TypeValidation, "Validation Failed", CodeValidation},
	ErrTypeNotFound:   {http.StatusNotFound, TypeNotFound, "Resource Not Found", CodeNotFound},
	ErrTypeParsing:    kindDataCorrupted,
}

// apiErrorTitles overrides the status text title for some APIError codes
var apiErrorTitles = map[string]string{
	CodeValidation:      "Validation Failed",
	CodeDatasetNotFound: "Dataset Not Found",
}

// apiErrorTypes maps APIError codes to problem types
var apiErrorTypes = map[string]string{
	CodeValidation:      TypeValidation,
	CodeNotFound:        TypeNotFound,
	CodeDatasetNotFound: TypeDataNotFound,
	CodeDataCorrupted:   TypeDataCorrupted,
	CodeRateLimit:       TypeRateLimit,
}

// ErrorHandler renders every failure of the HTTP API as problem details
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler; includeStack adds stack traces to responses
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes the matching problem response
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	// request_id is stamped by the context-aware logger
	attrs := []any{
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		attrs = append(attrs, appErr.LogAttrs()...)
	}

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed", attrs...)

	problem.WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("stack", stackTrace())
	}
	h.write(w, r, problem)
}

// ErrorToProblem classifies err. Cancellation wins over everything else,
// so a report abandoned mid-load is a timeout rather than a data error.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return kindTimeout.problem("The request took too long to process and was cancelled", path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorProblem(apiErr, path)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return apiErrorProblem(DatasetNotFoundError(err), path)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if kind, ok := appErrorKinds[appErr.Type]; ok {
			detail := appErr.Message
			if appErr.Type == ErrTypeParsing {
				detail = appErr.Error()
			}
			return kind.problem(detail, path)
		}
	}

	return kindInternal.problem("An unexpected error occurred while processing your request", path)
}

func (k problemKind) problem(detail, instance string) *ProblemDetails {
	p := NewProblemDetails(k.status, k.typ, k.title, detail, instance)
	if k.code != "" {
		p.WithExtension("error_code", k.code)
	}
	return p
}

func apiErrorProblem(apiErr *APIError, path string) *ProblemDetails {
	typ, ok := apiErrorTypes[apiErr.ErrorCode]
	if !ok {
		typ = TypeInternal
	}
	title, ok := apiErrorTitles[apiErr.ErrorCode]
	if !ok {
		title = http.StatusText(apiErr.StatusCode)
	}

	problem := NewProblemDetails(apiErr.StatusCode, typ, title, apiErr.Message, path).
		WithExtension("error_code", apiErr.ErrorCode)

	switch details := apiErr.Details.(type) {
	case nil:
	case []ValidationError:
		problem.WithExtension("errors", details)
	default:
		problem.WithExtension("details", details)
	}
	return problem
}

// HandlePanic logs a recovered panic and answers 500
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := kindInternal.problem("An unexpected error occurred", r.URL.Path).
		WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprint(recovered))
		problem.WithExtension("stack", stackTrace())
	}
	h.write(w, r, problem)
}

// NotFound answers requests for unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}

// MethodNotAllowed answers requests with an unsupported method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeInternal, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}

// Recoverer turns handler panics into problem responses. http.ErrAbortHandler is re-raised.
func (h *ErrorHandler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.HandlePanic(w, r, rec)
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *ErrorHandler) write(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	if err := render.Render(w, r, problem); err != nil {
		h.logger.Error("failed to render problem", slog.String("error", err.Error()))
	}
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	return string(buf[:runtime.Stack(buf, false)])
}
