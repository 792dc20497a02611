package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"maizeintel/internal/config"
	apierrors "maizeintel/internal/errors"
)

// QueryValidator binds query parameters into request structs and validates
// them with struct tags
type QueryValidator struct {
	validator *validator.Validate
	registry  *config.Registry
	logger    *slog.Logger
}

// NewQueryValidator creates a validator whose "period" and "grade" rules
// follow the registry
func NewQueryValidator(registry *config.Registry, logger *slog.Logger) *QueryValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	qv := &QueryValidator{
		validator: v,
		registry:  registry,
		logger:    logger.With(slog.String("component", "query_validator")),
	}

	_ = v.RegisterValidation("period", qv.isPeriod)
	_ = v.RegisterValidation("grade", qv.isGrade)

	// Use query tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return qv
}

// Bind fills the string fields of dst tagged `query:"name"` from r and validates dst.
// The returned error renders as a 400 through the error handler.
func (qv *QueryValidator) Bind(r *http.Request, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a struct pointer, got %T", dst)
	}

	query := r.URL.Query()
	elem := rv.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		elem.Field(i).SetString(strings.TrimSpace(query.Get(name)))
	}

	if err := qv.ValidateStruct(dst); err != nil {
		qv.logger.DebugContext(r.Context(), "query validation failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ValidateStruct validates a struct and returns an APIError listing every field failure
func (qv *QueryValidator) ValidateStruct(v any) error {
	err := qv.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: qv.formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func (qv *QueryValidator) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "alpha":
		return fmt.Sprintf("%s must contain letters only", field)
	case "boolean":
		return fmt.Sprintf("%s must be true or false", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "period":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(qv.registry.PeriodTokens(), ", "))
	case "grade":
		grades := make([]string, 0, 3)
		for _, g := range qv.registry.Grades() {
			grades = append(grades, string(g))
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(grades, ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func (qv *QueryValidator) isPeriod(fl validator.FieldLevel) bool {
	return qv.registry.IsPeriod(fl.Field().String())
}

func (qv *QueryValidator) isGrade(fl validator.FieldLevel) bool {
	return qv.registry.IsGrade(fl.Field().String())
}
