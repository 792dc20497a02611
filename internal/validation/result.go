package validation

import (
	"encoding/json"
	"fmt"
)

// Result accumulates the findings of one dataset validation
type Result struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Info     []string `json:"info"`
}

// NewResult returns an empty, valid result
func NewResult() *Result {
	return &Result{
		Errors:   []string{},
		Warnings: []string{},
		Info:     []string{},
	}
}

// AddError records a blocking problem
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning records a non-blocking data quality concern
func (r *Result) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// AddInfo records a descriptive statistic
func (r *Result) AddInfo(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// IsValid reports whether no errors were recorded
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// MarshalJSON adds the derived valid flag
func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		Valid bool `json:"valid"`
		*plain
	}{
		Valid: r.IsValid(),
		plain: (*plain)(r),
	})
}

// AllValid reports whether every result in a batch is valid
func AllValid(results map[string]*Result) bool {
	for _, r := range results {
		if !r.IsValid() {
			return false
		}
	}
	return true
}
