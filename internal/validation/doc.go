// Package validation checks the raw maize datasets and the trainer's forecast
// artifacts for data quality problems.
//
// Validators never fail on bad data. Findings accumulate in a Result as
// errors (the dataset should not feed analytics), warnings (suspicious but
// usable) and info (descriptive statistics). A Result is valid when it has no
// errors.
package validation
