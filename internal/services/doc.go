// Package services implements the application layer between the HTTP and CLI
// front ends and the analytics engine.
//
// # Services
//
//	- AnalyticsService: generates the eight reports, one span and one set of
//	  report metrics per call, plus the concurrent dashboard
//	- ValidationService: runs the dataset and forecast validation batches and
//	  exports their findings to CSV or XLSX
//	- HealthService: liveness and dataset readiness
//
// # Context
//
// Every method takes a context.Context. Report generation itself is
// synchronous and file bound, so cancellation is observed before each report
// starts; the dashboard cancels outstanding reports on the first failure.
//
// # Errors
//
// Load failures are wrapped with the report name and keep their cause, so the
// HTTP error handler can still map missing files to 404 and unreadable files
// to 422. Unknown report names are AppError validation errors.
//
// # Testing
//
// The engine is exercised against fixture files written with
// testutil.DataFixture and a fixed clock; failure paths use a testify mock
// of analytics.Source.
package services
