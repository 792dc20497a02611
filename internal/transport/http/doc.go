// Package http implements the HTTP handlers of the maize market intelligence API.
// Handlers stay thin: they bind and validate query parameters, call a service
// and render the result, leaving all computation to the service layer.
//
// # Routes
//
//	GET /api/v1/analytics/national-summary?period=
//	GET /api/v1/analytics/production?region=&period=
//	GET /api/v1/analytics/prices?market=&grade=
//	GET /api/v1/analytics/storage?warehouse=
//	GET /api/v1/analytics/seasonal?crop=
//	GET /api/v1/analytics/forecast-accuracy
//	GET /api/v1/analytics/supply-demand
//	GET /api/v1/analytics/opportunities
//	GET /api/v1/analytics/dashboard
//	GET /api/v1/validation
//	GET /api/v1/validation/forecasts
//	GET /api/v1/validation/export?format=csv|xlsx&forecasts=
//	GET /api/v1/health
//	GET /api/v1/health/ready
//	GET /metrics
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are produced by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/not-found",
//	    "title": "Dataset Not Found",
//	    "status": 404,
//	    "detail": "production data at data/maize_production.csv: dataset not found",
//	    "instance": "/api/v1/analytics/production",
//	    "error_code": "DATASET_NOT_FOUND",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against the real services over fixture
// files, or against mock services for error paths.
package http
