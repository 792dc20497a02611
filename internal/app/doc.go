// Package app wires configuration, observability, services and the HTTP
// router of the maize market intelligence API, and owns the server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (.env, MAIZE_* environment, optional YAML)
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Build the dataset loader, report engine and validator
//	4. Wrap them in the analytics, validation and health services
//	5. Mount handlers behind the middleware chain
//	6. Start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM drain in-flight requests within the configured shutdown
// timeout and flush the OpenTelemetry providers.
//
// # Error Handling
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit.
package app
