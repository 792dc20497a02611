package errors

import "log/slog"

// Accessors for the external handler tests, which live in errors_test to
// avoid an import cycle through internal/shared/testutil.

func (h *ErrorHandler) IncludeStack() bool { return h.includeStack }

func (h *ErrorHandler) Logger() *slog.Logger { return h.logger }
