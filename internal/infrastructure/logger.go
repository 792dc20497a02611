package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"maizeintel/internal/config"
)

// process-wide logger installed by InitializeLogger
var logState struct {
	sync.Mutex
	logger *slog.Logger
	file   *os.File
}

// InitializeLogger builds the process logger and makes it the slog default.
// Only the first call has an effect; later calls return the same logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logState.Lock()
	defer logState.Unlock()

	if logState.logger != nil {
		return logState.logger, nil
	}

	w, file, err := logWriter(cfg)
	if err != nil {
		return nil, err
	}
	logState.file = file
	logState.logger = NewLoggerWithWriter(w, handlerOptions(cfg))
	slog.SetDefault(logState.logger)
	return logState.logger, nil
}

// NewLogger builds a JSON logger for cfg without installing it.
// A log file it opens stays open for the life of the process.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	w, _, err := logWriter(cfg)
	if err != nil {
		return nil, err
	}
	return NewLoggerWithWriter(w, handlerOptions(cfg)), nil
}

// NewLoggerWithWriter builds a JSON logger on w that stamps trace and request ids
func NewLoggerWithWriter(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(&contextHandler{Handler: slog.NewJSONHandler(w, opts)})
}

// CloseLogFile closes the file opened by InitializeLogger, if any
func CloseLogFile() error {
	logState.Lock()
	defer logState.Unlock()
	if logState.file == nil {
		return nil
	}
	err := logState.file.Close()
	logState.file = nil
	return err
}

// ResetLoggerForTesting forgets the process logger. Tests only.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	logState.Lock()
	logState.logger = nil
	logState.Unlock()
}

func handlerOptions(cfg config.LoggingConfig) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	}
}

// logWriter resolves cfg.Output. "stderr" is what maizectl uses so stdout
// carries only report JSON.
func logWriter(cfg config.LoggingConfig) (io.Writer, *os.File, error) {
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		if strings.EqualFold(cfg.Output, "both") {
			return io.MultiWriter(os.Stdout, file), file, nil
		}
		return file, file, nil
	case "stderr":
		return os.Stderr, nil, nil
	default:
		return os.Stdout, nil, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}

// contextHandler adds trace_id and request_id from the record's context
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	if id := GetRequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
