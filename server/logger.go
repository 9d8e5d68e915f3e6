package server

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// slogLogger wraps slog.Logger to implement our Logger interface
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// SetupLogger creates a structured logger writing to stdout and routes
// gnark's own output to stderr at the same level
func SetupLogger(level, format string) Logger {
	SetupGnarkLogger(level, os.Stderr)
	return NewLogger(os.Stdout, level, format)
}

// NewLogger creates a structured logger writing to w
func NewLogger(w io.Writer, level, format string) Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &slogLogger{
		logger: slog.New(handler),
	}
}

// SetupGnarkLogger installs the zerolog logger gnark reports through.
// Below debug level gnark stays quiet.
func SetupGnarkLogger(level string, w io.Writer) {
	if parseLevel(level) > slog.LevelDebug {
		gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
		return
	}
	gnarklogger.Set(zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(zerolog.DebugLevel).With().Timestamp().Logger())
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loggerMiddleware creates a Chi middleware that logs requests
func loggerMiddleware(logger Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := &responseWriter{ResponseWriter: w, statusCode: 200}

			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
