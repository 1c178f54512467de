package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// Middleware makes logger available to handlers through FromContext.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the request logger, or the default one outside a
// request.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return FromDefault("")
}

// StructuredLogger writes the records whose shape dashboards depend on.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	sl.logger.DebugContext(ctx, "HTTP request started",
		slog.String(FieldMethod, r.Method),
		slog.String(FieldPath, r.URL.Path),
		slog.String(FieldQuery, r.URL.RawQuery),
		slog.String(FieldUserAgent, r.UserAgent()),
		slog.String(FieldClientIP, clientIP))
}

// LogHTTPEnd logs 4xx at warn and 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	sl.logger.Log(ctx, level, "HTTP request completed",
		slog.String(FieldMethod, r.Method),
		slog.String(FieldPath, r.URL.Path),
		slog.Int(FieldStatusCode, statusCode),
		slog.Int64(FieldDuration, durationMs),
		slog.String(FieldClientIP, clientIP))
}

func (sl *StructuredLogger) LogEventSaved(ctx context.Context, userID, op, id, title string, amountCents int64, category, recurring string) {
	sl.logger.InfoContext(ctx, "Event saved",
		slog.String(FieldUserID, userID),
		slog.String(FieldOperation, op),
		slog.String(FieldEventID, id),
		slog.String(FieldTitle, title),
		slog.Int64(FieldAmountCents, amountCents),
		slog.String(FieldCategory, category),
		slog.String(FieldRecurring, recurring))
}

// LogProjection records one projection; events is 0 on a cache hit.
func (sl *StructuredLogger) LogProjection(ctx context.Context, userID string, events, occurrences, riskDays, warnings int, cacheHit bool) {
	sl.logger.InfoContext(ctx, "Projection computed",
		slog.String(FieldUserID, userID),
		slog.String(FieldOperation, OpProject),
		slog.Int(FieldEvents, events),
		slog.Int(FieldOccurrences, occurrences),
		slog.Int(FieldRiskDays, riskDays),
		slog.Int(FieldWarnings, warnings),
		slog.Bool(FieldCacheHit, cacheHit))
}
