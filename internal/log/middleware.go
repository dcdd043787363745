package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs the completion of an HTTP request, warning on 4xx and erroring on 5xx.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogExpenseAdded logs a successful insert.
func (sl *StructuredLogger) LogExpenseAdded(ctx context.Context, id int64, date string, amountCents int64, category, subcategory string) {
	fields := NewFields().
		WithExpense(id, date, amountCents, category, subcategory).
		WithOperation(OpAdd)

	sl.logger.WithComponent(ComponentExpense).InfoContext(ctx, "Expense added", fields.ToSlice()...)
}

// LogExpensesDeleted logs a delete-by-match, including no-op deletes.
func (sl *StructuredLogger) LogExpensesDeleted(ctx context.Context, date string, amountCents int64, deleted int64) {
	fields := NewFields().
		WithOperation(OpDelete)
	fields[FieldDate] = date
	fields[FieldAmountCents] = amountCents
	fields[FieldDeletedCount] = deleted

	sl.logger.WithComponent(ComponentExpense).InfoContext(ctx, "Expenses deleted", fields.ToSlice()...)
}

// LogQuery records a range read at debug level.
func (sl *StructuredLogger) LogQuery(ctx context.Context, operation, start, end string, results int) {
	fields := NewFields().
		WithDateRange(start, end).
		WithOperation(operation)
	fields[FieldResultCount] = results

	sl.logger.WithComponent(ComponentExpense).DebugContext(ctx, "Expenses queried", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, allFields.ToSlice()...)
}
