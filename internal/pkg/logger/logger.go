// Package logger provides a global, context-aware Sugared Zap logger with
// optional OpenTelemetry integration. Loggers can be derived and attached to
// a context with extra fields; trace and span identifiers present in the
// context are added to every entry automatically.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/gabapcia/hookwatch/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// contextKey is the private type used to store derived loggers in a context.
type contextKey string

// ctxKey is the context key under which a derived logger is stored.
const ctxKey contextKey = "logger"

var (
	// baseLogger is the global SugaredLogger instance, initialized once by Init.
	baseLogger *zap.SugaredLogger

	// initBaseLoggerOnce ensures the base logger is only configured a single time.
	initBaseLoggerOnce sync.Once
)

// Init configures the global logger with the given minimum level (debug,
// info, warn, error, panic, fatal). It logs JSON to stdout and, when an
// OpenTelemetry LoggerProvider has been registered via telemetry.Init, adds
// an OTEL bridge core forwarding entries to the telemetry backend. Calling
// Init again after a successful initialization has no effect.
func Init(level string) error {
	parsedLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	initBaseLoggerOnce.Do(func() {
		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				parsedLevel,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("", otelzap.WithLoggerProvider(lp)))
		}

		baseLogger = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// Sync flushes any buffered log entries. Call on application shutdown.
func Sync() error {
	return baseLogger.Sync()
}

// deriveFromCtx resolves the logger attached to ctx (falling back to the
// base logger) and enriches it with the given key/value pairs plus any trace
// and span identifiers carried by the context.
func deriveFromCtx(ctx context.Context, keysAndValues ...any) *zap.SugaredLogger {
	derived, ok := ctx.Value(ctxKey).(*zap.SugaredLogger)
	if !ok {
		derived = baseLogger
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		keysAndValues = append(keysAndValues, "trace_id", spanCtx.TraceID().String())
	}
	if spanCtx.HasSpanID() {
		keysAndValues = append(keysAndValues, "span_id", spanCtx.SpanID().String())
	}

	if len(keysAndValues) > 0 {
		derived = derived.With(keysAndValues...)
	}

	return derived
}

// Derive returns a copy of ctx carrying a logger enriched with the given
// key/value pairs. Subsequent log calls with the returned context include
// those fields.
func Derive(ctx context.Context, keysAndValues ...any) context.Context {
	return context.WithValue(ctx, ctxKey, deriveFromCtx(ctx, keysAndValues...))
}

// log emits a single entry at the given level using the context's logger.
func log(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	deriveFromCtx(ctx).Logw(level, msg, keysAndValues...)
}

// Debug logs a debug-level message with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.DebugLevel, msg, keysAndValues...)
}

// Info logs an info-level message with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.InfoLevel, msg, keysAndValues...)
}

// Warn logs a warn-level message with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.WarnLevel, msg, keysAndValues...)
}

// Error logs an error-level message with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.ErrorLevel, msg, keysAndValues...)
}

// Panic logs a panic-level message (and then panics) with optional key/value context.
func Panic(ctx context.Context, msg string, keysAndValues ...any) {
	deriveFromCtx(ctx).Panicw(msg, keysAndValues...)
}

// Fatal logs a fatal-level message (and then exits) with optional key/value context.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	deriveFromCtx(ctx).Fatalw(msg, keysAndValues...)
}
