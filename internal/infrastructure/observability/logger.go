package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger configures the process-wide zerolog logger. Development
// gets a human-readable console writer; every other environment emits
// JSON lines for the log pipeline. Unknown levels fall back to info.
func InitLogger(serviceName, env, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}

// LoggerFromContext returns the global logger enriched with the ids of
// the active trace span, so search-path warnings can be correlated with
// the request trace. Without a valid span the global logger is returned
// as is.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return &log.Logger
	}

	logger := log.Logger.With().
		Str("trace_id", span.SpanContext().TraceID().String()).
		Str("span_id", span.SpanContext().SpanID().String()).
		Logger()
	return &logger
}
