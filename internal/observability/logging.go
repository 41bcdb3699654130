// Package observability carries build-scoped logging context through the
// pipeline, so every log line can name the build and stage it came from.
package observability

import (
	"context"
	"log/slog"
)

// LogContext holds the structured identifiers attached to log lines.
type LogContext struct {
	BuildID string
	Stage   string
	Doc     string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID attaches a build identifier to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := extractLogContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage attaches a pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithDoc attaches the slug of the document being processed.
func WithDoc(ctx context.Context, slug string) context.Context {
	lc := extractLogContext(ctx)
	lc.Doc = slug
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.BuildID != "" {
		attrs = append(attrs, slog.String("build.id", lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}
	if lc.Doc != "" {
		attrs = append(attrs, slog.String("doc", lc.Doc))
	}
	return attrs
}

// InfoContext logs an info message with the context identifiers.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, append(getLogAttrs(ctx), attrs...)...)
}

// WarnContext logs a warning message with the context identifiers.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, append(getLogAttrs(ctx), attrs...)...)
}

// ErrorContext logs an error message with the context identifiers.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, append(getLogAttrs(ctx), attrs...)...)
}

// DebugContext logs a debug message with the context identifiers.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, append(getLogAttrs(ctx), attrs...)...)
}
