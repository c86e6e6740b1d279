// Package logger builds the slog loggers used across sluggable.
//
// Libraries in this module default to [NewNope] so they stay silent unless the
// application passes its own logger. Applications typically call [New] or
// [NewWithSentry] once at startup and hand the result to every component.
//
// # Context Extractors
//
// A [ContextExtractor] pulls one attribute out of a context on every log call.
// Extractors are applied by [LogHandlerDecorator], which wraps any slog.Handler:
//
//	log := logger.New(sluggable.LogExtractor())
//
//	ctx := sluggable.WithEntityType(ctx, "articles")
//	log.InfoContext(ctx, "slug assigned", slog.String("slug", "hello-world"))
//	// {"level":"INFO","msg":"slug assigned","slug":"hello-world","entity_type":"articles"}
//
// # Sentry
//
// [NewWithSentry] writes JSON to stdout and forwards warnings and errors to
// Sentry. With an empty DSN, or when the SDK fails to initialize, it degrades
// to stdout only.
package logger
