package sluggable

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sluggable/pkg/logger"
)

type entityTypeKey struct{}

// WithEntityType stores the entity type on ctx for logging.
func WithEntityType(ctx context.Context, entityType string) context.Context {
	return context.WithValue(ctx, entityTypeKey{}, entityType)
}

// EntityTypeFromContext returns the entity type set by WithEntityType.
func EntityTypeFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(entityTypeKey{}).(string)
	return v, ok && v != ""
}

// LogExtractor adds "entity_type" to log records emitted with a context
// prepared by WithEntityType.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := EntityTypeFromContext(ctx); ok {
			return slog.String("entity_type", v), true
		}
		return slog.Attr{}, false
	}
}
