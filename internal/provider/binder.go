package provider

import (
	"context"
	"time"

	"beacon/internal/registry"
	"beacon/pkg/metrics"
)

// Bind adapts a backend and its source configuration into a registry
// resolver. Timing is recorded per option type; error handling stays with the
// registry, which degrades failures to empty fact maps.
func Bind(typeID string, backend Backend, cfg SourceConfig) registry.Resolver {
	return func(ctx context.Context, identifier string) (map[string]interface{}, error) {
		start := time.Now()
		facts, err := backend.Fetch(ctx, cfg, identifier)
		metrics.ObserveProviderDuration(typeID, time.Since(start))
		return facts, err
	}
}
