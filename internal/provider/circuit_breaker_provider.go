package provider

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"beacon/internal/config"
	"beacon/pkg/circuitbreaker"
)

// CircuitBreakerBackend decorates a backend with a circuit breaker so a dead
// data source stops delaying trigger firings once the breaker opens.
type CircuitBreakerBackend struct {
	backend Backend
	cb      *circuitbreaker.Wrapper
	name    string
}

func NewCircuitBreakerBackend(backend Backend, name string, cfg circuitbreaker.Config) *CircuitBreakerBackend {
	return &CircuitBreakerBackend{
		backend: backend,
		cb:      circuitbreaker.NewWrapper(cfg),
		name:    name,
	}
}

func (b *CircuitBreakerBackend) Fetch(ctx context.Context, config SourceConfig, identifier string) (map[string]interface{}, error) {
	result, err := b.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return b.backend.Fetch(ctx, config, identifier)
	})

	b.cb.RecordRequest(err == nil)

	if err != nil {
		if b.cb.IsOpen() {
			return nil, fmt.Errorf("circuit breaker is open for %s: %w", b.name, err)
		}
		return nil, err
	}

	if result == nil {
		return nil, fmt.Errorf("backend returned nil result")
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("backend returned invalid result type")
	}

	return data, nil
}

func (b *CircuitBreakerBackend) State() string {
	return b.cb.State().String()
}

func (b *CircuitBreakerBackend) IsOpen() bool {
	return b.cb.IsOpen()
}

// WrapWithCircuitBreaker decorates the backend when breakers are enabled in
// the service configuration.
func WrapWithCircuitBreaker(b Backend, name string, cfg config.CircuitBreakerConfig) Backend {
	if !cfg.Enabled {
		return b
	}

	cbConfig := circuitbreaker.DefaultConfig(name)
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		}
	}

	return NewCircuitBreakerBackend(b, name, cbConfig)
}
