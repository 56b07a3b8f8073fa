package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/config"
	"beacon/pkg/circuitbreaker"
)

func circuitBreakerTestConfig(name string) circuitbreaker.Config {
	cfg := circuitbreaker.DefaultConfig(name)
	cfg.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.TotalFailures >= 3
	}
	return cfg
}

type stubBackend struct {
	facts map[string]interface{}
	err   error
	calls int
}

func (s *stubBackend) Fetch(ctx context.Context, cfg SourceConfig, identifier string) (map[string]interface{}, error) {
	s.calls++
	return s.facts, s.err
}

func TestCircuitBreakerBackend_PassThrough(t *testing.T) {
	stub := &stubBackend{facts: map[string]interface{}{"id": "A-1"}}
	backend := WrapWithCircuitBreaker(stub, "test-cb-pass", config.CircuitBreakerConfig{Enabled: true})

	facts, err := backend.Fetch(context.Background(), SourceConfig{}, "A-1")
	require.NoError(t, err)
	assert.Equal(t, "A-1", facts["id"])
}

func TestCircuitBreakerBackend_OpensAfterFailures(t *testing.T) {
	stub := &stubBackend{err: errors.New("backend down")}
	backend := NewCircuitBreakerBackend(stub, "test-cb-open", circuitBreakerTestConfig("test-cb-open"))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := backend.Fetch(ctx, SourceConfig{}, "x")
		assert.Error(t, err)
	}

	assert.True(t, backend.IsOpen())

	before := stub.calls
	_, err := backend.Fetch(ctx, SourceConfig{}, "x")
	assert.Error(t, err)
	assert.Equal(t, before, stub.calls, "open breaker must not reach the backend")
}

func TestWrapWithCircuitBreaker_DisabledReturnsBackend(t *testing.T) {
	stub := &stubBackend{}
	backend := WrapWithCircuitBreaker(stub, "test-cb-disabled", config.CircuitBreakerConfig{Enabled: false})
	assert.Same(t, Backend(stub), backend)
}
