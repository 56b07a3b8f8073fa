package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"beacon/internal/constants"
	"beacon/internal/logger"
	"beacon/pkg/retry"
)

// APIBackend fetches option data from an HTTP endpoint. The configured URL may
// contain `{identifier}`, replaced with the object id before the request.
type APIBackend struct {
	client *http.Client
	logger logger.Logger
}

func NewAPIBackend(log logger.Logger) *APIBackend {
	return &APIBackend{
		client: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
		logger: log,
	}
}

func (b *APIBackend) Fetch(ctx context.Context, config SourceConfig, identifier string) (map[string]interface{}, error) {
	url := strings.ReplaceAll(config.URL, "{identifier}", identifier)

	method := config.Method
	if method == "" {
		method = http.MethodGet
	}

	policy := retry.Policy{
		MaxAttempts:     config.RetryCount + 1,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
	}

	var result map[string]interface{}
	err := retry.RetryWithCallback(ctx, policy, func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return retry.NewFatalError(fmt.Errorf("failed to create request: %w", err))
		}
		for k, v := range config.Headers {
			req.Header.Set(k, v)
		}

		resp, err := b.client.Do(req)
		if err != nil {
			return fmt.Errorf("api request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("api returned status: %d", resp.StatusCode)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return retry.NewFatalError(fmt.Errorf("api returned status: %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return retry.NewFatalError(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}, func(attempt int, attemptErr error, nextDelay time.Duration) {
		b.logger.DebugwCtx(ctx, "Retrying option API request",
			"url", url,
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", attemptErr,
		)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
