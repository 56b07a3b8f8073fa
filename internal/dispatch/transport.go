package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/logger"
	"beacon/pkg/logging"
	"beacon/pkg/metrics"
	"beacon/pkg/tracing"
)

// Transport posts events to the configured collector endpoint. A transport
// built from a missing or invalid endpoint is disabled: every send is skipped
// and no network call is ever made.
type Transport struct {
	endpoint    string
	integration string
	client      *http.Client
	enabled     bool
	logger      logger.Logger
}

// NewTransport builds a transport from the delivery configuration. client may
// be nil; a default client with the configured timeout is used then.
func NewTransport(cfg config.DeliveryConfig, client *http.Client, log logger.Logger, validate func(string) error) *Transport {
	enabled := cfg.Endpoint != ""
	if enabled && validate != nil {
		if err := validate(cfg.Endpoint); err != nil {
			log.Warnw("Delivery endpoint invalid, transport disabled",
				"endpoint", cfg.Endpoint,
				"error", err,
			)
			enabled = false
		}
	}
	if !enabled {
		log.Infow("Delivery transport disabled, events will be skipped")
	}

	if client == nil {
		timeout := cfg.TimeoutSeconds * time.Second
		if timeout <= 0 {
			timeout = constants.DefaultDeliveryTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Transport{
		endpoint:    cfg.Endpoint,
		integration: cfg.Integration,
		client:      client,
		enabled:     enabled,
		logger:      log,
	}
}

// Enabled reports whether the transport will attempt deliveries.
func (t *Transport) Enabled() bool {
	return t.enabled
}

// Flush delivers the events in order. Each event gets exactly one attempt;
// the caller gets a result per event and never an error.
func (t *Transport) Flush(ctx context.Context, events []Event) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(events))
	for _, event := range events {
		results = append(results, t.send(ctx, event))
	}
	return results
}

// SendTest delivers one event synchronously and surfaces the failure, for
// authoring tools verifying collector connectivity.
func (t *Transport) SendTest(ctx context.Context, event Event) (*DeliveryResult, error) {
	if !t.enabled {
		return nil, fmt.Errorf("delivery endpoint is not configured")
	}

	result := t.send(ctx, event)
	if result.Status != StatusSent {
		if result.Error != "" {
			return &result, fmt.Errorf("test delivery failed: %s", result.Error)
		}
		return &result, fmt.Errorf("test delivery failed: collector returned status %d", result.HTTPStatus)
	}
	return &result, nil
}

func (t *Transport) send(ctx context.Context, event Event) DeliveryResult {
	event.SourceIntegration = t.integration

	if !t.enabled {
		metrics.IncDelivery(StatusSkipped)
		return DeliveryResult{Event: event, Status: StatusSkipped}
	}

	ctx, span := tracing.GetTracer("dispatch").Start(ctx, "dispatch.send")
	defer span.End()

	ctx = logging.WithEventName(ctx, event.Name)

	start := time.Now()
	status, httpStatus, errMsg := t.post(ctx, event)
	metrics.IncDelivery(status)
	metrics.ObserveDeliveryDuration(time.Since(start), status)

	result := DeliveryResult{
		Event:      event,
		Status:     status,
		HTTPStatus: httpStatus,
		Error:      errMsg,
	}

	if status == StatusSent {
		t.logger.DebugwCtx(ctx, "Event delivered",
			"event", event.Name,
			"trigger", event.TriggerID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		t.logger.WarnwCtx(ctx, "Event delivery failed",
			"event", event.Name,
			"trigger", event.TriggerID,
			"http_status", httpStatus,
			"error", errMsg,
		)
	}

	return result
}

func (t *Transport) post(ctx context.Context, event Event) (status string, httpStatus int, errMsg string) {
	body, err := json.Marshal(event)
	if err != nil {
		return StatusFailed, 0, fmt.Sprintf("failed to encode event: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return StatusFailed, 0, fmt.Sprintf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.integration != "" {
		req.Header.Set(constants.HeaderIntegration, t.integration)
	}
	if event.TriggerID != "" {
		req.Header.Set(constants.HeaderTrigger, event.TriggerID)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return StatusFailed, 0, fmt.Sprintf("request failed: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	// The collector acknowledges accepted events with 202 and nothing else.
	if resp.StatusCode != constants.DeliveryAcceptedStatus {
		return StatusFailed, resp.StatusCode, ""
	}

	return StatusSent, resp.StatusCode, ""
}
