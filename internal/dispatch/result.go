// Package dispatch delivers assembled events to the analytics collector over
// HTTP. Delivery is fire and forget: failures are logged and counted, never
// surfaced to the request that queued the event.
package dispatch

import (
	"beacon/internal/template"
)

// Event is one assembled event ready for delivery. The collector contract
// expects "name" and "values" in the POST body; trigger and integration
// travel as headers, not body fields.
type Event struct {
	Name              string          `json:"name"`
	Values            template.Values `json:"values,omitempty"`
	TriggerID         string          `json:"-"`
	SourceIntegration string          `json:"-"`
}

const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// DeliveryResult records the outcome of one event delivery attempt.
type DeliveryResult struct {
	Event      Event  `json:"event"`
	Status     string `json:"status"`
	HTTPStatus int    `json:"http_status,omitempty"`
	Error      string `json:"error,omitempty"`
}
