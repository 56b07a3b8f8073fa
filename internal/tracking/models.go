// Package tracking assembles events for trigger firings: it resolves option
// data, substitutes template placeholders, and queues the results for
// delivery at the end of the request.
package tracking

import (
	"sort"
	"strings"

	"beacon/internal/template"
)

// FireRequest describes one trigger firing.
type FireRequest struct {
	// TriggerID names the registered trigger being fired.
	TriggerID string `json:"trigger_id"`
	// Identifiers maps option type ids to the concrete object each one should
	// be resolved for. Types missing here resolve with an empty identifier.
	Identifiers map[string]string `json:"identifiers,omitempty"`
	// ScopeID selects the object whose scoped template configurations apply.
	// Empty means only global configurations are considered.
	ScopeID string `json:"scope_id,omitempty"`
	// Overrides are literal facts merged over resolver output, keyed by option
	// type id. A firing can carry data the resolvers cannot know.
	Overrides template.FactMap `json:"overrides,omitempty"`
}

// FireKey is the duplicate guard identity of a firing: the trigger plus its
// identifiers in deterministic order.
func (r FireRequest) FireKey() string {
	if len(r.Identifiers) == 0 {
		return r.TriggerID
	}

	keys := make([]string, 0, len(r.Identifiers))
	for k := range r.Identifiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(r.TriggerID)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.Identifiers[k])
	}
	return b.String()
}
