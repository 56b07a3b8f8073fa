// Package store persists template configurations: the author-editable event
// templates bound to a trigger, either site-wide or for one concrete object.
package store

import (
	"time"

	"beacon/internal/template"
)

// TemplateConfig is one stored template configuration. ScopeID is the object
// identifier the configuration is bound to; empty means global, applying to
// every firing of the trigger that has no scoped configuration of its own.
type TemplateConfig struct {
	ID        string            `json:"id"`
	TriggerID string            `json:"trigger_id"`
	ScopeID   string            `json:"scope_id,omitempty"`
	Name      string            `json:"name"`
	Values    template.Values   `json:"values"`
	Condition string            `json:"condition,omitempty"`
	Enabled   bool              `json:"enabled"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Template returns the substitutable template carried by the configuration.
func (c *TemplateConfig) Template() template.Template {
	return template.Template{
		Name:      c.Name,
		Values:    c.Values,
		Condition: c.Condition,
	}
}
