// Package authoring exposes the HTTP API for template authors: browsing
// triggers and option types, managing template configurations, previewing
// substitution, and test-firing events.
package authoring

import (
	"beacon/internal/dispatch"
	"beacon/internal/registry"
	"beacon/internal/store"
	"beacon/internal/template"
)

type CreateTemplateConfigRequest struct {
	TriggerID string          `json:"trigger_id" binding:"required"`
	ScopeID   string          `json:"scope_id"`
	Name      string          `json:"name" binding:"required"`
	Values    template.Values `json:"values"`
	Condition string          `json:"condition"`
	Enabled   *bool           `json:"enabled"`
}

type UpdateTemplateConfigRequest struct {
	TriggerID string          `json:"trigger_id" binding:"required"`
	ScopeID   string          `json:"scope_id"`
	Name      string          `json:"name" binding:"required"`
	Values    template.Values `json:"values"`
	Condition string          `json:"condition"`
	Enabled   *bool           `json:"enabled"`
}

// TriggerDetailResponse pairs a trigger with the declared fields of every
// option type it can draw from.
type TriggerDetailResponse struct {
	Trigger registry.Trigger                       `json:"trigger"`
	Options map[string][]registry.OptionDescriptor `json:"options"`
}

type OptionTypeResponse struct {
	ID       string                      `json:"id"`
	Global   bool                        `json:"global"`
	Declared []registry.OptionDescriptor `json:"declared"`
	Triggers []string                    `json:"triggers"`
}

type PreviewRequest struct {
	TriggerID   string            `json:"trigger_id" binding:"required"`
	Identifiers map[string]string `json:"identifiers"`
	ScopeID     string            `json:"scope_id"`
	Overrides   template.FactMap  `json:"overrides"`
	Template    template.Template `json:"template" binding:"required"`
}

type PreviewResponse struct {
	Rendered template.Template `json:"rendered"`
}

type TestEventRequest struct {
	Name   string          `json:"name" binding:"required"`
	Values template.Values `json:"values"`
}

type FireTriggerRequest struct {
	Identifiers map[string]string `json:"identifiers"`
	ScopeID     string            `json:"scope_id"`
	Overrides   template.FactMap  `json:"overrides"`
}

type FireTriggerResponse struct {
	Queued  int                       `json:"queued"`
	Results []dispatch.DeliveryResult `json:"results,omitempty"`
}

type ListTemplateConfigsResponse struct {
	Configs []store.TemplateConfig `json:"configs"`
	Total   int                    `json:"total"`
}
