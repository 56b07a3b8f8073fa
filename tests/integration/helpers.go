package integration

import (
	"time"

	"beacon/internal/logger"
	"beacon/internal/store"
	"beacon/internal/template"
)

const (
	containerStartupTimeout = 60
	timestampDelay          = 10 * time.Millisecond
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func createTestConfig(triggerID, scopeID, name string, enabled bool) *store.TemplateConfig {
	return &store.TemplateConfig{
		TriggerID: triggerID,
		ScopeID:   scopeID,
		Name:      name,
		Values:    template.Scalar("{order:id}"),
		Enabled:   enabled,
	}
}
