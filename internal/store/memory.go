package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "beacon/pkg/errors"
)

// MemoryRepository is an in-process Repository used in tests and for running
// the service without a configured database.
type MemoryRepository struct {
	mu      sync.RWMutex
	configs map[string]TemplateConfig
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		configs: make(map[string]TemplateConfig),
	}
}

func (r *MemoryRepository) Create(_ context.Context, cfg *TemplateConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if _, exists := r.configs[cfg.ID]; exists {
		return pkgerrors.ErrConflict.
			WithDetail("message", fmt.Sprintf("template config '%s' already exists", cfg.ID))
	}

	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	r.configs[cfg.ID] = *cfg
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*TemplateConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound.
			WithDetail("message", fmt.Sprintf("template config '%s' not found", id))
	}
	return &cfg, nil
}

func (r *MemoryRepository) List(_ context.Context, triggerID string) ([]TemplateConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []TemplateConfig
	for _, cfg := range r.configs {
		if triggerID == "" || cfg.TriggerID == triggerID {
			out = append(out, cfg)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, cfg *TemplateConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.configs[cfg.ID]
	if !ok {
		return pkgerrors.ErrNotFound.
			WithDetail("message", fmt.Sprintf("template config '%s' not found", cfg.ID))
	}

	cfg.CreatedAt = existing.CreatedAt
	cfg.UpdatedAt = time.Now().UTC()
	r.configs[cfg.ID] = *cfg
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[id]; !ok {
		return pkgerrors.ErrNotFound.
			WithDetail("message", fmt.Sprintf("template config '%s' not found", id))
	}
	delete(r.configs, id)
	return nil
}

func (r *MemoryRepository) GetActiveForTrigger(_ context.Context, triggerID, scopeID string) ([]TemplateConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if scopeID != "" {
		if scoped := r.enabledLocked(triggerID, scopeID); len(scoped) > 0 {
			return scoped, nil
		}
	}
	return r.enabledLocked(triggerID, ""), nil
}

func (r *MemoryRepository) enabledLocked(triggerID, scopeID string) []TemplateConfig {
	var out []TemplateConfig
	for _, cfg := range r.configs {
		if cfg.Enabled && cfg.TriggerID == triggerID && cfg.ScopeID == scopeID {
			out = append(out, cfg)
		}
	}
	sortByCreation(out)
	return out
}

func (r *MemoryRepository) CountEnabled(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, cfg := range r.configs {
		if cfg.Enabled {
			count++
		}
	}
	return count, nil
}

func sortByCreation(configs []TemplateConfig) {
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].CreatedAt.Equal(configs[j].CreatedAt) {
			return configs[i].ID < configs[j].ID
		}
		return configs[i].CreatedAt.Before(configs[j].CreatedAt)
	})
}
