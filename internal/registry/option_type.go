package registry

import (
	"context"
	"sort"
	"sync"

	"beacon/internal/logger"
	"beacon/pkg/metrics"
)

// Resolver loads the fact map for one concrete object of an option type.
// Global types are resolved with an empty identifier (ambient context, e.g.
// the currently logged-in user).
type Resolver func(ctx context.Context, identifier string) (map[string]interface{}, error)

// OptionDescriptor describes one available field of an option type. It is
// authoring metadata only and is never consulted at substitution time.
type OptionDescriptor struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

// OptionType is a category of resolvable facts, e.g. "order" or "user".
type OptionType struct {
	ID       string
	Resolver Resolver
	Declared []OptionDescriptor
	// Global marks the type as available in every trigger context, resolved
	// in the second substitution pass when no identifier is known.
	Global bool
}

// OptionRegistry holds the registered option types. It is populated during
// startup and read-only afterwards.
type OptionRegistry struct {
	mu        sync.RWMutex
	types     map[string]OptionType
	finalized bool
	logger    logger.Logger
}

func NewOptionRegistry(log logger.Logger) *OptionRegistry {
	return &OptionRegistry{
		types:  make(map[string]OptionType),
		logger: log,
	}
}

// Register adds an option type. Registration after Finalize is ignored so the
// registry stays immutable once the triggers have been baked.
func (r *OptionRegistry) Register(t OptionType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		r.logger.Warnw("Option type registered after finalize, ignoring", "type", t.ID)
		return
	}
	r.types[t.ID] = t
}

// Resolve returns the fact map for one object of the given type. Unknown
// types, nil resolvers, and resolver failures all degrade to an empty map;
// callers never see an error from resolution.
func (r *OptionRegistry) Resolve(ctx context.Context, typeID, identifier string) map[string]interface{} {
	r.mu.RLock()
	t, ok := r.types[typeID]
	r.mu.RUnlock()

	if !ok || t.Resolver == nil {
		r.logger.DebugwCtx(ctx, "Option type not registered, resolving to empty map",
			"type", typeID,
		)
		metrics.IncProviderRequest(typeID, "unregistered")
		return map[string]interface{}{}
	}

	facts, err := t.Resolver(ctx, identifier)
	if err != nil {
		r.logger.WarnwCtx(ctx, "Option resolver failed, degrading to empty map",
			"type", typeID,
			"identifier", identifier,
			"error", err,
		)
		metrics.IncProviderRequest(typeID, "error")
		return map[string]interface{}{}
	}
	if facts == nil {
		facts = map[string]interface{}{}
	}

	metrics.IncProviderRequest(typeID, "success")
	return facts
}

// Declared returns the authoring descriptors for a type, or nil when the type
// is unknown.
func (r *OptionRegistry) Declared(typeID string) []OptionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[typeID]
	if !ok {
		return nil
	}
	out := make([]OptionDescriptor, len(t.Declared))
	copy(out, t.Declared)
	return out
}

// Get returns the option type and whether it is registered.
func (r *OptionRegistry) Get(typeID string) (OptionType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[typeID]
	return t, ok
}

// GlobalTypes returns the ids of every type flagged global, sorted for
// deterministic pass ordering.
func (r *OptionRegistry) GlobalTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.globalTypesLocked()
}

func (r *OptionRegistry) globalTypesLocked() []string {
	ids := make([]string, 0, len(r.types))
	for id, t := range r.types {
		if t.Global {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (r *OptionRegistry) markFinalized() {
	r.mu.Lock()
	r.finalized = true
	r.mu.Unlock()
}
