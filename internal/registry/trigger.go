package registry

import (
	"sort"
	"sync"

	"beacon/internal/logger"
	"beacon/internal/template"
)

// Trigger describes one kind of trackable event, e.g. "order_placed".
type Trigger struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// OptionTypes lists the option types resolved for every firing of this
	// trigger. Finalize appends every global type exactly once.
	OptionTypes []string `json:"option_types"`
	// SupportsSingle triggers can carry a per-object template configuration.
	SupportsSingle bool `json:"supports_single"`
	// SupportsGlobal triggers can carry site-wide template configurations.
	SupportsGlobal bool `json:"supports_global"`

	DefaultTemplate *template.Template `json:"default_template,omitempty"`
}

// TriggerRegistry maps trigger ids to their metadata. Registration happens at
// startup; Finalize bakes the global option types into every trigger and
// freezes both registries. Reads after Finalize need no synchronization in
// practice, but the registry keeps its lock so misuse degrades instead of
// racing.
type TriggerRegistry struct {
	mu        sync.RWMutex
	triggers  map[string]Trigger
	options   *OptionRegistry
	finalized bool
	logger    logger.Logger
}

func NewTriggerRegistry(options *OptionRegistry, log logger.Logger) *TriggerRegistry {
	return &TriggerRegistry{
		triggers: make(map[string]Trigger),
		options:  options,
		logger:   log,
	}
}

func (r *TriggerRegistry) Register(t Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		r.logger.Warnw("Trigger registered after finalize, ignoring", "trigger", t.ID)
		return
	}
	r.triggers[t.ID] = t
}

// Finalize appends every global option type to every trigger's dependency
// list and freezes both registries. Triggers keep their declared order; global
// types follow in sorted order. A trigger that already declares a global type
// does not get it twice.
func (r *TriggerRegistry) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return
	}

	globals := r.options.GlobalTypes()
	for id, t := range r.triggers {
		declared := make(map[string]struct{}, len(t.OptionTypes))
		for _, ot := range t.OptionTypes {
			declared[ot] = struct{}{}
		}
		for _, g := range globals {
			if _, ok := declared[g]; !ok {
				t.OptionTypes = append(t.OptionTypes, g)
			}
		}
		r.triggers[id] = t
	}

	r.finalized = true
	r.options.markFinalized()

	r.logger.Infow("Trigger registry finalized",
		"triggers", len(r.triggers),
		"global_types", globals,
	)
}

// Get returns the trigger for id, or nil when unknown.
func (r *TriggerRegistry) Get(id string) *Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.triggers[id]
	if !ok {
		return nil
	}
	return &t
}

// List returns all registered triggers in id order.
func (r *TriggerRegistry) List() []Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.triggers))
	for id := range r.triggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Trigger, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.triggers[id])
	}
	return out
}

// ListByOptionType returns every trigger depending on the given option type.
// Authoring tools use this to show which triggers a type's data reaches.
func (r *TriggerRegistry) ListByOptionType(typeID string) []Trigger {
	var out []Trigger
	for _, t := range r.List() {
		for _, ot := range t.OptionTypes {
			if ot == typeID {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
