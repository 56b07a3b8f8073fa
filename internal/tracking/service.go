package tracking

import (
	"context"
	"strings"
	"time"

	"beacon/internal/dispatch"
	"beacon/internal/logger"
	"beacon/internal/registry"
	"beacon/internal/store"
	"beacon/internal/template"
	"beacon/pkg/cel"
	pkgerrors "beacon/pkg/errors"
	"beacon/pkg/logging"
	"beacon/pkg/metrics"
	"beacon/pkg/tracing"
)

func getConfigNames(configs []store.TemplateConfig) []string {
	names := make([]string, 0, len(configs))
	for _, c := range configs {
		names = append(names, c.Name)
	}
	return names
}

func getFactTypes(facts template.FactMap) []string {
	types := make([]string, 0, len(facts))
	for t := range facts {
		types = append(types, t)
	}
	return types
}

type Service interface {
	// Assemble resolves option data and renders every template configuration
	// that applies to the firing, returning the events ready for delivery.
	Assemble(ctx context.Context, req FireRequest) ([]dispatch.Event, error)

	// Preview renders one template against the firing's facts, marking
	// unresolved placeholders instead of leaving them verbatim.
	Preview(ctx context.Context, req FireRequest, tpl template.Template) (template.Template, error)
}

type serviceImpl struct {
	triggers  *registry.TriggerRegistry
	options   *registry.OptionRegistry
	repo      store.Repository
	evaluator *cel.Evaluator
	logger    logger.Logger
}

func NewService(triggers *registry.TriggerRegistry, options *registry.OptionRegistry, repo store.Repository, log logger.Logger) Service {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		log.WarnwCtx(context.Background(), "Failed to create CEL evaluator", "error", err)
	}

	return &serviceImpl{
		triggers:  triggers,
		options:   options,
		repo:      repo,
		evaluator: evaluator,
		logger:    log,
	}
}

func (s *serviceImpl) Assemble(ctx context.Context, req FireRequest) ([]dispatch.Event, error) {
	ctx, span := tracing.GetTracer("tracking-service").Start(ctx, "tracking.assemble")
	defer span.End()

	ctx = logging.WithTriggerID(ctx, req.TriggerID)
	start := time.Now()

	trig := s.triggers.Get(req.TriggerID)
	if trig == nil {
		metrics.IncTriggerFired(req.TriggerID, "unknown")
		return nil, pkgerrors.ErrNotFound.
			WithDetail("message", "trigger '"+req.TriggerID+"' not registered")
	}

	configs, err := s.repo.GetActiveForTrigger(ctx, req.TriggerID, req.ScopeID)
	if err != nil {
		metrics.IncTriggerFired(req.TriggerID, "error")
		metrics.ObserveAssemblyDuration(time.Since(start), "error")
		return nil, err
	}

	templates := make([]template.Template, 0, len(configs))
	for _, cfg := range configs {
		templates = append(templates, cfg.Template())
	}
	if len(templates) == 0 && trig.DefaultTemplate != nil {
		templates = append(templates, *trig.DefaultTemplate)
	}

	s.logger.DebugwCtx(ctx, "Assembling events for trigger firing",
		"trigger", req.TriggerID,
		"scope_id", req.ScopeID,
		"configs", getConfigNames(configs),
		"option_types", trig.OptionTypes,
	)

	if len(templates) == 0 {
		metrics.IncTriggerFired(req.TriggerID, "no_templates")
		metrics.ObserveAssemblyDuration(time.Since(start), "success")
		return nil, nil
	}

	facts := s.resolveFacts(ctx, trig, req)
	globalTypes := s.options.GlobalTypes()

	events := make([]dispatch.Event, 0, len(templates))
	for _, tpl := range templates {
		event, ok := s.assembleOne(ctx, req, tpl, facts, globalTypes)
		if ok {
			events = append(events, event)
		}
	}

	metrics.IncTriggerFired(req.TriggerID, "success")
	metrics.ObserveAssemblyDuration(time.Since(start), "success")

	s.logger.InfowCtx(ctx, "Events assembled",
		"trigger", req.TriggerID,
		"templates", len(templates),
		"events", len(events),
		"fact_types", getFactTypes(facts),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return events, nil
}

// resolveFacts loads the local fact map: every option type the trigger
// declares, resolved with the identifier the firing supplied for it. Global
// types without an explicit identifier are left to the second pass. Literal
// overrides win over resolver output; the result is flattened so nested
// documents answer dotted placeholders.
func (s *serviceImpl) resolveFacts(ctx context.Context, trig *registry.Trigger, req FireRequest) template.FactMap {
	facts := make(template.FactMap, len(trig.OptionTypes))
	for _, typeID := range trig.OptionTypes {
		identifier, explicit := req.Identifiers[typeID]
		if t, ok := s.options.Get(typeID); ok && t.Global && !explicit {
			continue
		}
		facts[typeID] = s.options.Resolve(ctx, typeID, identifier)
	}
	facts.Merge(req.Overrides)
	return facts.Flatten()
}

func (s *serviceImpl) assembleOne(ctx context.Context, req FireRequest, tpl template.Template, facts template.FactMap, globalTypes []string) (dispatch.Event, bool) {
	if !s.conditionHolds(ctx, req, tpl, facts) {
		metrics.IncEventAssembled(req.TriggerID, "condition_skipped")
		return dispatch.Event{}, false
	}

	rendered := template.Substitute(tpl, facts)
	rendered = template.SubstituteGlobal(ctx, rendered, globalTypes, s.options)

	name := strings.TrimSpace(rendered.Name)
	if name == "" {
		s.logger.DebugwCtx(ctx, "Discarding event with empty resolved name",
			"trigger", req.TriggerID,
			"template_name", tpl.Name,
		)
		metrics.IncEventAssembled(req.TriggerID, "empty_name")
		return dispatch.Event{}, false
	}

	metrics.IncEventAssembled(req.TriggerID, "success")
	return dispatch.Event{
		Name:      name,
		Values:    rendered.Values,
		TriggerID: req.TriggerID,
	}, true
}

// conditionHolds evaluates the template's optional gating expression. An
// absent evaluator or a failing expression skips the template rather than the
// whole firing.
func (s *serviceImpl) conditionHolds(ctx context.Context, req FireRequest, tpl template.Template, facts template.FactMap) bool {
	if tpl.Condition == "" {
		return true
	}
	if s.evaluator == nil {
		s.logger.WarnwCtx(ctx, "No CEL evaluator, skipping conditional template",
			"trigger", req.TriggerID,
			"template_name", tpl.Name,
		)
		return false
	}

	celFacts := make(map[string]interface{}, len(facts))
	for typeID, fields := range facts {
		celFacts[typeID] = fields
	}

	ok, err := s.evaluator.EvaluateCondition(ctx, tpl.Condition, req.TriggerID, req.Identifiers, celFacts)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Condition evaluation failed, skipping template",
			"trigger", req.TriggerID,
			"template_name", tpl.Name,
			"condition", tpl.Condition,
			"error", err,
		)
		return false
	}
	return ok
}

func (s *serviceImpl) Preview(ctx context.Context, req FireRequest, tpl template.Template) (template.Template, error) {
	ctx, span := tracing.GetTracer("tracking-service").Start(ctx, "tracking.preview")
	defer span.End()

	trig := s.triggers.Get(req.TriggerID)
	if trig == nil {
		return template.Template{}, pkgerrors.ErrNotFound.
			WithDetail("message", "trigger '"+req.TriggerID+"' not registered")
	}

	facts := s.resolveFacts(ctx, trig, req)

	// Preview resolves global types eagerly so only genuinely unresolvable
	// placeholders end up marked.
	for _, typeID := range s.options.GlobalTypes() {
		if _, ok := facts[typeID]; ok && len(facts[typeID]) > 0 {
			continue
		}
		facts[typeID] = s.options.Resolve(ctx, typeID, "")
	}

	return template.Preview(tpl, facts.Flatten()), nil
}
