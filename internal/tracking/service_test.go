package tracking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/logger"
	"beacon/internal/registry"
	"beacon/internal/store"
	"beacon/internal/template"
	pkgerrors "beacon/pkg/errors"
)

type fixture struct {
	options  *registry.OptionRegistry
	triggers *registry.TriggerRegistry
	repo     *store.MemoryRepository
	service  Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NopLogger()
	options := registry.NewOptionRegistry(log)
	triggers := registry.NewTriggerRegistry(options, log)

	options.Register(registry.OptionType{
		ID: "order",
		Resolver: func(ctx context.Context, identifier string) (map[string]interface{}, error) {
			return map[string]interface{}{
				"id":     identifier,
				"status": "paid",
				"total":  149.90,
				"customer": map[string]interface{}{
					"email": "jane@example.com",
				},
			}, nil
		},
	})
	options.Register(registry.OptionType{
		ID:     "session",
		Global: true,
		Resolver: func(ctx context.Context, identifier string) (map[string]interface{}, error) {
			return map[string]interface{}{"visitor_id": "v-77"}, nil
		},
	})

	triggers.Register(registry.Trigger{
		ID:             "order_placed",
		Name:           "Order placed",
		OptionTypes:    []string{"order"},
		SupportsSingle: true,
		SupportsGlobal: true,
	})
	triggers.Finalize()

	repo := store.NewMemoryRepository()

	return &fixture{
		options:  options,
		triggers: triggers,
		repo:     repo,
		service:  NewService(triggers, options, repo, log),
	}
}

func (f *fixture) addConfig(t *testing.T, cfg *store.TemplateConfig) {
	t.Helper()
	require.NoError(t, f.repo.Create(context.Background(), cfg))
}

func TestService_Assemble_SubstitutesLocalFacts(t *testing.T) {
	f := newFixture(t)
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "purchase_{order:status}",
		Values:    template.Scalar("order {order:id} by {order:customer.email}"),
		Enabled:   true,
	})

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1001"},
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "purchase_paid", events[0].Name)
	assert.Equal(t, "order A-1001 by jane@example.com", events[0].Values.ScalarValue())
	assert.Equal(t, "order_placed", events[0].TriggerID)
}

func TestService_Assemble_GlobalPassFillsLeftovers(t *testing.T) {
	f := newFixture(t)
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "purchase",
		Values:    template.Scalar("{order:id} seen by {session:visitor_id}"),
		Enabled:   true,
	})

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "A-1 seen by v-77", events[0].Values.ScalarValue())
}

func TestService_Assemble_OverridesWinOverResolvers(t *testing.T) {
	f := newFixture(t)
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "purchase_{order:status}",
		Values:    template.Scalar("{order:id}"),
		Enabled:   true,
	})

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
		Overrides: template.FactMap{
			"order": {"status": "refunded"},
		},
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "purchase_refunded", events[0].Name)
}

func TestService_Assemble_DiscardsEmptyResolvedName(t *testing.T) {
	f := newFixture(t)
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "{order:nonexistent_name}",
		Values:    template.Scalar("x"),
		Enabled:   true,
	})

	// The name resolves to an unresolved token, which stays verbatim and is
	// not empty; an actually empty name comes from an empty fact value.
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "{order:blank}",
		Values:    template.Scalar("y"),
		Enabled:   true,
	})

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
		Overrides: template.FactMap{
			"order": {"blank": "   "},
		},
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "{order:nonexistent_name}", events[0].Name)
}

func TestService_Assemble_UnknownTriggerErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Assemble(context.Background(), FireRequest{TriggerID: "ghost"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestService_Assemble_NoTemplatesNoEvents(t *testing.T) {
	f := newFixture(t)

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
	})

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestService_Assemble_ScopedConfigOverridesGlobal(t *testing.T) {
	f := newFixture(t)
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "global_purchase",
		Enabled:   true,
	})
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		ScopeID:   "store-7",
		Name:      "scoped_purchase",
		Enabled:   true,
	})

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
		ScopeID:     "store-7",
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "scoped_purchase", events[0].Name)
}

func TestService_Assemble_ConditionGatesTemplate(t *testing.T) {
	f := newFixture(t)
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "big_purchase",
		Condition: `facts.order.total > 100.0`,
		Enabled:   true,
	})
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "huge_purchase",
		Condition: `facts.order.total > 10000.0`,
		Enabled:   true,
	})

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "big_purchase", events[0].Name)
}

func TestService_Assemble_BrokenConditionSkipsTemplateOnly(t *testing.T) {
	f := newFixture(t)
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "broken",
		Condition: `facts.ghost.field == "x"`,
		Enabled:   true,
	})
	f.addConfig(t, &store.TemplateConfig{
		TriggerID: "order_placed",
		Name:      "healthy",
		Enabled:   true,
	})

	events, err := f.service.Assemble(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "healthy", events[0].Name)
}

func TestService_Assemble_DefaultTemplateWhenNoConfigs(t *testing.T) {
	log := logger.NopLogger()
	options := registry.NewOptionRegistry(log)
	triggers := registry.NewTriggerRegistry(options, log)
	options.Register(registry.OptionType{
		ID: "page",
		Resolver: func(ctx context.Context, identifier string) (map[string]interface{}, error) {
			return map[string]interface{}{"path": "/home"}, nil
		},
	})
	triggers.Register(registry.Trigger{
		ID:          "page_view",
		OptionTypes: []string{"page"},
		DefaultTemplate: &template.Template{
			Name:   "page_view",
			Values: template.Scalar("{page:path}"),
		},
	})
	triggers.Finalize()

	repo := store.NewMemoryRepository()
	svc := NewService(triggers, options, repo, log)

	events, err := svc.Assemble(context.Background(), FireRequest{TriggerID: "page_view"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "page_view", events[0].Name)
	assert.Equal(t, "/home", events[0].Values.ScalarValue())
}

func TestService_Preview_MarksUnresolved(t *testing.T) {
	f := newFixture(t)

	tpl := template.Template{
		Name:   "purchase_{order:status}",
		Values: template.Scalar("{order:id} / {cart:items}"),
	}

	out, err := f.service.Preview(context.Background(), FireRequest{
		TriggerID:   "order_placed",
		Identifiers: map[string]string{"order": "A-1"},
	}, tpl)

	require.NoError(t, err)
	assert.Equal(t, "purchase_paid", out.Name)
	assert.Equal(t, "A-1 / [cart:items]", out.Values.ScalarValue())
}

func TestService_Preview_ResolvesGlobalsEagerly(t *testing.T) {
	f := newFixture(t)

	tpl := template.Template{
		Name:   "n",
		Values: template.Scalar("{session:visitor_id}"),
	}

	out, err := f.service.Preview(context.Background(), FireRequest{TriggerID: "order_placed"}, tpl)
	require.NoError(t, err)
	assert.Equal(t, "v-77", out.Values.ScalarValue())
}
