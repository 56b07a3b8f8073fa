package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/provider"
	"beacon/internal/registry"
	"beacon/internal/store"
	"beacon/internal/template"
	"beacon/internal/tracking"
	"beacon/pkg/migrations"
)

// Wires the real Mongo-backed template store and a Postgres-backed option
// resolver through the assembly service, end to end.
func TestTrackingService_AssembleWithRealBackends(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)
	ctx := context.Background()
	log := createTestLogger()

	require.NoError(t, migrations.EnsureMongoCollection(ctx, infra.MongoDB))
	repo := store.NewMongoRepository(infra.MongoDB)

	_, err := infra.PostgresDB.ExecContext(ctx,
		`INSERT INTO customer_options (identifier, email, name, plan)
		 VALUES ($1, $2, $3, $4)`,
		"cust-9", "eve@example.com", "Eve", "enterprise")
	require.NoError(t, err)

	options := registry.NewOptionRegistry(log)
	options.Register(registry.OptionType{
		ID: "customer",
		Resolver: provider.Bind("customer", provider.NewPostgreSQLBackend(infra.PostgresDB), provider.SourceConfig{
			Collection: "customer_options",
			Field:      "identifier",
		}),
		Declared: []registry.OptionDescriptor{
			{Key: "email", Description: "Customer email address"},
			{Key: "plan", Description: "Subscription plan"},
		},
	})

	triggers := registry.NewTriggerRegistry(options, log)
	triggers.Register(registry.Trigger{
		ID:             "customer_signup",
		Name:           "Customer Signup",
		OptionTypes:    []string{"customer"},
		SupportsSingle: true,
		SupportsGlobal: true,
	})
	triggers.Finalize()

	cfg := &store.TemplateConfig{
		TriggerID: "customer_signup",
		Name:      "signup-{customer:plan}",
		Values:    template.Scalar("{customer:email}"),
		Enabled:   true,
	}
	require.NoError(t, repo.Create(ctx, cfg))

	svc := tracking.NewService(triggers, options, repo, log)

	events, err := svc.Assemble(ctx, tracking.FireRequest{
		TriggerID:   "customer_signup",
		Identifiers: map[string]string{"customer": "cust-9"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "signup-enterprise", events[0].Name)
	assert.Equal(t, "eve@example.com", events[0].Values.ScalarValue())
	assert.Equal(t, "customer_signup", events[0].TriggerID)
}

func TestTrackingService_AssembleUsesScopedConfig(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	ctx := context.Background()
	log := createTestLogger()

	require.NoError(t, migrations.EnsureMongoCollection(ctx, infra.MongoDB))
	repo := store.NewMongoRepository(infra.MongoDB)

	options := registry.NewOptionRegistry(log)
	triggers := registry.NewTriggerRegistry(options, log)
	triggers.Register(registry.Trigger{
		ID:             "page_view",
		Name:           "Page View",
		SupportsSingle: true,
		SupportsGlobal: true,
	})
	triggers.Finalize()

	global := &store.TemplateConfig{
		TriggerID: "page_view",
		Name:      "global-view",
		Enabled:   true,
	}
	scoped := &store.TemplateConfig{
		TriggerID: "page_view",
		ScopeID:   "landing",
		Name:      "landing-view",
		Enabled:   true,
	}
	require.NoError(t, repo.Create(ctx, global))
	require.NoError(t, repo.Create(ctx, scoped))

	svc := tracking.NewService(triggers, options, repo, log)

	events, err := svc.Assemble(ctx, tracking.FireRequest{
		TriggerID: "page_view",
		ScopeID:   "landing",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "landing-view", events[0].Name)

	events, err = svc.Assemble(ctx, tracking.FireRequest{
		TriggerID: "page_view",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "global-view", events[0].Name)
}
