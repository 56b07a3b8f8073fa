package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/store"
	"beacon/internal/template"
	pkgerrors "beacon/pkg/errors"
	"beacon/pkg/migrations"
)

func setupMongoRepository(t *testing.T) store.Repository {
	t.Helper()

	infra := SetupTestInfraWithOptions(t, false, true, false)

	require.NoError(t, migrations.EnsureMongoCollection(context.Background(), infra.MongoDB))

	return store.NewMongoRepository(infra.MongoDB)
}

func TestMongoRepository_Create(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	cfg := createTestConfig("order_placed", "", "Order Placed", true)

	err := repo.Create(ctx, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)
	assert.False(t, cfg.CreatedAt.IsZero())
	assert.False(t, cfg.UpdatedAt.IsZero())
}

func TestMongoRepository_Get(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	cfg := createTestConfig("order_placed", "checkout", "Order Placed", true)
	cfg.Values = template.Pairs([]template.KeyValue{
		{Key: "order_id", Value: "{order:id}"},
		{Key: "status", Value: "{order:status}"},
	})
	cfg.Condition = `facts["order.total"] != ""`
	require.NoError(t, repo.Create(ctx, cfg))

	retrieved, err := repo.Get(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, retrieved.ID)
	assert.Equal(t, cfg.TriggerID, retrieved.TriggerID)
	assert.Equal(t, cfg.ScopeID, retrieved.ScopeID)
	assert.Equal(t, cfg.Name, retrieved.Name)
	assert.Equal(t, cfg.Condition, retrieved.Condition)
	assert.True(t, retrieved.Values.IsPairs())
	assert.Equal(t, cfg.Values.PairsValue(), retrieved.Values.PairsValue())
}

func TestMongoRepository_Get_NotFound(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestMongoRepository_List(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	configs := []*store.TemplateConfig{
		createTestConfig("order_placed", "", "First", true),
		createTestConfig("order_placed", "", "Second", false),
		createTestConfig("page_view", "", "Other Trigger", true),
	}
	for _, cfg := range configs {
		require.NoError(t, repo.Create(ctx, cfg))
		time.Sleep(timestampDelay)
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "First", all[0].Name)
	assert.Equal(t, "Second", all[1].Name)

	filtered, err := repo.List(ctx, "order_placed")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestMongoRepository_Update(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	cfg := createTestConfig("order_placed", "", "Before", true)
	require.NoError(t, repo.Create(ctx, cfg))
	created := cfg.UpdatedAt

	time.Sleep(timestampDelay)

	cfg.Name = "After"
	cfg.Enabled = false
	cfg.Values = template.Scalar("{order:status}")
	require.NoError(t, repo.Update(ctx, cfg))

	retrieved, err := repo.Get(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", retrieved.Name)
	assert.False(t, retrieved.Enabled)
	assert.Equal(t, "{order:status}", retrieved.Values.ScalarValue())
	assert.True(t, retrieved.UpdatedAt.After(created))
}

func TestMongoRepository_Update_NotFound(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	cfg := createTestConfig("order_placed", "", "Ghost", true)
	cfg.ID = "00000000-0000-0000-0000-000000000000"

	err := repo.Update(ctx, cfg)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestMongoRepository_Delete(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	cfg := createTestConfig("order_placed", "", "Doomed", true)
	require.NoError(t, repo.Create(ctx, cfg))

	require.NoError(t, repo.Delete(ctx, cfg.ID))

	_, err := repo.Get(ctx, cfg.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	err = repo.Delete(ctx, cfg.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestMongoRepository_GetActiveForTrigger_ScopedOverridesGlobal(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	global := createTestConfig("order_placed", "", "Global", true)
	scoped := createTestConfig("order_placed", "checkout", "Scoped", true)
	disabled := createTestConfig("order_placed", "checkout", "Scoped Disabled", false)
	require.NoError(t, repo.Create(ctx, global))
	require.NoError(t, repo.Create(ctx, scoped))
	require.NoError(t, repo.Create(ctx, disabled))

	active, err := repo.GetActiveForTrigger(ctx, "order_placed", "checkout")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Scoped", active[0].Name)

	active, err = repo.GetActiveForTrigger(ctx, "order_placed", "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Global", active[0].Name)
}

func TestMongoRepository_GetActiveForTrigger_FallsBackToGlobal(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	global := createTestConfig("order_placed", "", "Global", true)
	require.NoError(t, repo.Create(ctx, global))

	active, err := repo.GetActiveForTrigger(ctx, "order_placed", "unknown-scope")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Global", active[0].Name)
}

func TestMongoRepository_CountEnabled(t *testing.T) {
	repo := setupMongoRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, createTestConfig("order_placed", "", "A", true)))
	require.NoError(t, repo.Create(ctx, createTestConfig("order_placed", "", "B", false)))
	require.NoError(t, repo.Create(ctx, createTestConfig("page_view", "", "C", true)))

	count, err := repo.CountEnabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
