package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"beacon/internal/provider"
)

func TestPostgreSQLBackend_FetchByField(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	ctx := context.Background()

	_, err := infra.PostgresDB.ExecContext(ctx,
		`INSERT INTO customer_options (identifier, email, name, plan, attributes)
		 VALUES ($1, $2, $3, $4, $5)`,
		"cust-1", "ada@example.com", "Ada", "pro", `{"country": "DE", "seats": 5}`)
	require.NoError(t, err)

	backend := provider.NewPostgreSQLBackend(infra.PostgresDB)

	facts, err := backend.Fetch(ctx, provider.SourceConfig{
		Collection: "customer_options",
		Field:      "identifier",
	}, "cust-1")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", facts["email"])
	assert.Equal(t, "pro", facts["plan"])

	attributes, ok := facts["attributes"].(map[string]interface{})
	require.True(t, ok, "JSONB column should decode into a map")
	assert.Equal(t, "DE", attributes["country"])
}

func TestPostgreSQLBackend_FetchByQuery(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	ctx := context.Background()

	_, err := infra.PostgresDB.ExecContext(ctx,
		`INSERT INTO customer_options (identifier, email, plan) VALUES ($1, $2, $3)`,
		"cust-2", "bob@example.com", "free")
	require.NoError(t, err)

	backend := provider.NewPostgreSQLBackend(infra.PostgresDB)

	facts, err := backend.Fetch(ctx, provider.SourceConfig{
		Collection: "customer_options",
		Query:      map[string]interface{}{"identifier": "{identifier}"},
	}, "cust-2")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", facts["email"])
}

func TestPostgreSQLBackend_RowNotFound(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	ctx := context.Background()

	backend := provider.NewPostgreSQLBackend(infra.PostgresDB)

	_, err := backend.Fetch(ctx, provider.SourceConfig{
		Collection: "customer_options",
		Field:      "identifier",
	}, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMongoDBBackend_Fetch(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	ctx := context.Background()

	collection := infra.MongoDB.Collection("orders")
	_, err := collection.InsertOne(ctx, bson.M{
		"_id":      "ord-1",
		"order_id": "A-1001",
		"status":   "shipped",
		"total":    42.5,
	})
	require.NoError(t, err)

	backend := provider.NewMongoDBBackend(infra.MongoClient)

	facts, err := backend.Fetch(ctx, provider.SourceConfig{
		Database:   "test_db",
		Collection: "orders",
		Field:      "order_id",
	}, "A-1001")
	require.NoError(t, err)
	assert.Equal(t, "shipped", facts["status"])

	facts, err = backend.Fetch(ctx, provider.SourceConfig{
		Database:   "test_db",
		Collection: "orders",
		Query:      map[string]interface{}{"_id": "{identifier}"},
	}, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "A-1001", facts["order_id"])

	_, err = backend.Fetch(ctx, provider.SourceConfig{
		Database:   "test_db",
		Collection: "orders",
		Field:      "order_id",
	}, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCacheBackend_Fetch(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)
	ctx := context.Background()

	require.NoError(t, infra.RedisClient.Set(ctx, "session:sess-1",
		`{"session_id": "sess-1", "channel": "web"}`, time.Minute).Err())
	require.NoError(t, infra.RedisClient.Set(ctx, "session:sess-2",
		"plain-token", time.Minute).Err())

	backend := provider.NewCacheBackend(infra.RedisClient)

	facts, err := backend.Fetch(ctx, provider.SourceConfig{
		KeyPattern: "session:{identifier}",
	}, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "web", facts["channel"])

	facts, err = backend.Fetch(ctx, provider.SourceConfig{
		KeyPattern: "session:{identifier}",
	}, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", facts["value"])

	_, err = backend.Fetch(ctx, provider.SourceConfig{
		KeyPattern: "session:{identifier}",
	}, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
