package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBBackend resolves option data from a Mongo collection. The query map
// may reference `{identifier}` in string values; without a query the lookup
// falls back to Field, then _id.
type MongoDBBackend struct {
	client *mongo.Client
}

func NewMongoDBBackend(client *mongo.Client) *MongoDBBackend {
	return &MongoDBBackend{
		client: client,
	}
}

func (b *MongoDBBackend) Fetch(ctx context.Context, config SourceConfig, identifier string) (map[string]interface{}, error) {
	if config.Database == "" || config.Collection == "" {
		return nil, fmt.Errorf("database and collection are required for MongoDB backend")
	}

	collection := b.client.Database(config.Database).Collection(config.Collection)

	filter := bson.M{}
	if len(config.Query) > 0 {
		for k, v := range config.Query {
			if strVal, ok := v.(string); ok {
				filter[k] = strings.ReplaceAll(strVal, "{identifier}", identifier)
			} else {
				filter[k] = v
			}
		}
	} else if config.Field != "" {
		filter[config.Field] = identifier
	} else {
		filter["_id"] = identifier
	}

	var result bson.M
	err := collection.FindOne(ctx, filter, options.FindOne()).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb query failed: %w", err)
	}

	resultMap := make(map[string]interface{}, len(result))
	for key, value := range result {
		resultMap[key] = value
	}

	return resultMap, nil
}

// PostgreSQLBackend resolves option data from a Postgres table. Collection
// names the table; the first matching row becomes the fact document.
type PostgreSQLBackend struct {
	db *sql.DB
}

func NewPostgreSQLBackend(db *sql.DB) *PostgreSQLBackend {
	return &PostgreSQLBackend{
		db: db,
	}
}

func (b *PostgreSQLBackend) Fetch(ctx context.Context, config SourceConfig, identifier string) (map[string]interface{}, error) {
	if config.Collection == "" {
		return nil, fmt.Errorf("collection (table name) is required for PostgreSQL backend")
	}

	var whereClause string
	var args []interface{}

	if len(config.Query) > 0 {
		var conditions []string
		argIndex := 1
		for k, v := range config.Query {
			valStr := strings.ReplaceAll(fmt.Sprintf("%v", v), "{identifier}", identifier)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", k, argIndex))
			args = append(args, valStr)
			argIndex++
		}
		whereClause = strings.Join(conditions, " AND ")
	} else if config.Field != "" {
		whereClause = fmt.Sprintf("%s = $1", config.Field)
		args = []interface{}{identifier}
	} else {
		return nil, fmt.Errorf("either query or field must be specified for PostgreSQL backend")
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", config.Collection, whereClause)

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgresql query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("row not found")
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, fmt.Errorf("postgresql scan failed: %w", err)
	}

	result := make(map[string]interface{})
	for i, col := range columns {
		val := values[i]

		// JSONB columns surface as byte slices; decode them so nested fields
		// flatten into dotted placeholder keys.
		if bytes, ok := val.([]byte); ok {
			var jsonVal interface{}
			if err := json.Unmarshal(bytes, &jsonVal); err == nil {
				result[col] = jsonVal
			} else {
				result[col] = string(bytes)
			}
		} else {
			result[col] = val
		}
	}

	return result, nil
}
