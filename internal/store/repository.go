package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"beacon/internal/constants"
	"beacon/internal/template"
	pkgerrors "beacon/pkg/errors"
	"beacon/pkg/metrics"
)

// Repository is the persistence boundary for template configurations.
type Repository interface {
	Create(ctx context.Context, cfg *TemplateConfig) error
	Get(ctx context.Context, id string) (*TemplateConfig, error)
	List(ctx context.Context, triggerID string) ([]TemplateConfig, error)
	Update(ctx context.Context, cfg *TemplateConfig) error
	Delete(ctx context.Context, id string) error

	// GetActiveForTrigger returns the enabled configurations that apply to one
	// firing: the configurations scoped to scopeID when any exist, otherwise
	// the trigger's global configurations.
	GetActiveForTrigger(ctx context.Context, triggerID, scopeID string) ([]TemplateConfig, error)

	CountEnabled(ctx context.Context) (int64, error)
}

// templateConfigDoc is the Mongo document shape. Values is stored split by
// variant so the document stays queryable; the codec in template.Values only
// covers JSON.
type templateConfigDoc struct {
	ID          string               `bson:"_id"`
	TriggerID   string               `bson:"trigger_id"`
	ScopeID     string               `bson:"scope_id"`
	Name        string               `bson:"name"`
	ValueScalar *string              `bson:"value_scalar,omitempty"`
	ValuePairs  []template.KeyValue  `bson:"value_pairs,omitempty"`
	Condition   string               `bson:"condition,omitempty"`
	Enabled     bool                 `bson:"enabled"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func docFromConfig(cfg *TemplateConfig) templateConfigDoc {
	doc := templateConfigDoc{
		ID:        cfg.ID,
		TriggerID: cfg.TriggerID,
		ScopeID:   cfg.ScopeID,
		Name:      cfg.Name,
		Condition: cfg.Condition,
		Enabled:   cfg.Enabled,
		CreatedAt: cfg.CreatedAt,
		UpdatedAt: cfg.UpdatedAt,
	}
	if cfg.Values.IsScalar() {
		s := cfg.Values.ScalarValue()
		doc.ValueScalar = &s
	} else if !cfg.Values.IsEmpty() {
		doc.ValuePairs = cfg.Values.PairsValue()
	}
	return doc
}

func (d *templateConfigDoc) toConfig() TemplateConfig {
	cfg := TemplateConfig{
		ID:        d.ID,
		TriggerID: d.TriggerID,
		ScopeID:   d.ScopeID,
		Name:      d.Name,
		Condition: d.Condition,
		Enabled:   d.Enabled,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.ValueScalar != nil {
		cfg.Values = template.Scalar(*d.ValueScalar)
	} else if d.ValuePairs != nil {
		cfg.Values = template.Pairs(d.ValuePairs)
	}
	return cfg
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(constants.TemplateCollection),
	}
}

func (r *MongoRepository) Create(ctx context.Context, cfg *TemplateConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, docFromConfig(cfg))
	if err != nil {
		metrics.IncDatabaseQuery("mongodb", "insert", "error")
		if mongo.IsDuplicateKeyError(err) {
			return pkgerrors.ErrConflict.WithCause(err).
				WithDetail("message", fmt.Sprintf("template config '%s' already exists", cfg.ID))
		}
		return fmt.Errorf("failed to create template config: %w", err)
	}

	metrics.IncDatabaseQuery("mongodb", "insert", "success")
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*TemplateConfig, error) {
	var doc templateConfigDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		metrics.IncDatabaseQuery("mongodb", "find_one", "not_found")
		return nil, pkgerrors.ErrNotFound.
			WithDetail("message", fmt.Sprintf("template config '%s' not found", id))
	}
	if err != nil {
		metrics.IncDatabaseQuery("mongodb", "find_one", "error")
		return nil, fmt.Errorf("failed to get template config: %w", err)
	}

	metrics.IncDatabaseQuery("mongodb", "find_one", "success")
	cfg := doc.toConfig()
	return &cfg, nil
}

func (r *MongoRepository) List(ctx context.Context, triggerID string) ([]TemplateConfig, error) {
	filter := bson.M{}
	if triggerID != "" {
		filter["trigger_id"] = triggerID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.IncDatabaseQuery("mongodb", "find", "error")
		return nil, fmt.Errorf("failed to list template configs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []templateConfigDoc
	if err := cursor.All(ctx, &docs); err != nil {
		metrics.IncDatabaseQuery("mongodb", "find", "error")
		return nil, fmt.Errorf("failed to decode template configs: %w", err)
	}

	metrics.IncDatabaseQuery("mongodb", "find", "success")
	return docsToConfigs(docs), nil
}

func (r *MongoRepository) Update(ctx context.Context, cfg *TemplateConfig) error {
	cfg.UpdatedAt = time.Now().UTC()

	doc := docFromConfig(cfg)
	update := bson.M{"$set": bson.M{
		"trigger_id":   doc.TriggerID,
		"scope_id":     doc.ScopeID,
		"name":         doc.Name,
		"value_scalar": doc.ValueScalar,
		"value_pairs":  doc.ValuePairs,
		"condition":    doc.Condition,
		"enabled":      doc.Enabled,
		"updated_at":   doc.UpdatedAt,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": cfg.ID}, update)
	if err != nil {
		metrics.IncDatabaseQuery("mongodb", "update", "error")
		return fmt.Errorf("failed to update template config: %w", err)
	}
	if res.MatchedCount == 0 {
		metrics.IncDatabaseQuery("mongodb", "update", "not_found")
		return pkgerrors.ErrNotFound.
			WithDetail("message", fmt.Sprintf("template config '%s' not found", cfg.ID))
	}

	metrics.IncDatabaseQuery("mongodb", "update", "success")
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		metrics.IncDatabaseQuery("mongodb", "delete", "error")
		return fmt.Errorf("failed to delete template config: %w", err)
	}
	if res.DeletedCount == 0 {
		metrics.IncDatabaseQuery("mongodb", "delete", "not_found")
		return pkgerrors.ErrNotFound.
			WithDetail("message", fmt.Sprintf("template config '%s' not found", id))
	}

	metrics.IncDatabaseQuery("mongodb", "delete", "success")
	return nil
}

func (r *MongoRepository) GetActiveForTrigger(ctx context.Context, triggerID, scopeID string) ([]TemplateConfig, error) {
	if scopeID != "" {
		scoped, err := r.findEnabled(ctx, triggerID, scopeID)
		if err != nil {
			return nil, err
		}
		if len(scoped) > 0 {
			return scoped, nil
		}
	}
	return r.findEnabled(ctx, triggerID, "")
}

func (r *MongoRepository) findEnabled(ctx context.Context, triggerID, scopeID string) ([]TemplateConfig, error) {
	filter := bson.M{
		"trigger_id": triggerID,
		"scope_id":   scopeID,
		"enabled":    true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.IncDatabaseQuery("mongodb", "find", "error")
		return nil, fmt.Errorf("failed to find active template configs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []templateConfigDoc
	if err := cursor.All(ctx, &docs); err != nil {
		metrics.IncDatabaseQuery("mongodb", "find", "error")
		return nil, fmt.Errorf("failed to decode active template configs: %w", err)
	}

	metrics.IncDatabaseQuery("mongodb", "find", "success")
	return docsToConfigs(docs), nil
}

func (r *MongoRepository) CountEnabled(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"enabled": true})
	if err != nil {
		metrics.IncDatabaseQuery("mongodb", "count", "error")
		return 0, fmt.Errorf("failed to count template configs: %w", err)
	}

	metrics.IncDatabaseQuery("mongodb", "count", "success")
	return count, nil
}

func docsToConfigs(docs []templateConfigDoc) []TemplateConfig {
	configs := make([]TemplateConfig, 0, len(docs))
	for _, doc := range docs {
		configs = append(configs, doc.toConfig())
	}
	return configs
}
