package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// Partition (collection) names. Each aggregate type occupies its own named
// partition of self-describing records looked up by id.
const (
	CollectionJourneys        = "journeys"
	CollectionJourneyVersions = "journey_versions"
	CollectionAuditEvents     = "audit_events"
	CollectionPrivacySettings = "privacy_settings"
	CollectionMemories        = "memories"
	CollectionIntentProfiles  = "intent_profiles"
)

// MongoStores bundles the MongoDB-backed implementations that share one
// database handle.
type MongoStores struct {
	Journeys *MongoJourneyStore
	Versions *MongoVersionStore
	Audit    *MongoAuditStore
	Privacy  *MongoPrivacyStore
	Memories *MongoMemoryStore
	Intents  *MongoIntentStore
}

// NewMongoStores wires every Mongo-backed store against db.
func NewMongoStores(db *mongo.Database) *MongoStores {
	return &MongoStores{
		Journeys: &MongoJourneyStore{coll: db.Collection(CollectionJourneys)},
		Versions: &MongoVersionStore{coll: db.Collection(CollectionJourneyVersions)},
		Audit:    &MongoAuditStore{coll: db.Collection(CollectionAuditEvents)},
		Privacy:  &MongoPrivacyStore{coll: db.Collection(CollectionPrivacySettings)},
		Memories: &MongoMemoryStore{coll: db.Collection(CollectionMemories)},
		Intents:  &MongoIntentStore{coll: db.Collection(CollectionIntentProfiles)},
	}
}

// EnsureIndexes creates the indexes the engine relies on. The unique
// (journey_id, version_number) index is load-bearing: it is what makes a
// losing concurrent version append fail instead of silently overwriting.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	versionIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "journey_id", Value: 1}, {Key: "version_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("journey_version_unique"),
		},
	}
	if _, err := db.Collection(CollectionJourneyVersions).Indexes().CreateMany(ctx, versionIdx); err != nil {
		return fmt.Errorf("journey_versions indexes: %w", err)
	}

	journeyIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := db.Collection(CollectionJourneys).Indexes().CreateMany(ctx, journeyIdx); err != nil {
		return fmt.Errorf("journeys indexes: %w", err)
	}

	auditIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "context", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := db.Collection(CollectionAuditEvents).Indexes().CreateMany(ctx, auditIdx); err != nil {
		return fmt.Errorf("audit_events indexes: %w", err)
	}

	memoryIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := db.Collection(CollectionMemories).Indexes().CreateMany(ctx, memoryIdx); err != nil {
		return fmt.Errorf("memories indexes: %w", err)
	}

	return nil
}

func mapNoDocuments(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return err
}
