package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// MongoAuditStore persists the append-only audit trail.
type MongoAuditStore struct {
	coll *mongo.Collection
}

func (s *MongoAuditStore) Append(ctx context.Context, e *models.AuditEvent) error {
	_, err := s.coll.InsertOne(ctx, e)
	return err
}

func (s *MongoAuditStore) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*models.AuditEvent, error) {
	return s.find(ctx, bson.M{"resource_type": resourceType, "resource_id": resourceID})
}

func (s *MongoAuditStore) ListByActor(ctx context.Context, actorID string) ([]*models.AuditEvent, error) {
	return s.find(ctx, bson.M{"actor_id": actorID})
}

func (s *MongoAuditStore) ListByContext(ctx context.Context, contextTag string) ([]*models.AuditEvent, error) {
	return s.find(ctx, bson.M{"context": contextTag})
}

func (s *MongoAuditStore) find(ctx context.Context, filter bson.M) ([]*models.AuditEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// AnonymizeActor overwrites the actor id with the sentinel and flags the
// metadata on every event the actor produced. Timestamps, resource linkage
// and state snapshots are preserved so the compliance shape of history
// survives the erase.
func (s *MongoAuditStore) AnonymizeActor(ctx context.Context, actorID, sentinel string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"actor_id": actorID},
		bson.M{"$set": bson.M{
			"actor_id":                          sentinel,
			"metadata." + models.MetadataAnonymized: true,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
