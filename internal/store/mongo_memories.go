package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// MongoMemoryStore persists shareable memories.
type MongoMemoryStore struct {
	coll *mongo.Collection
}

func (s *MongoMemoryStore) Insert(ctx context.Context, m *models.Memory) error {
	_, err := s.coll.InsertOne(ctx, m)
	return err
}

func (s *MongoMemoryStore) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	var m models.Memory
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		return nil, mapNoDocuments(err, fmt.Sprintf("memory %s", id))
	}
	return &m, nil
}

func (s *MongoMemoryStore) ListByOwner(ctx context.Context, userID string) ([]*models.Memory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memories []*models.Memory
	if err := cursor.All(ctx, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

func (s *MongoMemoryStore) Replace(ctx context.Context, m *models.Memory) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("memory %s: %w", m.ID, models.ErrNotFound)
	}
	return nil
}
