package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// MongoJourneyStore persists journey aggregates in the journeys collection.
type MongoJourneyStore struct {
	coll *mongo.Collection
}

func (s *MongoJourneyStore) Insert(ctx context.Context, j *models.Journey) error {
	_, err := s.coll.InsertOne(ctx, j)
	return err
}

func (s *MongoJourneyStore) GetByID(ctx context.Context, id string) (*models.Journey, error) {
	var j models.Journey
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if err != nil {
		return nil, mapNoDocuments(err, fmt.Sprintf("journey %s", id))
	}
	return &j, nil
}

func (s *MongoJourneyStore) ListByUser(ctx context.Context, userID string) ([]*models.Journey, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

func (s *MongoJourneyStore) ListAll(ctx context.Context) ([]*models.Journey, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoJourneyStore) find(ctx context.Context, filter bson.M) ([]*models.Journey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var journeys []*models.Journey
	if err := cursor.All(ctx, &journeys); err != nil {
		return nil, err
	}
	return journeys, nil
}

// Replace writes the whole aggregate in one document replace, keeping every
// aggregate mutation a single indivisible write.
func (s *MongoJourneyStore) Replace(ctx context.Context, j *models.Journey) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": j.ID}, j)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("journey %s: %w", j.ID, models.ErrNotFound)
	}
	return nil
}
