package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// MongoPrivacyStore keeps one privacy settings document per user, keyed by
// user id.
type MongoPrivacyStore struct {
	coll *mongo.Collection
}

func (s *MongoPrivacyStore) Get(ctx context.Context, userID string) (*models.PrivacySettings, error) {
	var settings models.PrivacySettings
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&settings)
	if err != nil {
		return nil, mapNoDocuments(err, "privacy settings")
	}
	return &settings, nil
}

func (s *MongoPrivacyStore) Upsert(ctx context.Context, settings *models.PrivacySettings) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": settings.UserID}, settings, opts)
	return err
}
