package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// MongoVersionStore persists immutable journey snapshots. The unique
// (journey_id, version_number) index created by EnsureIndexes backs the
// optimistic-concurrency guarantee: two writers asserting the same expected
// version race to insert the same version number and exactly one wins.
type MongoVersionStore struct {
	coll *mongo.Collection
}

func (s *MongoVersionStore) Append(ctx context.Context, v *models.JourneyVersion, expectedVersion int) error {
	latest, err := s.latestNumber(ctx, v.JourneyID)
	if err != nil {
		return err
	}
	if latest != expectedVersion {
		return fmt.Errorf("journey %s: expected version %d, latest is %d: %w",
			v.JourneyID, expectedVersion, latest, models.ErrConcurrentModification)
	}

	_, err = s.coll.InsertOne(ctx, v)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent writer inserted this version number between the read
		// and the insert; the unique index settles the race.
		return fmt.Errorf("journey %s version %d already written: %w",
			v.JourneyID, v.VersionNumber, models.ErrConcurrentModification)
	}
	return err
}

func (s *MongoVersionStore) latestNumber(ctx context.Context, journeyID string) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version_number", Value: -1}})
	var latest models.JourneyVersion
	err := s.coll.FindOne(ctx, bson.M{"journey_id": journeyID}, opts).Decode(&latest)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return latest.VersionNumber, nil
}

func (s *MongoVersionStore) ListByJourney(ctx context.Context, journeyID string) ([]*models.JourneyVersion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version_number", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"journey_id": journeyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var versions []*models.JourneyVersion
	if err := cursor.All(ctx, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

func (s *MongoVersionStore) Latest(ctx context.Context, journeyID string) (*models.JourneyVersion, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version_number", Value: -1}})
	var latest models.JourneyVersion
	err := s.coll.FindOne(ctx, bson.M{"journey_id": journeyID}, opts).Decode(&latest)
	if err != nil {
		return nil, mapNoDocuments(err, fmt.Sprintf("journey %s versions", journeyID))
	}
	return &latest, nil
}

// RedactByJourney scrubs personal free text out of retained snapshots during
// a global erase. Version numbers, ids, actors and timestamps are preserved.
func (s *MongoVersionStore) RedactByJourney(ctx context.Context, journeyID, placeholder string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"journey_id": journeyID},
		bson.M{"$set": bson.M{"title": placeholder, "narrative": placeholder}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
