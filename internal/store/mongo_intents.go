package store

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/pkg/utils"
)

// MongoIntentStore persists intent profiles encrypted at rest. Only the user
// id and the update timestamp are stored in the clear; the profile payload is
// sealed with AES-256-GCM.
type MongoIntentStore struct {
	coll *mongo.Collection

	// key is the AES-256 key; when empty, EncryptionKeyFromEnv is consulted
	// lazily so local setups without the key fail at first use, not at boot.
	key []byte
}

type intentDocument struct {
	UserID     string    `bson:"_id"`
	Ciphertext string    `bson:"ciphertext"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// WithKey sets the encryption key explicitly (used by construction in main).
func (s *MongoIntentStore) WithKey(key []byte) *MongoIntentStore {
	s.key = key
	return s
}

func (s *MongoIntentStore) encryptionKey() ([]byte, error) {
	if len(s.key) == 32 {
		return s.key, nil
	}
	return utils.EncryptionKeyFromEnv()
}

func (s *MongoIntentStore) Get(ctx context.Context, userID string) (*models.IntentProfile, error) {
	var doc intentDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		return nil, mapNoDocuments(err, "intent profile")
	}

	key, err := s.encryptionKey()
	if err != nil {
		return nil, err
	}
	plaintext, err := utils.Open(key, doc.Ciphertext)
	if err != nil {
		return nil, err
	}

	var profile models.IntentProfile
	if err := json.Unmarshal(plaintext, &profile); err != nil {
		return nil, err
	}
	profile.UserID = doc.UserID
	profile.UpdatedAt = doc.UpdatedAt
	return &profile, nil
}

func (s *MongoIntentStore) Put(ctx context.Context, p *models.IntentProfile) error {
	key, err := s.encryptionKey()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	ciphertext, err := utils.Seal(key, payload)
	if err != nil {
		return err
	}

	doc := intentDocument{UserID: p.UserID, Ciphertext: ciphertext, UpdatedAt: p.UpdatedAt}
	opts := options.Replace().SetUpsert(true)
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": p.UserID}, doc, opts)
	return err
}

// Delete removes the profile outright; the intent profile has no retention
// requirement, so erasure deletes instead of redacting.
func (s *MongoIntentStore) Delete(ctx context.Context, userID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
