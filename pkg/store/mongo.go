package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/graphwire/pkg/errors"
)

// MongoConfig holds MongoDB-specific configuration.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// DefaultMongoConfig returns a default MongoDB configuration.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "graphwire",
		Collection: "documents",
	}
}

// MongoStore keeps documents in a single MongoDB collection. Expired
// documents are removed by a TTL index on expires_at and hidden by Get
// until the server reaps them.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoStore connects to MongoDB and ensures the TTL index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "create TTL index")
	}
	return s, nil
}

// Get retrieves a document from MongoDB.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		observeGet(ctx, "mongo", false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, networkError(err, "mongo get %q", key)
	}
	if entry.ExpiresAt != nil && time.Now().After(*entry.ExpiresAt) {
		observeGet(ctx, "mongo", false)
		return nil, false, nil
	}
	observeGet(ctx, "mongo", true)
	return entry.Data, true, nil
}

// Set upserts a document.
func (s *MongoStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		at := time.Now().Add(ttl).UTC()
		entry.ExpiresAt = &at
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return networkError(err, "mongo set %q", key)
	}
	observeSet(ctx, "mongo", len(data))
	return nil
}

// Delete removes a document.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return networkError(err, "mongo delete %q", key)
	}
	return nil
}

// Clear removes every document in the collection.
func (s *MongoStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return networkError(err, "mongo clear")
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store and Clearer.
var (
	_ Store   = (*MongoStore)(nil)
	_ Clearer = (*MongoStore)(nil)
)
