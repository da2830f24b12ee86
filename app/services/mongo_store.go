package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// kvDocument one stored entry. Value is the JSON text.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore persistent KVStore on MongoDB with an in-memory LRU in front.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, []byte]
	namespace  string
	logger     *zap.Logger
}

// ConnectMongo opens a client to mongoURL and pings it.
func ConnectMongo(ctx context.Context, mongoURL string, logger *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB")
	return client, nil
}

// NewMongoStore uses collection for storage and takes ownership of client.
func NewMongoStore(ctx context.Context, client *mongo.Client, collection *mongo.Collection, namespace string, l1Size int, logger *zap.Logger) (*MongoStore, error) {
	l1Cache, err := lru.New[string, []byte](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys: bson.D{bson.E{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		logger.Warn("Could not create updated_at index", zap.Error(err))
	}

	return &MongoStore{
		client:     client,
		collection: collection,
		l1Cache:    l1Cache,
		namespace:  namespace,
		logger:     logger,
	}, nil
}

// Get checks the LRU first, then MongoDB.
func (ms *MongoStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if raw, found := ms.l1Cache.Get(key); found {
		ms.logger.Debug("L1 cache hit", zap.String("key", key))
		return append(json.RawMessage(nil), raw...), true, nil
	}

	var doc kvDocument
	err := ms.collection.FindOne(ctx, bson.M{"_id": ms.namespace + key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		ms.logger.Error("MongoDB get failed", zap.Error(err), zap.String("key", key))
		return nil, false, fmt.Errorf("mongodb get %s: %w", key, err)
	}

	ms.l1Cache.Add(key, []byte(doc.Value))
	return json.RawMessage(doc.Value), true, nil
}

func (ms *MongoStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	doc := kvDocument{Key: ms.namespace + key, Value: string(data), UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := ms.collection.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts); err != nil {
		ms.l1Cache.Remove(key)
		ms.logger.Error("MongoDB set failed", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("mongodb set %s: %w", key, err)
	}

	ms.l1Cache.Add(key, data)
	return nil
}

func (ms *MongoStore) Delete(ctx context.Context, key string) error {
	ms.l1Cache.Remove(key)

	if _, err := ms.collection.DeleteOne(ctx, bson.M{"_id": ms.namespace + key}); err != nil {
		return fmt.Errorf("mongodb delete %s: %w", key, err)
	}
	return nil
}

// ListByPrefix always reads MongoDB; the LRU only serves point reads.
func (ms *MongoStore) ListByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{bson.E{Key: "_id", Value: 1}})
	cursor, err := ms.collection.Find(ctx, ms.prefixFilter(prefix), opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb list %s: %w", prefix, err)
	}
	defer cursor.Close(ctx)

	entries := make([]Entry, 0)
	for cursor.Next(ctx) {
		var doc kvDocument
		if err := cursor.Decode(&doc); err != nil {
			ms.logger.Warn("Skipping undecodable document", zap.Error(err))
			continue
		}
		entries = append(entries, Entry{
			Key:   strings.TrimPrefix(doc.Key, ms.namespace),
			Value: json.RawMessage(doc.Value),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongodb cursor: %w", err)
	}
	return validEntries(entries, ms.logger), nil
}

func (ms *MongoStore) Clear(ctx context.Context) error {
	ms.l1Cache.Purge()

	result, err := ms.collection.DeleteMany(ctx, ms.prefixFilter(""))
	if err != nil {
		return fmt.Errorf("mongodb clear: %w", err)
	}
	ms.logger.Info("Cleared MongoDB namespace",
		zap.String("namespace", ms.namespace),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

// Close disconnects the client handed to NewMongoStore.
func (ms *MongoStore) Close() error {
	if ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

// WarmUp loads the most recently written entries into the LRU.
func (ms *MongoStore) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := ms.collection.Find(ctx, ms.prefixFilter(""), opts)
	if err != nil {
		return fmt.Errorf("mongodb warm up: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var doc kvDocument
		if err := cursor.Decode(&doc); err != nil {
			ms.logger.Warn("Skipping undecodable document in warm up", zap.Error(err))
			continue
		}
		ms.l1Cache.Add(strings.TrimPrefix(doc.Key, ms.namespace), []byte(doc.Value))
		count++
	}

	ms.logger.Info("Cache warm up done",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", ms.l1Cache.Len()))
	return cursor.Err()
}

func (ms *MongoStore) prefixFilter(prefix string) bson.M {
	return bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(ms.namespace+prefix)}}
}
