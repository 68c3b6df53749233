// Package mongo stores catalog keys as documents of a MongoDB collection.
package mongo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"resourcebank/internal/storage/core"
)

const (
	defaultURI        = "mongodb://localhost:27017"
	defaultDatabase   = "resourcebank"
	defaultCollection = "state"
)

// Config selects the deployment, database and collection.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Store implements core.Store with one document per key.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type document struct {
	Key         string            `bson:"_id"`
	Payload     []byte            `bson:"payload"`
	ContentType string            `bson:"content_type,omitempty"`
	Metadata    map[string]string `bson:"metadata,omitempty"`
	UpdatedAt   time.Time         `bson:"updated_at"`
}

// New connects to MongoDB, retrying the initial ping with exponential backoff.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		cfg.URI = defaultURI
	}
	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.ConnectTimeout
	if err := backoff.Retry(func() error {
		return client.Ping(ctx, readpref.Primary())
	}, backoff.WithContext(policy, ctx)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverMongo }

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	if strings.TrimSpace(key) == "" {
		return core.Info{}, fmt.Errorf("empty key")
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	doc := document{Key: key, Payload: payload, ContentType: opts.ContentType, Metadata: core.CloneMetadata(opts.Metadata), UpdatedAt: time.Now().UTC()}
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true)); err != nil {
		return core.Info{}, fmt.Errorf("upsert %s: %w", key, err)
	}
	return doc.info(), nil
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	doc, err := s.find(ctx, key)
	if err != nil {
		return core.Info{}, nil, err
	}
	return doc.info(), io.NopCloser(bytes.NewReader(doc.Payload)), nil
}

func (s *Store) Head(ctx context.Context, key string) (core.Info, error) {
	doc, err := s.find(ctx, key)
	if err != nil {
		return core.Info{}, err
	}
	return doc.info(), nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["_id"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer func() { _ = cur.Close(ctx) }()
	var out []core.Info
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, doc.info())
	}
	return out, cur.Err()
}

func (s *Store) find(ctx context.Context, key string) (document, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return document{}, fmt.Errorf("find %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return document{}, fmt.Errorf("find %s: %w", key, err)
	}
	return doc, nil
}

func (d document) info() core.Info {
	sum := sha256.Sum256(d.Payload)
	return core.Info{
		Key:          d.Key,
		Size:         int64(len(d.Payload)),
		ContentType:  d.ContentType,
		ETag:         hex.EncodeToString(sum[:]),
		Metadata:     core.CloneMetadata(d.Metadata),
		LastModified: d.UpdatedAt,
	}
}
