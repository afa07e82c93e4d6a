// Package mongodb provides MongoDB connectivity for the document store.
package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/canteiro/canteiro/pkg/observability/logger"
)

// Adapter provides MongoDB connectivity and implements the document store
// executor contract used by the CRUD engine.
type Adapter struct {
	client   *mongo.Client
	database string
	logger   logger.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// Config holds MongoDB adapter configuration.
type Config struct {
	URL              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// NewAdapter connects to MongoDB and verifies connectivity via ping. It does
// not create indexes or collections.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mongodb URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("MongoDB connection established", "database", cfg.Database)
	return &Adapter{
		client:   client,
		database: cfg.Database,
		logger:   log,
		timeout:  cfg.OperationTimeout,
	}, nil
}

func (a *Adapter) Client() *mongo.Client {
	return a.client
}

func (a *Adapter) Database() *mongo.Database {
	return a.client.Database(a.database)
}

func (a *Adapter) Collection(name string) *mongo.Collection {
	return a.Database().Collection(name)
}

func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return fmt.Errorf("mongodb adapter is closed")
	}
	return a.client.Ping(ctx, readpref.Primary())
}

// HealthCheck pings MongoDB with a short timeout.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Ping(hcCtx); err != nil {
		a.logger.Error("MongoDB health check failed", "error", err)
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}
	return nil
}

// InsertOne inserts a document and returns the assigned ObjectID.
func (a *Adapter) InsertOne(ctx context.Context, collection string, document any) (primitive.ObjectID, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).InsertOne(opCtx, document)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid, nil
}

// FindOne returns the first document matching the filter. A miss surfaces as
// mongo.ErrNoDocuments.
func (a *Adapter) FindOne(ctx context.Context, collection string, filter any) (bson.Raw, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	return a.Collection(collection).FindOne(opCtx, filter).Raw()
}

// FindMany returns all matching documents in natural order. A limit of zero
// means no limit.
func (a *Adapter) FindMany(ctx context.Context, collection string, filter any, skip, limit int64) ([]bson.Raw, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	opts := options.Find()
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := a.Collection(collection).Find(opCtx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []bson.Raw
	if err := cursor.All(opCtx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOne updates a single matching document and returns the matched count.
func (a *Adapter) UpdateOne(ctx context.Context, collection string, filter, update any) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).UpdateOne(opCtx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// UpdateMany updates all matching documents and returns the matched count.
func (a *Adapter) UpdateMany(ctx context.Context, collection string, filter, update any) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).UpdateMany(opCtx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// DeleteOne deletes a single matching document and returns the deleted count.
func (a *Adapter) DeleteOne(ctx context.Context, collection string, filter any) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).DeleteOne(opCtx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteMany deletes all matching documents and returns the deleted count.
func (a *Adapter) DeleteMany(ctx context.Context, collection string, filter any) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := a.Collection(collection).DeleteMany(opCtx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Count returns the number of documents matching the filter.
func (a *Adapter) Count(ctx context.Context, collection string, filter any) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	return a.Collection(collection).CountDocuments(opCtx, filter)
}

func (a *Adapter) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
