// Package store manages the document-store connection lifecycle.
//
// The client is constructed explicitly in main and passed by reference
// to the services that need collections; nothing in this package holds
// global state.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/config"
)

// Client wraps the mongo driver client with an explicit lifecycle.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	cfg    config.MongoConfig
}

// Connect establishes the connection, retrying with a fixed backoff up
// to cfg.MaxRetries before giving up.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().
		ApplyURI(cfg.URI.Value()).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	start := time.Now()

	var client *mongo.Client
	var err error
	for attempt := 0; ; attempt++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			err = client.Ping(ctx, readpref.Primary())
			if err == nil {
				break
			}
			_ = client.Disconnect(ctx)
		}

		if attempt >= cfg.MaxRetries {
			return nil, fmt.Errorf("failed to connect to mongo after %d attempts: %w", attempt+1, err)
		}

		logger.Warn("mongo connection failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryDelay.Duration()):
		}
	}

	logger.Info("mongo connected",
		zap.String("database", cfg.Database),
		zap.Duration("took", time.Since(start)))

	return &Client{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
		cfg:    cfg,
	}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Collection returns a collection handle by name.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Ping reports whether the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from the store.
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info("closing mongo connection")
	return c.client.Disconnect(ctx)
}

// IsDuplicateKey reports whether err is a unique-index violation.
// Callers translate these into domain-specific conflict errors at the
// point of occurrence; the raw driver error never reaches a client.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsNoDocuments reports whether err means the query matched nothing.
func IsNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
