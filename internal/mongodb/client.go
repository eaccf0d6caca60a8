// Package mongodb adapts MongoDB to the corpus and feedback stores.
//
// A single pooled client is shared by all requests. The driver checks a
// connection out of the pool for each operation and returns it when the
// operation finishes, whether it succeeded or failed.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wordsense/internal/config"
	"github.com/fyrsmithlabs/wordsense/internal/logging"
)

// Client wraps a connected mongo.Client bound to one database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logging.Logger
}

// Connect dials MongoDB and verifies the deployment with a ping, both within
// cfg.ConnectTimeout.
func Connect(ctx context.Context, cfg config.MongoDBConfig, logger *logging.Logger) (*Client, error) {
	if !cfg.URI.IsSet() {
		return nil, errors.New("mongodb uri is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI.Value()).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMonitor(commandMonitor(logger))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	logger.Info(ctx, "connected to mongodb",
		logging.SafeURI("uri", cfg.URI.Value()),
		zap.String("database", cfg.Database),
	)
	return NewClient(client, cfg.Database, logger), nil
}

// NewClient wraps an existing client.
func NewClient(client *mongo.Client, database string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}
}

// Find decodes every document in collection matching filter into out, which
// must be a pointer to a slice. A nil filter matches all documents.
func (c *Client) Find(ctx context.Context, collection string, filter any, out any) error {
	if filter == nil {
		filter = primitive.D{}
	}
	cur, err := c.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find in %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decoding %s: %w", collection, err)
	}
	return nil
}

// InsertOne inserts doc and returns the generated id in hex form.
func (c *Client) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	res, err := c.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprint(id), nil
	}
}

// Ping checks the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Disconnect closes all pooled connections.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// IsUnavailable reports whether err means the deployment could not be
// reached, as opposed to a rejected operation.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var sse topology.ServerSelectionError
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.As(err, &sse)
}

func commandMonitor(logger *logging.Logger) *event.CommandMonitor {
	return &event.CommandMonitor{
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			logger.Warn(ctx, "mongodb command failed",
				zap.String("command", evt.CommandName),
				zap.Int64("request_id", evt.RequestID),
				zap.Duration("duration", evt.Duration),
				zap.String("failure", evt.Failure),
			)
		},
	}
}
