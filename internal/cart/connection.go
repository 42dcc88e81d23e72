package cart

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnConfig controls the connection to the shared cart database. The
// engine only reads carts and flips them to CONVERTED, so the pool can
// stay small; zero values fall back to defaults.
type ConnConfig struct {
	URI              string
	Database         string
	ConnectTimeout   time.Duration
	SelectionTimeout time.Duration
	MaxPoolSize      uint64
	MinPoolSize      uint64
}

func (c ConnConfig) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ConnectTimeout
}

func (c ConnConfig) selectionTimeout() time.Duration {
	if c.SelectionTimeout <= 0 {
		return 5 * time.Second
	}
	return c.SelectionTimeout
}

func (c ConnConfig) maxPoolSize() uint64 {
	if c.MaxPoolSize == 0 {
		return 20
	}
	return c.MaxPoolSize
}

// Connect opens the cart database and verifies it is reachable before
// any checkout can start.
func Connect(ctx context.Context, cfg ConnConfig) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.connectTimeout()).
		SetServerSelectionTimeout(cfg.selectionTimeout()).
		SetMaxPoolSize(cfg.maxPoolSize()).
		SetMinPoolSize(cfg.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect cart database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping cart database: %w", err)
	}

	return client.Database(cfg.Database), nil
}
