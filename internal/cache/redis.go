package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

// QuoteCache stores shipping quotes per destination postal code, so the
// quote provider is hit at most once per distinct destination.
type QuoteCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewQuoteCache(client *redis.Client) *QuoteCache {
	return &QuoteCache{
		client:  client,
		baseTTL: 30 * time.Minute,
	}
}

func (q *QuoteCache) Get(ctx context.Context, postalCode string) ([]domain.ShippingQuote, error) {
	data, err := q.client.Get(ctx, quoteKey(postalCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var quotes []domain.ShippingQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("unmarshal quotes failed: %w", err)
	}
	return quotes, nil
}

func (q *QuoteCache) Set(ctx context.Context, postalCode string, quotes []domain.ShippingQuote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("marshal quotes failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := q.client.Set(ctx, quoteKey(postalCode), data, q.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func quoteKey(postalCode string) string {
	return fmt.Sprintf("quotes:%s", postalCode)
}
