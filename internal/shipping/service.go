// Package shipping fetches carrier quotes and postal-code address data
// from external providers, with caching and a fixed fallback set when
// the provider is down.
package shipping

import (
	"context"
	"errors"
	"log"

	"github.com/sony/gobreaker/v2"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/cache"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

var ErrAddressNotFound = errors.New("address not found for postal code")

type QuoteProvider interface {
	Quote(ctx context.Context, originPostalCode, destinationPostalCode string, parcels []domain.Parcel) ([]domain.ShippingQuote, error)
}

type AddressProvider interface {
	Lookup(ctx context.Context, postalCode string) (*domain.Address, error)
}

type Cache interface {
	Get(ctx context.Context, postalCode string) ([]domain.ShippingQuote, error)
	Set(ctx context.Context, postalCode string, quotes []domain.ShippingQuote) error
}

type Service struct {
	provider QuoteProvider
	address  AddressProvider
	cache    Cache
	origin   string
	breaker  *gobreaker.CircuitBreaker[[]domain.ShippingQuote]
}

func NewService(provider QuoteProvider, address AddressProvider, quoteCache Cache, originPostalCode string) *Service {
	breaker := gobreaker.NewCircuitBreaker[[]domain.ShippingQuote](gobreaker.Settings{
		Name: "shipping-quotes",
	})
	return &Service{
		provider: provider,
		address:  address,
		cache:    quoteCache,
		origin:   originPostalCode,
		breaker:  breaker,
	}
}

// Quotes returns the carrier options for a destination. Hits the cache
// first; on provider failure or an open breaker it falls back to the
// fixed default set, which is never empty.
func (s *Service) Quotes(ctx context.Context, destinationPostalCode string, parcels []domain.Parcel) []domain.ShippingQuote {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, destinationPostalCode)
		if err == nil {
			return cached
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("quote cache read failed cep = %v: %v", destinationPostalCode, err)
		}
	}

	quotes, err := s.breaker.Execute(func() ([]domain.ShippingQuote, error) {
		return s.provider.Quote(ctx, s.origin, destinationPostalCode, parcels)
	})
	if err != nil || len(quotes) == 0 {
		log.Printf("quote provider unavailable, using defaults cep = %v: %v", destinationPostalCode, err)
		return domain.DefaultQuotes()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, destinationPostalCode, quotes); err != nil {
			log.Printf("quote cache write failed cep = %v: %v", destinationPostalCode, err)
		}
	}
	return quotes
}

// Lookup resolves address fields for a postal code.
func (s *Service) Lookup(ctx context.Context, postalCode string) (*domain.Address, error) {
	return s.address.Lookup(ctx, postalCode)
}
