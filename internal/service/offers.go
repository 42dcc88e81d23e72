package service

import (
	"context"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

// StaticCatalog serves offers from a fixed list loaded at startup.
type StaticCatalog struct {
	offers map[string]domain.Offer
}

func NewStaticCatalog(offers []domain.Offer) *StaticCatalog {
	m := make(map[string]domain.Offer, len(offers))
	for _, o := range offers {
		m[o.ID] = o
	}
	return &StaticCatalog{offers: m}
}

func (c *StaticCatalog) Offer(_ context.Context, id string) (*domain.Offer, error) {
	o, ok := c.offers[id]
	if !ok {
		return nil, ErrOfferNotAvailable
	}
	return &o, nil
}
