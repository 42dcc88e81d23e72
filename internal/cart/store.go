// Package cart loads carts from the shared mongo store. A checkout is
// started from a cart snapshot; cart mutations after that point never
// reach the in-flight checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrCartEmpty    = errors.New("cart is empty, nothing to checkout")
	ErrCartClosed   = errors.New("cart is not open for checkout")
)

type Store struct {
	collection *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{collection: db.Collection("carts")}
}

func (s *Store) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"_id": cartID}
	err := s.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// MarkConverted flips an open cart to CONVERTED when a checkout starts
// from it.
func (s *Store) MarkConverted(ctx context.Context, cartID string) error {
	filter := bson.M{"_id": cartID, "status": domain.CartStatusOpen}
	update := bson.M{"$set": bson.M{
		"status":     domain.CartStatusConverted,
		"updated_at": time.Now(),
	}}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark cart converted: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartClosed
	}
	return nil
}
