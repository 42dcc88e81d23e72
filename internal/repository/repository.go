package repository

import (
	"context"
	"errors"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

var (
	ErrCheckoutNotFound = errors.New("checkout not found")
	ErrCouponNotFound   = errors.New("coupon not found")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is one row of the transactional outbox. Payload is stored
// as JSONB and published to kafka verbatim.
type OutboxEvent struct {
	ID          int64
	AggregateId string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type RepoInterface interface {
	SaveCheckout(ctx context.Context, checkout *domain.Checkout) error
	GetCheckout(ctx context.Context, id string) (*domain.Checkout, error)
	GetStaleActiveCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Checkout, error)

	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	GetOrderByCheckoutID(ctx context.Context, checkoutID string) (*domain.Order, error)

	GetCoupon(ctx context.Context, code string) (*domain.Coupon, error)

	InsertEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error

	RunMigrations(*Credentials) error
	Close() error
}
