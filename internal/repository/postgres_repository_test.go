package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/order"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestCheckout(id string) *domain.Checkout {
	return &domain.Checkout{
		ID:     id,
		CartID: "cart-1",
		UserID: "user-1",
		Status: domain.CheckoutStatusActive,
		Step:   domain.StepPayment,
		Snapshot: domain.CartSnapshot{
			Items: []domain.CartSnapshotItem{
				{ProductID: "p1", ProductName: "Produto", UnitPrice: 5000, Quantity: 2, Subtotal: 10000},
			},
			Subtotal: 10000,
		},
		Customer: domain.Customer{Name: "Ana", Email: "ana@example.com", Document: "12345678900", Phone: "11999990000"},
		SelectedQuote: &domain.ShippingQuote{
			ID: "pac", Carrier: "Correios", Service: "PAC", Price: 2500, DeliveryDays: 9,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func newTestOrder(checkoutID string) *domain.Order {
	return &domain.Order{
		ID:         uuid.NewString(),
		CheckoutID: checkoutID,
		UserID:     "user-1",
		Subtotal:   10000,
		Total:      12500,
		Currency:   "BRL",
		Outcome:    domain.PaymentOutcomePaid,
		CreatedAt:  time.Now(),
	}
}

func TestSaveCheckout_RoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	checkout := newTestCheckout(uuid.NewString())

	require.NoError(t, repo.SaveCheckout(ctx, checkout))

	fetched, err := repo.GetCheckout(ctx, checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, checkout.ID, fetched.ID)
	assert.Equal(t, domain.Cents(10000), fetched.Subtotal())
	assert.Equal(t, domain.StepPayment, fetched.Step)
	require.NotNil(t, fetched.SelectedQuote)
	assert.Equal(t, domain.Cents(2500), fetched.SelectedQuote.Price)
}

func TestSaveCheckout_UpsertOverwrites(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	checkout := newTestCheckout(uuid.NewString())
	require.NoError(t, repo.SaveCheckout(ctx, checkout))

	checkout.Status = domain.CheckoutStatusPaymentResolved
	checkout.Generation = 3
	require.NoError(t, repo.SaveCheckout(ctx, checkout))

	fetched, err := repo.GetCheckout(ctx, checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusPaymentResolved, fetched.Status)
	assert.Equal(t, 3, fetched.Generation)
}

func TestGetCheckout_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetCheckout(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestGetStaleActiveCheckouts(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	stale := newTestCheckout(uuid.NewString())
	require.NoError(t, repo.SaveCheckout(ctx, stale))

	resolved := newTestCheckout(uuid.NewString())
	resolved.Status = domain.CheckoutStatusPaymentResolved
	require.NoError(t, repo.SaveCheckout(ctx, resolved))

	// updated_at is set on save, so a future cutoff catches the stale
	// ACTIVE session and nothing else.
	found, err := repo.GetStaleActiveCheckouts(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)

	none, err := repo.GetStaleActiveCheckouts(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateOrder_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	o := newTestOrder(uuid.NewString())

	require.NoError(t, repo.CreateOrder(ctx, o))

	fetched, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.CheckoutID, fetched.CheckoutID)
	assert.Equal(t, domain.Cents(12500), fetched.Total)

	byCheckout, err := repo.GetOrderByCheckoutID(ctx, o.CheckoutID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byCheckout.ID)
}

func TestCreateOrder_DuplicateCheckout(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	checkoutID := uuid.NewString()

	require.NoError(t, repo.CreateOrder(ctx, newTestOrder(checkoutID)))

	err := repo.CreateOrder(ctx, newTestOrder(checkoutID))
	assert.ErrorIs(t, err, order.ErrDuplicateCheckout)
}

func TestCreateOrder_WritesOutboxEvent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	o := newTestOrder(uuid.NewString())
	require.NoError(t, repo.CreateOrder(ctx, o))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "order.created", events[0].EventType)
	assert.Equal(t, o.CheckoutID, events[0].AggregateId)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	remaining, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrderByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestGetCoupon(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO coupons (code, type, value, status) VALUES ($1, $2, $3, $4)`,
		"DEZ", "percentage", 10, "active")
	require.NoError(t, err)

	coupon, err := repo.GetCoupon(ctx, "DEZ")
	require.NoError(t, err)
	assert.Equal(t, domain.CouponTypePercentage, coupon.Type)
	assert.Equal(t, int64(10), coupon.Value)
	assert.Equal(t, domain.CouponStatusActive, coupon.Status)

	_, err = repo.GetCoupon(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestInsertEvent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.InsertEvent(ctx, "checkout-1", "checkout.abandoned", []byte(`{"checkout_id":"checkout-1"}`)))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "checkout.abandoned", events[0].EventType)
}
