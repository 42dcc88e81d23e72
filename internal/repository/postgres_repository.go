package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	_ "github.com/lib/pq"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/order"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	fmt.Println("Connected to postgres!")
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "checkout_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// SaveCheckout upserts the whole session as JSONB. The status and step
// columns are denormalized for querying, the payload stays the source
// of truth.
func (r *Repository) SaveCheckout(ctx context.Context, checkout *domain.Checkout) error {
	payload, err := json.Marshal(checkout)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout: %w", err)
	}

	query := `INSERT INTO checkout_sessions (id, cart_id, user_id, status, step, payload, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	          ON CONFLICT (id) DO UPDATE
	          SET status = EXCLUDED.status, step = EXCLUDED.step, payload = EXCLUDED.payload, updated_at = NOW()`

	_, err = r.db.ExecContext(ctx, query,
		checkout.ID,
		checkout.CartID,
		checkout.UserID,
		checkout.Status,
		checkout.Step,
		payload,
		checkout.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert checkout session: %w", err)
	}
	return nil
}

func (r *Repository) GetCheckout(ctx context.Context, id string) (*domain.Checkout, error) {
	query := `SELECT payload FROM checkout_sessions WHERE id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query checkout session: %w", err)
	}

	var checkout domain.Checkout
	if err := json.Unmarshal(payload, &checkout); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session: %w", err)
	}
	return &checkout, nil
}

// GetStaleActiveCheckouts returns ACTIVE sessions untouched since the
// cutoff, oldest first. The abandonment sweeper feeds on these.
func (r *Repository) GetStaleActiveCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Checkout, error) {
	query := `SELECT payload FROM checkout_sessions
	          WHERE status = $1 AND updated_at < $2
	          ORDER BY updated_at ASC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, domain.CheckoutStatusActive, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale checkouts: %w", err)
	}
	defer rows.Close()

	var checkouts []*domain.Checkout
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan stale checkout row: %w", err)
		}
		var checkout domain.Checkout
		if err := json.Unmarshal(payload, &checkout); err != nil {
			return nil, fmt.Errorf("unmarshal stale checkout: %w", err)
		}
		checkouts = append(checkouts, &checkout)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return checkouts, nil
}

// CreateOrder inserts the order and its order.created outbox event in
// one transaction. The unique constraint on checkout_id turns a
// concurrent double finalize into ErrDuplicateCheckout.
func (r *Repository) CreateOrder(ctx context.Context, o *domain.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (id, checkout_id, user_id, total_amount, currency, payment_outcome, payload, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, insertErr := tx.ExecContext(ctx, query,
		o.ID,
		o.CheckoutID,
		o.UserID,
		int64(o.Total),
		o.Currency,
		o.Outcome,
		payload,
		o.CreatedAt)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return order.ErrDuplicateCheckout
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	eventQuery := `INSERT INTO outbox_events (aggregate_id, event_type, payload)
	               VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, eventQuery, o.CheckoutID, "order.created", payload); err != nil {
		return fmt.Errorf("insert order.created event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT payload FROM orders WHERE id = $1`, id)
}

func (r *Repository) GetOrderByCheckoutID(ctx context.Context, checkoutID string) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT payload FROM orders WHERE checkout_id = $1`, checkoutID)
}

func (r *Repository) getOrder(ctx context.Context, query, arg string) (*domain.Order, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	var o domain.Order
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

func (r *Repository) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `SELECT code, type, value, status FROM coupons WHERE code = $1`

	var c domain.Coupon
	err := r.db.QueryRowContext(ctx, query, code).Scan(&c.Code, &c.Type, &c.Value, &c.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query coupon: %w", err)
	}
	return &c, nil
}

func (r *Repository) InsertEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	query := `INSERT INTO outbox_events (aggregate_id, event_type, payload)
	          VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, aggregateID, eventType, payload); err != nil {
		return fmt.Errorf("insert %s event: %w", eventType, err)
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events WHERE processed = FALSE
	          ORDER BY id ASC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateId, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	query := `UPDATE outbox_events SET processed = TRUE, processed_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
