package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/cart"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/order"
	r "github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/repository"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/settlement"
	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/shipping"
)

// MockRepository implements r.RepoInterface in memory. Checkouts are
// copied on save and load so tests observe only persisted state, the
// way a real round trip through postgres would behave.
type MockRepository struct {
	checkouts map[string][]byte
	orders    map[string]*domain.Order // keyed by checkout id
	coupons   map[string]*domain.Coupon
	Events    []string // recorded event types
	SaveErr   error
	SaveCalls int
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		checkouts: make(map[string][]byte),
		orders:    make(map[string]*domain.Order),
		coupons:   make(map[string]*domain.Coupon),
	}
}

func (m *MockRepository) SaveCheckout(_ context.Context, checkout *domain.Checkout) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := json.Marshal(checkout)
	if err != nil {
		return err
	}
	m.checkouts[checkout.ID] = data
	return nil
}

func (m *MockRepository) GetCheckout(_ context.Context, id string) (*domain.Checkout, error) {
	data, ok := m.checkouts[id]
	if !ok {
		return nil, r.ErrCheckoutNotFound
	}
	var checkout domain.Checkout
	if err := json.Unmarshal(data, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (m *MockRepository) GetStaleActiveCheckouts(_ context.Context, _ time.Time, _ int) ([]*domain.Checkout, error) {
	return nil, nil
}

func (m *MockRepository) CreateOrder(_ context.Context, o *domain.Order) error {
	if _, exists := m.orders[o.CheckoutID]; exists {
		return order.ErrDuplicateCheckout
	}
	m.orders[o.CheckoutID] = o
	m.Events = append(m.Events, "order.created")
	return nil
}

func (m *MockRepository) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *MockRepository) GetOrderByCheckoutID(_ context.Context, checkoutID string) (*domain.Order, error) {
	o, ok := m.orders[checkoutID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockRepository) GetCoupon(_ context.Context, code string) (*domain.Coupon, error) {
	c, ok := m.coupons[code]
	if !ok {
		return nil, r.ErrCouponNotFound
	}
	return c, nil
}

func (m *MockRepository) InsertEvent(_ context.Context, _, eventType string, _ []byte) error {
	m.Events = append(m.Events, eventType)
	return nil
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	return nil, nil
}

func (m *MockRepository) MarkEventAsProcessed(context.Context, int64) error {
	return nil
}

func (m *MockRepository) RunMigrations(*r.Credentials) error { return nil }

func (m *MockRepository) Close() error { return nil }

type MockCartStore struct {
	Carts        map[string]*domain.Cart
	ConvertErr   error
	ConvertedIDs []string
}

func (m *MockCartStore) GetCart(_ context.Context, cartID string) (*domain.Cart, error) {
	c, ok := m.Carts[cartID]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return c, nil
}

func (m *MockCartStore) MarkConverted(_ context.Context, cartID string) error {
	if m.ConvertErr != nil {
		return m.ConvertErr
	}
	m.ConvertedIDs = append(m.ConvertedIDs, cartID)
	m.Carts[cartID].Status = domain.CartStatusConverted
	return nil
}

type MockWallet struct {
	BalanceValue domain.Cents
	BalanceErr   error
	Transferred  *settlement.TransferResult
	TransferErr  error
	TransferHook func() // runs while the transfer is in flight
	RefundCalls  int
	RefundErr    error
}

func (m *MockWallet) Balance(context.Context, string) (domain.Cents, error) {
	return m.BalanceValue, m.BalanceErr
}

func (m *MockWallet) Transfer(context.Context, string, domain.Cents, string) (*settlement.TransferResult, error) {
	if m.TransferHook != nil {
		m.TransferHook()
	}
	if m.TransferErr != nil {
		return nil, m.TransferErr
	}
	if m.Transferred != nil {
		return m.Transferred, nil
	}
	return &settlement.TransferResult{Success: true, TransactionID: "tx-wallet"}, nil
}

func (m *MockWallet) Refund(context.Context, string, string, domain.Cents) error {
	m.RefundCalls++
	return m.RefundErr
}

type MockPix struct{ Err error }

func (m *MockPix) Generate(context.Context, string, domain.Cents, settlement.Buyer) (*settlement.PixGeneration, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &settlement.PixGeneration{QRImage: "img", CopyPasteCode: "code"}, nil
}

type MockBoleto struct{ Err error }

func (m *MockBoleto) Generate(context.Context, string, domain.Cents, settlement.Buyer) (*settlement.BoletoGeneration, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &settlement.BoletoGeneration{URL: "https://boleto.test/1"}, nil
}

type MockCard struct {
	Auth *settlement.CardAuthorization
	Err  error
}

func (m *MockCard) Authorize(context.Context, string, domain.Cents, settlement.CardDetails, settlement.Buyer) (*settlement.CardAuthorization, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Auth != nil {
		return m.Auth, nil
	}
	return &settlement.CardAuthorization{Authorized: true, TransactionID: "tx-card"}, nil
}

type MockFraud struct {
	Outcome *settlement.AntifraudOutcome
	Err     error
}

func (m *MockFraud) Evaluate(context.Context, settlement.AntifraudInput) (*settlement.AntifraudOutcome, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Outcome != nil {
		return m.Outcome, nil
	}
	return &settlement.AntifraudOutcome{Status: domain.AntifraudApproved, Score: 0.1}, nil
}

type MockQuoteProvider struct {
	Quotes []domain.ShippingQuote
	Err    error
}

func (m *MockQuoteProvider) Quote(context.Context, string, string, []domain.Parcel) ([]domain.ShippingQuote, error) {
	return m.Quotes, m.Err
}

type MockAddressProvider struct{}

func (m *MockAddressProvider) Lookup(context.Context, string) (*domain.Address, error) {
	return &domain.Address{City: "São Paulo", State: "SP", PostalCode: "01001-000"}, nil
}

type testEnv struct {
	svc    *Service
	repo   *MockRepository
	carts  *MockCartStore
	wallet *MockWallet
}

// newTestService wires a fully working service over in-memory mocks.
func newTestService(opts ...func(*testEnv)) *testEnv {
	env := &testEnv{
		repo: newMockRepository(),
		carts: &MockCartStore{Carts: map[string]*domain.Cart{
			"cart-1": {
				ID:     "cart-1",
				UserID: "user-1",
				Status: domain.CartStatusOpen,
				Items: []domain.CartItem{
					{ProductID: "p1", ProductName: "Produto", UnitPrice: 5000, Quantity: 2},
				},
			},
		}},
		wallet: &MockWallet{BalanceValue: 1 << 40},
	}
	for _, opt := range opts {
		opt(env)
	}

	shippingSvc := shipping.NewService(
		&MockQuoteProvider{Quotes: []domain.ShippingQuote{{ID: "pac", Carrier: "Correios", Service: "PAC", Price: 2500, DeliveryDays: 9}}},
		&MockAddressProvider{},
		nil,
		"01001-000",
	)
	orchestrator := settlement.NewOrchestrator(&MockPix{}, &MockBoleto{}, &MockCard{}, env.wallet, &MockFraud{}, nil)
	finalizer := order.NewFinalizer(env.repo)
	offers := NewStaticCatalog([]domain.Offer{
		{ID: "bump-1", Type: domain.OfferTypeBump, Name: "Embalagem presente", Price: 2990},
		{ID: "upsell-1", Type: domain.OfferTypeUpsell, Name: "Upgrade premium", Price: 9990},
	})

	env.svc = New(env.repo, env.carts, shippingSvc, orchestrator, env.wallet, finalizer, offers)
	return env
}
