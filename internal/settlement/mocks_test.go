package settlement

import (
	"context"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
)

type MockPixGenerator struct {
	Generated *PixGeneration
	Err       error
	Calls     int
}

func (m *MockPixGenerator) Generate(_ context.Context, _ string, _ domain.Cents, _ Buyer) (*PixGeneration, error) {
	m.Calls++
	return m.Generated, m.Err
}

type MockBoletoGenerator struct {
	Generated *BoletoGeneration
	Err       error
	Calls     int
}

func (m *MockBoletoGenerator) Generate(_ context.Context, _ string, _ domain.Cents, _ Buyer) (*BoletoGeneration, error) {
	m.Calls++
	return m.Generated, m.Err
}

type MockCardAuthorizer struct {
	Auth  *CardAuthorization
	Err   error
	Calls int
}

func (m *MockCardAuthorizer) Authorize(_ context.Context, _ string, _ domain.Cents, _ CardDetails, _ Buyer) (*CardAuthorization, error) {
	m.Calls++
	return m.Auth, m.Err
}

type MockWalletLedger struct {
	BalanceValue  domain.Cents
	BalanceErr    error
	BalanceCalls  int
	Transferred   *TransferResult
	TransferErr   error
	TransferCalls int
	LastReference string
	RefundErr     error
	RefundCalls   int
}

func (m *MockWalletLedger) Balance(_ context.Context, _ string) (domain.Cents, error) {
	m.BalanceCalls++
	return m.BalanceValue, m.BalanceErr
}

func (m *MockWalletLedger) Transfer(_ context.Context, _ string, _ domain.Cents, reference string) (*TransferResult, error) {
	m.TransferCalls++
	m.LastReference = reference
	return m.Transferred, m.TransferErr
}

func (m *MockWalletLedger) Refund(_ context.Context, _, _ string, _ domain.Cents) error {
	m.RefundCalls++
	return m.RefundErr
}

type MockAntifraudEvaluator struct {
	Outcome *AntifraudOutcome
	Err     error
	Calls   int
	// Hook runs before returning; tests use it to mutate the checkout
	// mid-call, simulating a retreat while the evaluation is in flight.
	Hook func()
}

func (m *MockAntifraudEvaluator) Evaluate(_ context.Context, _ AntifraudInput) (*AntifraudOutcome, error) {
	m.Calls++
	if m.Hook != nil {
		m.Hook()
	}
	return m.Outcome, m.Err
}
