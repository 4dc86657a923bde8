package wallet

import (
	"context"
	"math/big"
	"sync"

	"github.com/cryptify-labs/cryptify-client/internal/model"
)

// mockProvider implements Provider for tests with controllable behavior.
type mockProvider struct {
	mu sync.Mutex

	accounts    []string
	accountsErr error

	chainID  uint64
	chainErr error

	balances   map[string]*big.Int
	balanceErr error
	// balanceGate, when set, blocks BalanceAt until closed. Used to keep a
	// fetch in flight while the session moves on.
	balanceGate chan struct{}

	requestCalls int
	balanceCalls int

	listeners []func(uint64)
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		balances: make(map[string]*big.Int),
	}
}

func (m *mockProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCalls++
	if m.accountsErr != nil {
		return nil, m.accountsErr
	}
	return m.accounts, nil
}

func (m *mockProvider) ChainID(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chainErr != nil {
		return 0, m.chainErr
	}
	return m.chainID, nil
}

func (m *mockProvider) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	m.mu.Lock()
	gate := m.balanceGate
	m.balanceCalls++
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balanceErr != nil {
		return nil, m.balanceErr
	}
	if bal, ok := m.balances[address]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

func (m *mockProvider) OnChainChanged(fn func(chainID uint64)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.listeners)
	m.listeners = append(m.listeners, fn)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listeners[idx] = nil
	}
}

// SimulateChainChanged fires a chain-change event to all subscribers.
func (m *mockProvider) SimulateChainChanged(chainID uint64) {
	m.mu.Lock()
	fns := make([]func(uint64), 0, len(m.listeners))
	for _, fn := range m.listeners {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(chainID)
	}
}

// mockPendingTx is the pending handle returned by mockRegistry.SendFunds.
type mockPendingTx struct {
	hash     string
	waitErr  error
	waitGate chan struct{}
}

func (p *mockPendingTx) Hash() string { return p.hash }

func (p *mockPendingTx) Wait(ctx context.Context) error {
	if p.waitGate != nil {
		select {
		case <-p.waitGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.waitErr
}

// mockRegistry implements Registry for tests.
type mockRegistry struct {
	mu sync.Mutex

	sendErr  error
	waitErr  error
	waitGate chan struct{}

	all  []model.TransferRecord
	user map[string][]model.TransferRecord

	allErr  error
	userErr error

	sendCalls int
	allCalls  int
	userCalls int

	lastRecipient string
	lastMemo      string
	lastAmount    *big.Int
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		user: make(map[string][]model.TransferRecord),
	}
}

func (m *mockRegistry) SendFunds(ctx context.Context, recipient, memo string, amountWei *big.Int) (PendingTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls++
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.lastRecipient = recipient
	m.lastMemo = memo
	m.lastAmount = new(big.Int).Set(amountWei)
	return &mockPendingTx{
		hash:     "0xdeadbeef",
		waitErr:  m.waitErr,
		waitGate: m.waitGate,
	}, nil
}

func (m *mockRegistry) GetAllTransactions(ctx context.Context) ([]model.TransferRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allCalls++
	if m.allErr != nil {
		return nil, m.allErr
	}
	return m.all, nil
}

func (m *mockRegistry) GetUserTransactions(ctx context.Context, address string) ([]model.TransferRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userCalls++
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user[address], nil
}
