package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/cryptify-labs/cryptify-client/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func weiFromEther(ether int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(ether), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestFetchBalanceCommits(t *testing.T) {
	provider := newMockProvider()
	provider.balances[testAddress] = big.NewInt(1500000000000000000) // 1.5 ETH
	fetcher := NewAccountFetcher(provider, newMockRegistry(), nil, zap.NewNop())
	fetcher.SetAddress(testAddress)

	require.NoError(t, fetcher.FetchBalance(context.Background(), testAddress))

	balance := fetcher.Balance()
	require.NotNil(t, balance)
	assert.Equal(t, "1.5", balance.ETH)
	assert.Equal(t, testAddress, balance.Address)
}

func TestFetchBalanceEmptyAddressNoOp(t *testing.T) {
	provider := newMockProvider()
	fetcher := NewAccountFetcher(provider, newMockRegistry(), nil, zap.NewNop())

	require.NoError(t, fetcher.FetchBalance(context.Background(), ""))
	assert.Zero(t, provider.balanceCalls)
	assert.Nil(t, fetcher.Balance())
}

func TestFetchBalanceFailureKeepsPrior(t *testing.T) {
	provider := newMockProvider()
	provider.balances[testAddress] = weiFromEther(2)
	fetcher := NewAccountFetcher(provider, newMockRegistry(), nil, zap.NewNop())
	fetcher.SetAddress(testAddress)

	require.NoError(t, fetcher.FetchBalance(context.Background(), testAddress))
	require.NotNil(t, fetcher.Balance())

	provider.mu.Lock()
	provider.balanceErr = errors.New("rpc timeout")
	provider.mu.Unlock()

	err := fetcher.FetchBalance(context.Background(), testAddress)
	require.Error(t, err)
	assert.True(t, model.IsProviderError(err))

	// Stale-but-available beats blank.
	balance := fetcher.Balance()
	require.NotNil(t, balance)
	assert.Equal(t, "2", balance.ETH)
}

func TestStaleBalanceResponseDiscarded(t *testing.T) {
	other := "0x0000000000000000000000000000000000000001"
	provider := newMockProvider()
	provider.balances[testAddress] = weiFromEther(1)
	gate := make(chan struct{})
	provider.balanceGate = gate

	fetcher := NewAccountFetcher(provider, newMockRegistry(), nil, zap.NewNop())
	fetcher.SetAddress(testAddress)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = fetcher.FetchBalance(context.Background(), testAddress)
	}()

	// The session moves to another address while the read is in flight.
	fetcher.SetAddress(other)
	close(gate)
	wg.Wait()

	// The late result for the superseded address was not committed.
	assert.Nil(t, fetcher.Balance())
}

func TestFetchUserTransactionsStaleGuard(t *testing.T) {
	registry := newMockRegistry()
	registry.user[testAddress] = []model.TransferRecord{{Sender: testAddress, Recipient: "alice"}}

	fetcher := NewAccountFetcher(newMockProvider(), registry, nil, zap.NewNop())
	fetcher.SetAddress("0x0000000000000000000000000000000000000002")

	require.NoError(t, fetcher.FetchUserTransactions(context.Background(), testAddress))
	assert.Empty(t, fetcher.UserTransactions())
}

func TestFetchUserTransactionsCommits(t *testing.T) {
	registry := newMockRegistry()
	registry.user[testAddress] = []model.TransferRecord{{Sender: testAddress, Recipient: "alice"}}

	fetcher := NewAccountFetcher(newMockProvider(), registry, nil, zap.NewNop())
	fetcher.SetAddress(testAddress)

	require.NoError(t, fetcher.FetchUserTransactions(context.Background(), testAddress))
	records := fetcher.UserTransactions()
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Recipient)
}

func TestFetchAllTransactionsFailureKeepsPrior(t *testing.T) {
	registry := newMockRegistry()
	registry.all = []model.TransferRecord{{Recipient: "bob"}}
	fetcher := NewAccountFetcher(newMockProvider(), registry, nil, zap.NewNop())

	require.NoError(t, fetcher.FetchAllTransactions(context.Background()))
	require.Len(t, fetcher.AllTransactions(), 1)

	registry.mu.Lock()
	registry.allErr = errors.New("rpc timeout")
	registry.mu.Unlock()

	err := fetcher.FetchAllTransactions(context.Background())
	require.Error(t, err)
	assert.Len(t, fetcher.AllTransactions(), 1)
}

func TestDisconnectClearsData(t *testing.T) {
	provider := newMockProvider()
	provider.balances[testAddress] = weiFromEther(1)
	registry := newMockRegistry()
	registry.user[testAddress] = []model.TransferRecord{{Recipient: "alice"}}

	fetcher := NewAccountFetcher(provider, registry, nil, zap.NewNop())
	fetcher.SetAddress(testAddress)
	require.NoError(t, fetcher.Refresh(context.Background(), testAddress))
	require.NotNil(t, fetcher.Balance())

	// Session cleared: no dependent data may go stale.
	fetcher.SetAddress("")
	assert.Nil(t, fetcher.Balance())
	assert.Empty(t, fetcher.UserTransactions())
}

func TestRefreshFansOut(t *testing.T) {
	provider := newMockProvider()
	provider.balances[testAddress] = weiFromEther(3)
	registry := newMockRegistry()

	fetcher := NewAccountFetcher(provider, registry, nil, zap.NewNop())
	fetcher.SetAddress(testAddress)

	require.NoError(t, fetcher.Refresh(context.Background(), testAddress))
	assert.Equal(t, 1, provider.balanceCalls)
	assert.Equal(t, 1, registry.userCalls)
	assert.Equal(t, 1, registry.allCalls)
}
