package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cryptify-labs/cryptify-client/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTargetChain = uint64(59141)

func newTestGuard(provider *mockProvider, window time.Duration) *NetworkGuard {
	return NewNetworkGuard(provider, testTargetChain, window, zap.NewNop())
}

func TestValidateMatched(t *testing.T) {
	provider := newMockProvider()
	provider.chainID = testTargetChain
	guard := newTestGuard(provider, time.Second)

	result, err := guard.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultMatched, result)
	assert.Nil(t, guard.Alert())
}

func TestValidateMismatchRaisesAlert(t *testing.T) {
	provider := newMockProvider()
	provider.chainID = 1
	guard := newTestGuard(provider, time.Second)

	result, err := guard.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultMismatched, result)

	alert := guard.Alert()
	require.NotNil(t, alert)
	assert.True(t, alert.Active)
	assert.Equal(t, uint64(1), alert.ObservedChainID)
	assert.Equal(t, testTargetChain, alert.TargetChainID)
}

func TestMatchAfterMismatchClearsAlert(t *testing.T) {
	provider := newMockProvider()
	guard := newTestGuard(provider, time.Second)

	guard.Observe(1)
	require.NotNil(t, guard.Alert())

	guard.Observe(testTargetChain)
	assert.Nil(t, guard.Alert())
}

func TestValidateProviderError(t *testing.T) {
	provider := newMockProvider()
	provider.chainErr = errors.New("rpc down")
	guard := newTestGuard(provider, time.Second)

	_, err := guard.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, model.IsProviderError(err))
	assert.Nil(t, guard.Alert())
}

func TestValidateNoProvider(t *testing.T) {
	guard := NewNetworkGuard(nil, testTargetChain, time.Second, zap.NewNop())

	_, err := guard.Validate(context.Background())
	assert.ErrorIs(t, err, model.ErrWalletUnavailable)
}

func TestAlertAutoDismiss(t *testing.T) {
	guard := newTestGuard(newMockProvider(), 60*time.Millisecond)

	guard.Observe(1)
	require.NotNil(t, guard.Alert())

	assert.Eventually(t, func() bool {
		return guard.Alert() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestRenewedMismatchResetsWindow(t *testing.T) {
	guard := newTestGuard(newMockProvider(), 80*time.Millisecond)

	guard.Observe(1)
	time.Sleep(50 * time.Millisecond)

	// Renewed mismatch: the alert gets a full fresh window, not the
	// remainder of the prior one.
	guard.Observe(2)
	time.Sleep(50 * time.Millisecond)

	alert := guard.Alert()
	require.NotNil(t, alert)
	assert.Equal(t, uint64(2), alert.ObservedChainID)

	assert.Eventually(t, func() bool {
		return guard.Alert() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestDismissClearsImmediately(t *testing.T) {
	guard := newTestGuard(newMockProvider(), time.Minute)

	guard.Observe(1)
	require.NotNil(t, guard.Alert())

	guard.Dismiss()
	assert.Nil(t, guard.Alert())
}

func TestStaleTimerDoesNotClearNewerAlert(t *testing.T) {
	guard := newTestGuard(newMockProvider(), 50*time.Millisecond)

	guard.Observe(1)
	time.Sleep(30 * time.Millisecond)

	// The second alert instance must survive past the point where the
	// first instance's timer would have fired.
	guard.Observe(2)
	time.Sleep(35 * time.Millisecond)
	require.NotNil(t, guard.Alert())
}

func TestChainChangedSubscription(t *testing.T) {
	provider := newMockProvider()
	provider.chainID = testTargetChain
	guard := newTestGuard(provider, 60*time.Millisecond)
	guard.Start()
	defer guard.Stop()

	// Connected to the target chain: no alert.
	result, err := guard.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultMatched, result)
	assert.Nil(t, guard.Alert())

	// The wallet hops to another chain.
	provider.SimulateChainChanged(1)
	require.NotNil(t, guard.Alert())

	// No further events: the alert clears itself after the window.
	assert.Eventually(t, func() bool {
		return guard.Alert() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestStartSubscribesOnce(t *testing.T) {
	provider := newMockProvider()
	guard := newTestGuard(provider, time.Second)

	guard.Start()
	guard.Start()

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Len(t, provider.listeners, 1)
}
