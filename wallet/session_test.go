package wallet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cryptify-labs/cryptify-client/internal/model"
	"github.com/cryptify-labs/cryptify-client/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAddress = "0x33f751a60879825e0F3c386F9fdB0dD506fB31e7"

func newTestStore(t *testing.T) *storage.FileStore {
	t.Helper()
	return storage.NewFileStore(filepath.Join(t.TempDir(), "session"))
}

func TestConnectOpensSession(t *testing.T) {
	provider := newMockProvider()
	provider.accounts = []string{testAddress}
	store := newTestStore(t)
	session := NewSessionStore(provider, store, zap.NewNop())

	var notified []string
	session.OnAddressChange(func(ctx context.Context, address string) {
		notified = append(notified, address)
	})

	sess, err := session.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Connected)
	assert.Equal(t, testAddress, sess.Address)
	assert.Equal(t, "0x33f7...31e7", sess.ShortAddress)
	assert.NotEmpty(t, sess.QR)

	// The address is persisted and listeners saw the new address.
	persisted, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, testAddress, persisted)
	assert.Equal(t, []string{testAddress}, notified)
}

func TestConnectWithoutProvider(t *testing.T) {
	session := NewSessionStore(nil, newTestStore(t), zap.NewNop())

	_, err := session.Connect(context.Background())
	assert.ErrorIs(t, err, model.ErrWalletUnavailable)
	assert.Empty(t, session.Address())
}

func TestConnectUserRejected(t *testing.T) {
	provider := newMockProvider()
	provider.accountsErr = model.ErrUserRejected
	session := NewSessionStore(provider, newTestStore(t), zap.NewNop())

	_, err := session.Connect(context.Background())
	assert.ErrorIs(t, err, model.ErrUserRejected)
	assert.Empty(t, session.Address())
}

func TestDisconnectClearsSession(t *testing.T) {
	provider := newMockProvider()
	provider.accounts = []string{testAddress}
	store := newTestStore(t)
	session := NewSessionStore(provider, store, zap.NewNop())

	_, err := session.Connect(context.Background())
	require.NoError(t, err)

	var lastNotified string
	session.OnAddressChange(func(ctx context.Context, address string) {
		lastNotified = address
	})

	require.NoError(t, session.Disconnect(context.Background()))
	assert.Empty(t, session.Address())
	assert.Empty(t, lastNotified)

	persisted, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestDisconnectThenRestore(t *testing.T) {
	provider := newMockProvider()
	provider.accounts = []string{testAddress}
	store := newTestStore(t)

	session := NewSessionStore(provider, store, zap.NewNop())
	_, err := session.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, session.Disconnect(context.Background()))

	// Simulated reload: a fresh store over the same file finds nothing.
	restored := NewSessionStore(provider, store, zap.NewNop())
	triggers := 0
	restored.OnAddressChange(func(ctx context.Context, address string) {
		triggers++
	})

	sess, err := restored.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Connected)
	assert.Empty(t, restored.Address())
	assert.Zero(t, triggers)
}

func TestRestorePersistedSession(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(testAddress))

	session := NewSessionStore(newMockProvider(), store, zap.NewNop())
	triggers := 0
	session.OnAddressChange(func(ctx context.Context, address string) {
		triggers++
	})

	sess, err := session.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Connected)
	assert.Equal(t, testAddress, sess.Address)
	assert.Equal(t, 1, triggers)

	// No wallet permission prompt on restore.
	provider := session.provider.(*mockProvider)
	assert.Zero(t, provider.requestCalls)
}
