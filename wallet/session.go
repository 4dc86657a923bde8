package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/cryptify-labs/cryptify-client/internal/common"
	"github.com/cryptify-labs/cryptify-client/internal/model"
	"github.com/cryptify-labs/cryptify-client/internal/storage"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// SessionStore owns Session.address. It is the single writer; every other
// component reads the address and re-derives its own state when it changes.
type SessionStore struct {
	provider Provider
	store    *storage.FileStore
	log      *zap.Logger

	mu      sync.Mutex
	address string

	listeners []func(ctx context.Context, address string)
}

// NewSessionStore creates a session store backed by the given durable store.
func NewSessionStore(provider Provider, store *storage.FileStore, log *zap.Logger) *SessionStore {
	return &SessionStore{
		provider: provider,
		store:    store,
		log:      log,
	}
}

// OnAddressChange registers a listener invoked after the address changes.
// Listeners run synchronously, strictly after the new address is set; on
// disconnect they receive "". Register before the first connect/restore.
func (s *SessionStore) OnAddressChange(fn func(ctx context.Context, address string)) {
	s.listeners = append(s.listeners, fn)
}

// Restore rehydrates the session from durable storage on process start.
// A persisted address is treated as an active session without re-requesting
// wallet permission. No side effect if nothing is persisted.
func (s *SessionStore) Restore(ctx context.Context) (*model.Session, error) {
	address, err := s.store.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if address == "" {
		return &model.Session{Connected: false}, nil
	}

	s.setAddress(ctx, address)
	s.log.Info("session restored", zap.String("address", common.ShortenAddress(address)))
	return s.session(address)
}

// Connect requests account access from the wallet provider and opens a
// session for the first returned account.
func (s *SessionStore) Connect(ctx context.Context) (*model.Session, error) {
	if s.provider == nil {
		return nil, model.ErrWalletUnavailable
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		if errors.Is(err, model.ErrUserRejected) || errors.Is(err, model.ErrWalletUnavailable) {
			return nil, err
		}
		return nil, &model.ProviderError{Op: "connect", Err: err}
	}
	if len(accounts) == 0 {
		return nil, &model.ProviderError{Op: "connect", Err: errors.New("wallet returned no accounts")}
	}

	address := accounts[0]
	if err := s.store.Write(address); err != nil {
		return nil, err
	}

	s.setAddress(ctx, address)
	s.log.Info("wallet connected", zap.String("address", common.ShortenAddress(address)))
	return s.session(address)
}

// Disconnect clears the session in memory and in durable storage. It is a
// purely local reset - wallet-side permission cannot be revoked from here.
func (s *SessionStore) Disconnect(ctx context.Context) error {
	if err := s.store.Delete(); err != nil {
		return err
	}
	s.setAddress(ctx, "")
	s.log.Info("wallet disconnected")
	return nil
}

// Address returns the current session address, or "" when disconnected.
func (s *SessionStore) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// Session returns a snapshot of the current session.
func (s *SessionStore) Session() *model.Session {
	address := s.Address()
	if address == "" {
		return &model.Session{Connected: false}
	}
	sess, err := s.session(address)
	if err != nil {
		return &model.Session{Address: address, ShortAddress: common.ShortenAddress(address), Connected: true}
	}
	return sess
}

// setAddress stores the new address and then notifies listeners. The two
// steps never interleave for concurrent connect/disconnect calls: listeners
// always observe the address they were notified for as already set.
func (s *SessionStore) setAddress(ctx context.Context, address string) {
	s.mu.Lock()
	s.address = address
	s.mu.Unlock()

	for _, fn := range s.listeners {
		fn(ctx, address)
	}
}

func (s *SessionStore) session(address string) (*model.Session, error) {
	qr, err := generateQRCode(address)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return &model.Session{
		Address:      address,
		ShortAddress: common.ShortenAddress(address),
		Connected:    true,
		QR:           qr,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
