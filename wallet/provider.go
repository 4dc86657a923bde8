// Package wallet holds the wallet-session and transaction-orchestration core:
// connection lifecycle, target-network validation, account data reads and
// transfer submission. The presentation layer consumes this package's state
// and sends back user intents; it never talks to the chain directly.
package wallet

import (
	"context"
	"math/big"

	"github.com/cryptify-labs/cryptify-client/internal/model"
)

// Provider is the capability interface over the wallet. The real
// implementation lives in internal/client; tests use mocks. A nil Provider
// means no wallet is available and every operation that needs one must
// degrade to model.ErrWalletUnavailable instead of crashing.
type Provider interface {
	// RequestAccounts asks the wallet for account access and returns the
	// unlocked addresses. Returns model.ErrUserRejected when the wallet
	// denies the request.
	RequestAccounts(ctx context.Context) ([]string, error)

	// ChainID reads the identity of the chain the wallet is attached to.
	ChainID(ctx context.Context) (uint64, error)

	// BalanceAt reads the native balance of an address in base units.
	BalanceAt(ctx context.Context, address string) (*big.Int, error)

	// OnChainChanged subscribes to chain-change notifications. The returned
	// function removes the subscription.
	OnChainChanged(fn func(chainID uint64)) (unsubscribe func())
}

// PendingTx is a submitted transaction that has not yet been mined.
type PendingTx interface {
	// Hash returns the transaction hash.
	Hash() string

	// Wait blocks until the transaction is confirmed on-chain or the context
	// is cancelled. The wait is bounded only by the chain itself and may be
	// long-running.
	Wait(ctx context.Context) error
}

// Registry is the fixed service contract of the on-chain transfer registry.
// This core depends only on these three operations, never on the contract's
// internal logic.
type Registry interface {
	// SendFunds submits a value transfer carrying the recipient and memo as
	// call arguments and amountWei as attached value.
	SendFunds(ctx context.Context, recipient, memo string, amountWei *big.Int) (PendingTx, error)

	// GetAllTransactions returns the full registry transaction log.
	GetAllTransactions(ctx context.Context) ([]model.TransferRecord, error)

	// GetUserTransactions returns the log scoped to one participant.
	GetUserTransactions(ctx context.Context, address string) ([]model.TransferRecord, error)
}

// RateSource supplies a fiat display rate for the native asset.
type RateSource interface {
	GetETHtoUSDRate() (string, error)
}
