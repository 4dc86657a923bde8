package wallet

import (
	"context"
	"sync"

	"github.com/cryptify-labs/cryptify-client/internal/common"
	"github.com/cryptify-labs/cryptify-client/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AccountFetcher reads balance and transaction history for the active
// address. Fetches may run concurrently and never serialize against each
// other. Results for a superseded address are discarded rather than
// committed (stale-response guard); provider failures keep the previous
// data instead of blanking it.
type AccountFetcher struct {
	provider Provider
	registry Registry
	rates    RateSource // optional, display enrichment only
	log      *zap.Logger

	mu      sync.Mutex
	current string // address the committed data belongs to
	balance *model.BalanceResponse
	all     []model.TransferRecord
	user    []model.TransferRecord
}

// NewAccountFetcher creates a fetcher. rates may be nil.
func NewAccountFetcher(provider Provider, registry Registry, rates RateSource, log *zap.Logger) *AccountFetcher {
	return &AccountFetcher{
		provider: provider,
		registry: registry,
		rates:    rates,
		log:      log,
	}
}

// SetAddress records the now-current address. An empty address clears all
// dependent data - balance and history must not go stale past a disconnect.
func (f *AccountFetcher) SetAddress(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = address
	if address == "" {
		f.balance = nil
		f.user = nil
		f.all = nil
	}
}

// FetchBalance reads the native balance for the address and commits it if the
// address is still current. No-op for an empty address. On provider failure
// the prior value is kept - stale-but-available beats blank.
func (f *AccountFetcher) FetchBalance(ctx context.Context, address string) error {
	if address == "" {
		return nil
	}
	if f.provider == nil {
		return model.ErrWalletUnavailable
	}

	wei, err := f.provider.BalanceAt(ctx, address)
	if err != nil {
		f.log.Warn("failed to fetch balance, keeping previous value",
			zap.String("address", common.ShortenAddress(address)), zap.Error(err))
		return &model.ProviderError{Op: "balance fetch", Err: err}
	}

	eth := common.WeiToEther(wei)
	balance := &model.BalanceResponse{
		Address: address,
		ETH:     eth,
	}

	if f.rates != nil {
		if rate, err := f.rates.GetETHtoUSDRate(); err != nil {
			f.log.Warn("failed to fetch ETH/USD rate", zap.Error(err))
		} else {
			balance.Rate = rate
			if usd, err := mulDecimalStrings(eth, rate); err == nil {
				balance.USD = usd
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != address {
		// Session moved on while the read was in flight.
		f.log.Debug("discarding balance for superseded address",
			zap.String("address", common.ShortenAddress(address)))
		return nil
	}
	f.balance = balance
	return nil
}

// FetchAllTransactions retrieves the full registry transaction log.
func (f *AccountFetcher) FetchAllTransactions(ctx context.Context) error {
	if f.registry == nil {
		return model.ErrWalletUnavailable
	}

	records, err := f.registry.GetAllTransactions(ctx)
	if err != nil {
		f.log.Warn("failed to fetch transaction log, keeping previous value", zap.Error(err))
		return &model.ProviderError{Op: "transaction log fetch", Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.all = records
	return nil
}

// FetchUserTransactions retrieves the log scoped to one participant,
// committing only while that address is still current.
func (f *AccountFetcher) FetchUserTransactions(ctx context.Context, address string) error {
	if address == "" {
		return nil
	}
	if f.registry == nil {
		return model.ErrWalletUnavailable
	}

	records, err := f.registry.GetUserTransactions(ctx, address)
	if err != nil {
		f.log.Warn("failed to fetch user transactions, keeping previous value",
			zap.String("address", common.ShortenAddress(address)), zap.Error(err))
		return &model.ProviderError{Op: "user transactions fetch", Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != address {
		f.log.Debug("discarding transactions for superseded address",
			zap.String("address", common.ShortenAddress(address)))
		return nil
	}
	f.user = records
	return nil
}

// Refresh re-reads balance, user history and the full log in parallel.
// Individual failures are already logged; the first one is returned.
func (f *AccountFetcher) Refresh(ctx context.Context, address string) error {
	var g errgroup.Group
	g.Go(func() error { return f.FetchBalance(ctx, address) })
	g.Go(func() error { return f.FetchUserTransactions(ctx, address) })
	g.Go(func() error { return f.FetchAllTransactions(ctx) })
	return g.Wait()
}

// Balance returns the last committed balance, or nil if none.
func (f *AccountFetcher) Balance() *model.BalanceResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balance == nil {
		return nil
	}
	snapshot := *f.balance
	return &snapshot
}

// AllTransactions returns the last committed full transaction log.
func (f *AccountFetcher) AllTransactions() []model.TransferRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TransferRecord, len(f.all))
	copy(out, f.all)
	return out
}

// UserTransactions returns the last committed user-scoped log.
func (f *AccountFetcher) UserTransactions() []model.TransferRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TransferRecord, len(f.user))
	copy(out, f.user)
	return out
}

// mulDecimalStrings multiplies two decimal strings exactly, rounded to cents.
func mulDecimalStrings(a, b string) (string, error) {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return "", err
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return "", err
	}
	return da.Mul(db).Round(2).String(), nil
}
