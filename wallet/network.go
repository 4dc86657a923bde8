package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/cryptify-labs/cryptify-client/internal/model"

	"go.uber.org/zap"
)

// ValidationResult is the outcome of a chain identity check. A mismatch is an
// expected outcome, not an error.
type ValidationResult string

const (
	ResultMatched    ValidationResult = "matched"
	ResultMismatched ValidationResult = "mismatched"
)

// NetworkGuard validates the wallet's chain identity against the required
// target chain and drives the "wrong network" alert. At most one alert is
// active at a time; it auto-dismisses after the configured window unless a
// renewed mismatch restarts it.
type NetworkGuard struct {
	provider Provider
	target   uint64
	window   time.Duration
	log      *zap.Logger

	mu    sync.Mutex
	alert *model.NetworkAlert
	gen   uint64 // alert generation, guards against stale dismiss timers
	timer *time.Timer

	subscribeOnce sync.Once
	unsubscribe   func()
}

// NewNetworkGuard creates a guard for the given target chain id.
func NewNetworkGuard(provider Provider, target uint64, window time.Duration, log *zap.Logger) *NetworkGuard {
	return &NetworkGuard{
		provider: provider,
		target:   target,
		window:   window,
		log:      log,
	}
}

// Start subscribes to the wallet's chain-change notifications. Calling it
// more than once has no effect; the subscription lives until Stop.
func (g *NetworkGuard) Start() {
	if g.provider == nil {
		return
	}
	g.subscribeOnce.Do(func() {
		g.unsubscribe = g.provider.OnChainChanged(func(chainID uint64) {
			g.Observe(chainID)
		})
	})
}

// Stop removes the chain-change subscription and cancels any pending
// auto-dismiss timer. Called at process shutdown.
func (g *NetworkGuard) Stop() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
	g.Dismiss()
}

// Validate reads the wallet's current chain identity and compares it against
// the target. Only adapter-level failures propagate, as ProviderError.
func (g *NetworkGuard) Validate(ctx context.Context) (ValidationResult, error) {
	if g.provider == nil {
		return "", model.ErrWalletUnavailable
	}

	chainID, err := g.provider.ChainID(ctx)
	if err != nil {
		return "", &model.ProviderError{Op: "chain id check", Err: err}
	}

	return g.Observe(chainID), nil
}

// Observe classifies one observed chain id. A mismatch raises the alert and
// restarts its window; a match clears any alert raised by a prior mismatch.
func (g *NetworkGuard) Observe(chainID uint64) ValidationResult {
	if chainID == g.target {
		g.clear()
		return ResultMatched
	}

	g.raise(chainID)
	return ResultMismatched
}

// Alert returns a snapshot of the active alert, or nil if none.
func (g *NetworkGuard) Alert() *model.NetworkAlert {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.alert == nil {
		return nil
	}
	snapshot := *g.alert
	return &snapshot
}

// Dismiss clears the alert immediately, regardless of timer state.
func (g *NetworkGuard) Dismiss() {
	g.clear()
}

func (g *NetworkGuard) raise(chainID uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// A new alert instance invalidates any timer scheduled for the old one.
	g.gen++
	gen := g.gen
	if g.timer != nil {
		g.timer.Stop()
	}

	g.alert = &model.NetworkAlert{
		Active:          true,
		ObservedChainID: chainID,
		TargetChainID:   g.target,
		RaisedAt:        time.Now(),
		ExpiresAfter:    g.window,
	}
	g.timer = time.AfterFunc(g.window, func() {
		g.expire(gen)
	})

	g.log.Warn("wrong network detected",
		zap.Uint64("observed_chain_id", chainID),
		zap.Uint64("target_chain_id", g.target))
}

// expire is the auto-dismiss path. It only fires for the alert instance it
// was scheduled for: a stale timer must never clear a newer alert.
func (g *NetworkGuard) expire(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return
	}
	g.alert = nil
	g.timer = nil
}

func (g *NetworkGuard) clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.alert = nil
}
