package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cryptify-labs/cryptify-client/internal/config"
	"github.com/cryptify-labs/cryptify-client/internal/crypto"
	"github.com/cryptify-labs/cryptify-client/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// EthClient is the wallet provider adapter over an EVM JSON-RPC endpoint and
// the local encrypted key file. It covers account access, chain identity,
// balance reads and chain-change notifications; the registry contract calls
// live in registry.go on the same client.
type EthClient struct {
	rpc *ethclient.Client
	log *zap.Logger

	keyPath string

	keyMu   sync.Mutex
	key     *ecdsa.PrivateKey
	address ethcommon.Address

	contract *boundRegistry

	subMu     sync.Mutex
	subs      map[int]func(chainID uint64)
	nextSub   int
	lastChain uint64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewEthClient dials the configured RPC endpoint and binds the registry
// contract. The signing key stays locked until RequestAccounts.
func NewEthClient(log *zap.Logger) (*EthClient, error) {
	rpcURL := config.GetRPCURL()
	if rpcURL == "" {
		return nil, model.ErrWalletUnavailable
	}

	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}

	contract, err := newBoundRegistry(rpc, config.GetContractAddress())
	if err != nil {
		rpc.Close()
		return nil, err
	}

	c := &EthClient{
		rpc:      rpc,
		log:      log,
		keyPath:  config.GetKeyFilePath(),
		contract: contract,
		subs:     make(map[int]func(uint64)),
		stop:     make(chan struct{}),
	}
	go c.watchChain(config.GetChainPollInterval())
	return c, nil
}

// Close stops the chain watcher and releases the RPC connection.
func (c *EthClient) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.rpc.Close()
	})
}

// RequestAccounts unlocks the key file with the password captured at startup
// and returns the derived address. An invalid password maps to
// model.ErrUserRejected - the wallet denied access, the user may retry.
func (c *EthClient) RequestAccounts(ctx context.Context) ([]string, error) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()

	if c.key != nil {
		return []string{c.address.Hex()}, nil
	}

	if c.keyPath == "" {
		return nil, model.ErrWalletUnavailable
	}

	password, err := config.GetKeyPasswordBytes()
	if err != nil {
		return nil, model.ErrWalletUnavailable
	}
	defer clear(password)

	_, keyData, err := crypto.DecryptKeyFile(c.keyPath, password)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidPassword) {
			return nil, model.ErrUserRejected
		}
		return nil, fmt.Errorf("failed to unlock key file: %w", err)
	}
	defer clear(keyData.PrivateKey)

	key, err := ethcrypto.ToECDSA(keyData.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}

	c.key = key
	c.address = ethcrypto.PubkeyToAddress(key.PublicKey)
	return []string{c.address.Hex()}, nil
}

// ChainID reads the chain identity from the RPC endpoint.
func (c *EthClient) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.rpc.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read chain id: %w", err)
	}
	return id.Uint64(), nil
}

// BalanceAt reads the native balance of an address in wei.
func (c *EthClient) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	if !ethcommon.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address: %s", address)
	}
	balance, err := c.rpc.BalanceAt(ctx, ethcommon.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// OnChainChanged registers a chain-change callback and returns a function
// that removes it.
func (c *EthClient) OnChainChanged(fn func(chainID uint64)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// watchChain polls the chain id and notifies subscribers on change. A
// browser wallet pushes chainChanged events; over bare JSON-RPC the poll
// loop synthesizes them.
func (c *EthClient) watchChain(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		id, err := c.rpc.ChainID(ctx)
		cancel()
		if err != nil {
			c.log.Debug("chain id poll failed", zap.Error(err))
			continue
		}

		chainID := id.Uint64()
		c.subMu.Lock()
		changed := c.lastChain != 0 && c.lastChain != chainID
		c.lastChain = chainID
		fns := make([]func(uint64), 0, len(c.subs))
		for _, fn := range c.subs {
			fns = append(fns, fn)
		}
		c.subMu.Unlock()

		if !changed {
			continue
		}
		c.log.Info("chain changed", zap.Uint64("chain_id", chainID))
		for _, fn := range fns {
			fn(chainID)
		}
	}
}

// signerKey returns the unlocked key, or ErrWalletUnavailable before unlock.
func (c *EthClient) signerKey() (*ecdsa.PrivateKey, error) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	if c.key == nil {
		return nil, model.ErrWalletUnavailable
	}
	return c.key, nil
}
