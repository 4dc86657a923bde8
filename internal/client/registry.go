package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cryptify-labs/cryptify-client/internal/common"
	"github.com/cryptify-labs/cryptify-client/internal/model"
	"github.com/cryptify-labs/cryptify-client/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// registryABI is the fixed external interface of the FundTransferWithRegistry
// contract. Only these three operations are depended on.
const registryABI = `[
  {"name":"sendFunds","type":"function","stateMutability":"payable",
   "inputs":[{"name":"receiver","type":"string"},{"name":"message","type":"string"}],
   "outputs":[]},
  {"name":"getAllTransactions","type":"function","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"sender","type":"address"},
     {"name":"receiver","type":"string"},
     {"name":"amount","type":"uint256"},
     {"name":"message","type":"string"},
     {"name":"timestamp","type":"uint256"},
     {"name":"txHash","type":"bytes32"}]}]},
  {"name":"getUserTransactions","type":"function","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"tuple[]","components":[
     {"name":"sender","type":"address"},
     {"name":"receiver","type":"string"},
     {"name":"amount","type":"uint256"},
     {"name":"message","type":"string"},
     {"name":"timestamp","type":"uint256"},
     {"name":"txHash","type":"bytes32"}]}]}
]`

// registryRecord mirrors the contract's transaction record tuple.
type registryRecord struct {
	Sender    ethcommon.Address
	Receiver  string
	Amount    *big.Int
	Message   string
	Timestamp *big.Int
	TxHash    [32]byte
}

// boundRegistry wraps the bound contract together with the backend used for
// confirmation waits.
type boundRegistry struct {
	contract *bind.BoundContract
	backend  *ethclient.Client
	parsed   abi.ABI
}

func newBoundRegistry(backend *ethclient.Client, contractAddress string) (*boundRegistry, error) {
	if !ethcommon.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid registry contract address: %s", contractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}

	addr := ethcommon.HexToAddress(contractAddress)
	return &boundRegistry{
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend:  backend,
		parsed:   parsed,
	}, nil
}

// SendFunds submits sendFunds(receiver, message) with the amount attached as
// transaction value and returns the pending transaction.
func (c *EthClient) SendFunds(ctx context.Context, recipient, memo string, amountWei *big.Int) (wallet.PendingTx, error) {
	key, err := c.signerKey()
	if err != nil {
		return nil, err
	}

	chainID, err := c.rpc.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx
	opts.Value = amountWei

	tx, err := c.contract.contract.Transact(opts, "sendFunds", recipient, memo)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transfer: %w", err)
	}

	return &pendingTx{tx: tx, backend: c.contract.backend}, nil
}

// GetAllTransactions reads the full registry transaction log.
func (c *EthClient) GetAllTransactions(ctx context.Context) ([]model.TransferRecord, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.contract.Call(opts, &out, "getAllTransactions"); err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	records := *abi.ConvertType(out[0], new([]registryRecord)).(*[]registryRecord)
	return toTransferRecords(records), nil
}

// GetUserTransactions reads the registry log scoped to one participant.
func (c *EthClient) GetUserTransactions(ctx context.Context, address string) ([]model.TransferRecord, error) {
	if !ethcommon.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address: %s", address)
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.contract.Call(opts, &out, "getUserTransactions", ethcommon.HexToAddress(address)); err != nil {
		return nil, fmt.Errorf("failed to read user transactions: %w", err)
	}

	records := *abi.ConvertType(out[0], new([]registryRecord)).(*[]registryRecord)
	return toTransferRecords(records), nil
}

func toTransferRecords(records []registryRecord) []model.TransferRecord {
	out := make([]model.TransferRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, model.TransferRecord{
			Sender:    rec.Sender.Hex(),
			Recipient: rec.Receiver,
			Amount:    common.WeiToEther(rec.Amount),
			AmountWei: rec.Amount.String(),
			Memo:      rec.Message,
			Timestamp: time.Unix(rec.Timestamp.Int64(), 0),
			TxHash:    ethcommon.Hash(rec.TxHash).Hex(),
		})
	}
	return out
}

// pendingTx tracks a submitted transaction to its on-chain receipt.
type pendingTx struct {
	tx      *types.Transaction
	backend *ethclient.Client
}

func (p *pendingTx) Hash() string {
	return p.tx.Hash().Hex()
}

// Wait blocks until the transaction is mined. A receipt with a failed status
// counts as a failure, same as a rejected submission.
func (p *pendingTx) Wait(ctx context.Context) error {
	receipt, err := bind.WaitMined(ctx, p.backend, p.tx)
	if err != nil {
		return fmt.Errorf("confirmation wait failed: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return errors.New("transaction reverted on-chain")
	}
	return nil
}
