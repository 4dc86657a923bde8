package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// EtherDecimals is the number of base-unit digits below one ETH (wei)
	EtherDecimals = 18
)

// EtherToWei converts an ETH decimal string to wei without float precision loss.
// Base units are the unit of on-chain settlement, so the conversion must be
// exact: more than 18 fractional digits is rejected rather than rounded.
func EtherToWei(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal amount: %w", err)
	}

	wei := d.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount has more than %d fractional digits", EtherDecimals)
	}

	return wei.BigInt(), nil
}

// WeiToEther converts wei to an ETH display string without float precision loss
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}

// ShortenAddress formats an address for display: 0x1234...abcd
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
