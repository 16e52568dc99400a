// Package chains holds the static per-chain configuration the bridge operates
// against: chain ids, USDC contract addresses, explorers and default RPC
// endpoints for the four supported EVM source chains, plus the TON destination.
package chains

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// USDCDecimals is the number of decimal places for USDC on every supported chain.
const USDCDecimals = 6

// TONChainKey identifies the (non-EVM) destination network.
const TONChainKey = "ton"

// Chain describes one supported EVM source chain.
// USDC addresses are the official Circle deployments.
type Chain struct {
	ID           int64
	Key          string // short name used on the CLI and in config
	Name         string
	USDCAddress  common.Address
	NativeSymbol string
	DefaultRPC   string
	ExplorerURL  string // base URL; tx links are ExplorerURL + "/tx/" + hash
}

var supported = []Chain{
	{
		ID:           1,
		Key:          "ethereum",
		Name:         "Ethereum",
		USDCAddress:  common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		NativeSymbol: "ETH",
		DefaultRPC:   "https://eth.llamarpc.com",
		ExplorerURL:  "https://etherscan.io",
	},
	{
		ID:           8453,
		Key:          "base",
		Name:         "Base",
		USDCAddress:  common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		NativeSymbol: "ETH",
		DefaultRPC:   "https://mainnet.base.org",
		ExplorerURL:  "https://basescan.org",
	},
	{
		ID:           42161,
		Key:          "arbitrum",
		Name:         "Arbitrum",
		USDCAddress:  common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		NativeSymbol: "ETH",
		DefaultRPC:   "https://arb1.arbitrum.io/rpc",
		ExplorerURL:  "https://arbiscan.io",
	},
	{
		ID:           10,
		Key:          "optimism",
		Name:         "Optimism",
		USDCAddress:  common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"),
		NativeSymbol: "ETH",
		DefaultRPC:   "https://mainnet.optimism.io",
		ExplorerURL:  "https://optimistic.etherscan.io",
	},
}

// ByID looks up a supported source chain by its chain id.
func ByID(id int64) (Chain, error) {
	for _, c := range supported {
		if c.ID == id {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("chain id %d is not supported", id)
}

// ByKey looks up a supported source chain by its short name (case-insensitive).
func ByKey(key string) (Chain, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, c := range supported {
		if c.Key == key {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("chain '%s' is not supported (expected one of: %s)", key, strings.Join(Keys(), ", "))
}

// Supported returns all source chains ordered by chain id.
func Supported() []Chain {
	out := make([]Chain, len(supported))
	copy(out, supported)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Keys returns the short names of all source chains, ordered by chain id.
func Keys() []string {
	cs := Supported()
	keys := make([]string, 0, len(cs))
	for _, c := range cs {
		keys = append(keys, c.Key)
	}
	return keys
}

// IsSupportedPair reports whether a transfer from the given source chain to
// the given destination is serviceable. Every supported EVM source may bridge
// to TON; everything else is rejected locally before any provider call.
func IsSupportedPair(sourceID int64, destKey string) bool {
	if !strings.EqualFold(destKey, TONChainKey) {
		return false
	}
	_, err := ByID(sourceID)
	return err == nil
}

// ExplorerTxURL returns a block-explorer link for a transaction hash.
func (c Chain) ExplorerTxURL(txHash string) string {
	return c.ExplorerURL + "/tx/" + txHash
}
