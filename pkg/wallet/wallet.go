// Package wallet exposes the narrow signing-wallet contract the bridge needs:
// account identity, an active chain with switch support, balance and allowance
// reads, and transaction submission with confirmation tracking.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tonbridge/pkg/types"
)

// Receipt is the subset of a transaction receipt the bridge cares about.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

// Wallet is the connection-layer contract. The production implementation
// signs locally with a private key; tests substitute mocks.
type Wallet interface {
	// Address returns the connected account.
	Address() common.Address

	// ActiveChainID returns the chain the wallet is currently connected to.
	ActiveChainID(ctx context.Context) (int64, error)

	// SwitchChain connects the wallet to another chain. May be rejected.
	SwitchChain(ctx context.Context, chainID int64) error

	// NativeBalance reads the account's native balance on a chain.
	NativeBalance(ctx context.Context, chainID int64) (*big.Int, error)

	// TokenBalance reads the account's ERC-20 balance on a chain.
	TokenBalance(ctx context.Context, chainID int64, token common.Address) (*big.Int, error)

	// Allowance reads how much a spender may move on the account's behalf.
	Allowance(ctx context.Context, chainID int64, token, spender common.Address) (*big.Int, error)

	// Approve submits exactly one ERC-20 approval transaction and returns
	// its hash. It does not wait for confirmation.
	Approve(ctx context.Context, chainID int64, token, spender common.Address, amount *big.Int) (string, error)

	// SendTransaction signs and broadcasts a transaction request and
	// returns its hash. It does not wait for confirmation.
	SendTransaction(ctx context.Context, tx *types.TxRequest) (string, error)

	// WaitForReceipt blocks until the transaction is included, or the
	// context is cancelled. A reverted transaction returns an error.
	WaitForReceipt(ctx context.Context, chainID int64, txHash string) (*Receipt, error)
}
