// Package approval decides whether a bridge spender needs an ERC-20 approval
// and issues one when it does.
package approval

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tonbridge/pkg/types"
	"tonbridge/pkg/wallet"
)

// Coordinator tracks the allowance of one (chain, token, spender) triple
// against a required amount. Confirmation of an issued approval is the
// caller's responsibility via the wallet's receipt wait; the coordinator
// exposes a fresh allowance read so the caller can verify it landed.
type Coordinator struct {
	w        wallet.Wallet
	chainID  int64
	token    common.Address
	spender  common.Address
	required *big.Int
	log      *zap.Logger
}

// New creates a coordinator for a spender and required amount
func New(w wallet.Wallet, chainID int64, token, spender common.Address, required *big.Int, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		w:        w,
		chainID:  chainID,
		token:    token,
		spender:  spender,
		required: required,
		log:      log,
	}
}

// Allowance reads the spender's current allowance from chain state
func (c *Coordinator) Allowance(ctx context.Context) (*big.Int, error) {
	if c.spender == (common.Address{}) {
		return nil, types.ErrInvalidSpender
	}
	allowance, err := c.w.Allowance(ctx, c.chainID, c.token, c.spender)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}
	return allowance, nil
}

// NeedsApproval reports whether the current allowance is below the required
// amount, returning the allowance it read.
func (c *Coordinator) NeedsApproval(ctx context.Context) (bool, *big.Int, error) {
	allowance, err := c.Allowance(ctx)
	if err != nil {
		return false, nil, err
	}
	return allowance.Cmp(c.required) < 0, allowance, nil
}

// Approve submits exactly one approval transaction for the required amount
// and returns its hash without waiting for confirmation. A zero-address
// spender is a safety invariant violation, rejected before any wallet call.
func (c *Coordinator) Approve(ctx context.Context) (string, error) {
	if c.spender == (common.Address{}) {
		return "", types.ErrInvalidSpender
	}

	txHash, err := c.w.Approve(ctx, c.chainID, c.token, c.spender, c.required)
	if err != nil {
		return "", err
	}

	c.log.Info("approval submitted",
		zap.Int64("chain_id", c.chainID),
		zap.String("spender", c.spender.Hex()),
		zap.String("amount", c.required.String()),
		zap.String("tx_hash", txHash))

	return txHash, nil
}

// Spender returns the approval target.
func (c *Coordinator) Spender() common.Address { return c.spender }
