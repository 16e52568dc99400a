package wallet

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"tonbridge/pkg/chains"
)

const (
	balanceRetryInitial = 200 * time.Millisecond
	balanceRetryTries   = 3
)

// BalanceSnapshot is a point-in-time balance read for (account, chain, token).
// Snapshots are never cached; callers refetch on demand.
type BalanceSnapshot struct {
	ChainID int64
	Token   string // "USDC" or the chain's native symbol
	Amount  *big.Int
	TakenAt time.Time
}

// Oracle reads token and native balances through the wallet. Read failures
// yield a zero snapshot alongside the error so a failed read is never
// mistaken for a definitive "insufficient funds".
type Oracle struct {
	w   Wallet
	log *zap.Logger
}

// NewOracle creates a balance oracle over a wallet
func NewOracle(w Wallet, log *zap.Logger) *Oracle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Oracle{w: w, log: log}
}

// USDC reads the account's USDC balance on a chain, in smallest units
func (o *Oracle) USDC(ctx context.Context, chainID int64) (BalanceSnapshot, error) {
	chain, err := chains.ByID(chainID)
	if err != nil {
		return zeroSnapshot(chainID, "USDC"), err
	}

	amount, err := o.read(ctx, func() (*big.Int, error) {
		return o.w.TokenBalance(ctx, chainID, chain.USDCAddress)
	})
	if err != nil {
		o.log.Warn("USDC balance read failed", zap.Int64("chain_id", chainID), zap.Error(err))
		return zeroSnapshot(chainID, "USDC"), err
	}

	return BalanceSnapshot{ChainID: chainID, Token: "USDC", Amount: amount, TakenAt: time.Now()}, nil
}

// Native reads the account's native balance on a chain, in wei
func (o *Oracle) Native(ctx context.Context, chainID int64) (BalanceSnapshot, error) {
	chain, err := chains.ByID(chainID)
	if err != nil {
		return zeroSnapshot(chainID, "native"), err
	}

	amount, err := o.read(ctx, func() (*big.Int, error) {
		return o.w.NativeBalance(ctx, chainID)
	})
	if err != nil {
		o.log.Warn("native balance read failed", zap.Int64("chain_id", chainID), zap.Error(err))
		return zeroSnapshot(chainID, chain.NativeSymbol), err
	}

	return BalanceSnapshot{ChainID: chainID, Token: chain.NativeSymbol, Amount: amount, TakenAt: time.Now()}, nil
}

// read wraps a balance read with bounded exponential backoff. Only transient
// RPC failures are retried; reads are side-effect free so this never risks a
// duplicate submission.
func (o *Oracle) read(ctx context.Context, fn func() (*big.Int, error)) (*big.Int, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = balanceRetryInitial

	operation := func() (*big.Int, error) {
		amount, err := fn()
		if err != nil && !isTransientRPCError(err) {
			return nil, backoff.Permanent(err)
		}
		return amount, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(balanceRetryTries))
}

func isTransientRPCError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Too Many Requests") ||
		strings.Contains(s, "-32005") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "EOF")
}

func zeroSnapshot(chainID int64, token string) BalanceSnapshot {
	return BalanceSnapshot{ChainID: chainID, Token: token, Amount: big.NewInt(0), TakenAt: time.Now()}
}
