package orchestrator

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tonbridge/pkg/types"
	"tonbridge/pkg/wallet"
)

// Executor turns a quoted route into exactly one signed bridge transaction.
// It resolves the route's payload (which for some providers is a second
// provider call) and submits the result once. Execution is never retried:
// a failed submit surfaces to the caller, who decides whether to start over
// with fresh quotes.
type Executor struct {
	w   wallet.Wallet
	log *zap.Logger
}

// NewExecutor creates an executor over the given wallet
func NewExecutor(w wallet.Wallet, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{w: w, log: log}
}

// Execute resolves the route payload and broadcasts the bridge transaction,
// returning its hash. The spender invariant is re-checked here even though
// preflight already did: the executor is the last gate before funds move.
func (e *Executor) Execute(ctx context.Context, route *types.Route) (string, error) {
	if !route.HasValidSpender() {
		return "", types.ErrInvalidSpender
	}

	tx, err := route.Payload.TransactionRequest(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build bridge transaction: %w", err)
	}
	if tx.To == (common.Address{}) {
		return "", fmt.Errorf("%w: provider returned a transaction without a target", types.ErrProvider)
	}

	txHash, err := e.w.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	e.log.Info("bridge transaction submitted",
		zap.String("route", route.Name),
		zap.Int64("chain_id", tx.ChainID),
		zap.String("tx_hash", txHash))

	return txHash, nil
}
